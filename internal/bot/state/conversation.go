package state

import (
	"context"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
)

// Step identifies what input the bot is waiting for from a user
type Step string

const (
	StepIdle                   Step = "idle"
	StepAwaitingNote           Step = "awaiting_note"
	StepAwaitingMedicationName Step = "awaiting_medication_name"
	StepAwaitingFrequency      Step = "awaiting_frequency"
	StepAwaitingTime           Step = "awaiting_time"
)

// Conversation is the per-user dialogue state. Only the payload fields of the current Step are set:
//
//	awaiting_note            ReadingTakenAt
//	awaiting_frequency       MedicationName
//	awaiting_time            MedicationName, Frequency
type Conversation struct {
	Step           Step             `json:"step"`
	ReadingTakenAt time.Time        `json:"reading_taken_at,omitempty"`
	MedicationName string           `json:"medication_name,omitempty"`
	Frequency      domain.Frequency `json:"frequency,omitempty"`
}

func Idle() Conversation {
	return Conversation{Step: StepIdle}
}

// AwaitingNote waits for a note to attach to the reading taken at takenAt
func AwaitingNote(takenAt time.Time) Conversation {
	return Conversation{Step: StepAwaitingNote, ReadingTakenAt: takenAt}
}

func AwaitingMedicationName() Conversation {
	return Conversation{Step: StepAwaitingMedicationName}
}

func AwaitingFrequency(name string) Conversation {
	return Conversation{Step: StepAwaitingFrequency, MedicationName: name}
}

func AwaitingTime(name string, frequency domain.Frequency) Conversation {
	return Conversation{Step: StepAwaitingTime, MedicationName: name, Frequency: frequency}
}

// IsIdle treats the zero value as idle
func (c Conversation) IsIdle() bool {
	return c.Step == "" || c.Step == StepIdle
}

// StateManager stores one Conversation per user
type StateManager interface {
	Get(ctx context.Context, userID int64) (Conversation, error)
	Set(ctx context.Context, userID int64, conv Conversation) error
	Clear(ctx context.Context, userID int64) error
}
