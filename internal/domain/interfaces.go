package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a row addressed by id does not exist for the user
var ErrNotFound = errors.New("record not found")

// ReadingStore persists blood pressure readings. Every operation is scoped to one user.
type ReadingStore interface {
	Append(ctx context.Context, reading *Reading) error
	ListByUser(ctx context.Context, userID int64) ([]Reading, error)
	UpdateNote(ctx context.Context, userID int64, takenAt time.Time, note string) (int64, error)
	DeleteLast(ctx context.Context, userID int64) (*Reading, error)
}

// MedicationStore persists medication schedules
type MedicationStore interface {
	Append(ctx context.Context, schedule *MedicationSchedule) error
	ListByUser(ctx context.Context, userID int64) ([]MedicationSchedule, error)
	ListAll(ctx context.Context) ([]MedicationSchedule, error)
	Get(ctx context.Context, userID int64, id uint) (*MedicationSchedule, error)
	DeleteMatching(ctx context.Context, userID int64, name, timeOfDay string) (int64, error)
}

// Notifier delivers a reminder to a user
type Notifier interface {
	SendReminder(ctx context.Context, userID int64, medicationName, timeOfDay string) error
}

// BotService handles telegram bot operations
type BotService interface {
	Start(ctx context.Context) error
	Stop()
}
