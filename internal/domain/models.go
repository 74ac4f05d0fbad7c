package domain

import (
	"time"
)

// Frequency is how often a medication is taken per day
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyTwice  Frequency = "twice"
	FrequencyThrice Frequency = "thrice"
)

// Frequencies lists the accepted values in menu order
var Frequencies = []Frequency{FrequencyDaily, FrequencyTwice, FrequencyThrice}

// Valid reports whether f is one of the known frequencies
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyTwice, FrequencyThrice:
		return true
	}
	return false
}

// Label returns the user-facing name
func (f Frequency) Label() string {
	switch f {
	case FrequencyDaily:
		return "Раз в день"
	case FrequencyTwice:
		return "Два раза в день"
	case FrequencyThrice:
		return "Три раза в день"
	default:
		return string(f)
	}
}

// Reading represents a single blood pressure and pulse measurement
type Reading struct {
	ID        uint
	UserID    int64
	TakenAt   time.Time
	Systolic  int
	Diastolic int
	Pulse     int
	Note      string
}

// MedicationSchedule represents a configured medication reminder
type MedicationSchedule struct {
	ID        uint
	UserID    int64
	Name      string
	TimeOfDay string // Format: "HH:MM"
	Frequency Frequency
}

// WeeklyStats holds rolling averages over the stats window
type WeeklyStats struct {
	AvgSystolic  float64
	AvgDiastolic float64
	AvgPulse     float64
	Count        int // readings inside the window
	Total        int // all readings of the user
}

// DueAt returns the schedules whose time of day equals timeOfDay ("HH:MM")
func DueAt(schedules []MedicationSchedule, timeOfDay string) []MedicationSchedule {
	var due []MedicationSchedule
	for _, s := range schedules {
		if s.TimeOfDay == timeOfDay {
			due = append(due, s)
		}
	}
	return due
}
