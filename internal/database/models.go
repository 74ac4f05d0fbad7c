package database

import (
	"time"
)

type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// PressureReading is one row of the readings table. TakenAt is stored in UTC at second precision.
type PressureReading struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"index:idx_readings_user_taken,priority:1;not null"`
	TakenAt   time.Time `gorm:"index:idx_readings_user_taken,priority:2;not null"`
	Systolic  int       `gorm:"not null"`
	Diastolic int       `gorm:"not null"`
	Pulse     int       `gorm:"not null"`
	Note      string
}

type MedicationSchedule struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	TimeOfDay string `gorm:"size:5;index;not null"` // Format: "HH:MM"
	Frequency string `gorm:"size:16;not null"`
	CreatedAt time.Time
}
