package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*database.User, error)
}

// PressureServiceInterface defines the contract for blood pressure readings
type PressureServiceInterface interface {
	AddReading(ctx context.Context, userID int64, systolic, diastolic, pulse int) (*domain.Reading, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.Reading, error)
	LastReading(ctx context.Context, userID int64) (*domain.Reading, error)
	DeleteLastReading(ctx context.Context, userID int64) (*domain.Reading, error)
	AddNote(ctx context.Context, userID int64, takenAt time.Time, note string) error
	WeeklyStats(ctx context.Context, userID int64) (*domain.WeeklyStats, error)
}

// MedicationServiceInterface defines the contract for medication schedules
type MedicationServiceInterface interface {
	AddSchedule(ctx context.Context, userID int64, name, timeOfDay string, frequency domain.Frequency) (*domain.MedicationSchedule, error)
	ListSchedules(ctx context.Context, userID int64) ([]domain.MedicationSchedule, error)
	DeleteSchedule(ctx context.Context, userID int64, id uint) (*domain.MedicationSchedule, error)
	DueAt(ctx context.Context, timeOfDay string) ([]domain.MedicationSchedule, error)
}

// ExportServiceInterface defines the contract for spreadsheet export
type ExportServiceInterface interface {
	BuildWorkbook(ctx context.Context, userID int64) (*services.Export, error)
}

var (
	_ UserServiceInterface       = (*services.UserService)(nil)
	_ PressureServiceInterface   = (*services.PressureService)(nil)
	_ MedicationServiceInterface = (*services.MedicationService)(nil)
	_ ExportServiceInterface     = (*services.ExportService)(nil)
)
