package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"gorm.io/gorm"
)

// MedicationRepository implements domain.MedicationStore on gorm
type MedicationRepository struct {
	db *gorm.DB
}

var _ domain.MedicationStore = (*MedicationRepository)(nil)

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *gorm.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

func (r *MedicationRepository) Append(ctx context.Context, schedule *domain.MedicationSchedule) error {
	row := database.MedicationSchedule{
		UserID:    schedule.UserID,
		Name:      schedule.Name,
		TimeOfDay: schedule.TimeOfDay,
		Frequency: string(schedule.Frequency),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create medication schedule: %w", err)
	}
	schedule.ID = row.ID
	return nil
}

func (r *MedicationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.MedicationSchedule, error) {
	var rows []database.MedicationSchedule
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get user medication schedules: %w", err)
	}
	return toDomainSchedules(rows), nil
}

// ListAll reads the whole table; the reminder scheduler filters it by time of day
func (r *MedicationRepository) ListAll(ctx context.Context) ([]domain.MedicationSchedule, error) {
	var rows []database.MedicationSchedule
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get medication schedules: %w", err)
	}
	return toDomainSchedules(rows), nil
}

func (r *MedicationRepository) Get(ctx context.Context, userID int64, id uint) (*domain.MedicationSchedule, error) {
	var row database.MedicationSchedule
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication schedule: %w", err)
	}
	schedule := toDomainSchedule(row)
	return &schedule, nil
}

// DeleteMatching removes every schedule of the user with this exact name and time
func (r *MedicationRepository) DeleteMatching(ctx context.Context, userID int64, name, timeOfDay string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND time_of_day = ?", userID, name, timeOfDay).
		Delete(&database.MedicationSchedule{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete medication schedule: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDomainSchedule(row database.MedicationSchedule) domain.MedicationSchedule {
	return domain.MedicationSchedule{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		TimeOfDay: row.TimeOfDay,
		Frequency: domain.Frequency(row.Frequency),
	}
}

func toDomainSchedules(rows []database.MedicationSchedule) []domain.MedicationSchedule {
	schedules := make([]domain.MedicationSchedule, len(rows))
	for i, row := range rows {
		schedules[i] = toDomainSchedule(row)
	}
	return schedules
}
