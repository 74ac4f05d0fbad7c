package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

// MaxMedicationNameLength keeps names readable on inline buttons
const MaxMedicationNameLength = 100

type MedicationService struct {
	schedules domain.MedicationStore
}

func NewMedicationService(schedules domain.MedicationStore) *MedicationService {
	return &MedicationService{schedules: schedules}
}

// AddSchedule validates and stores a reminder. Duplicate (name, time) rows are allowed.
func (s *MedicationService) AddSchedule(ctx context.Context, userID int64, name, timeOfDay string, frequency domain.Frequency) (*domain.MedicationSchedule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("medication name is empty")
	}
	if len([]rune(name)) > MaxMedicationNameLength {
		return nil, apperrors.NewValidationError("medication name is too long")
	}
	if !frequency.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown frequency %q", frequency))
	}
	normalized, err := utils.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	schedule := &domain.MedicationSchedule{
		UserID:    userID,
		Name:      name,
		TimeOfDay: normalized,
		Frequency: frequency,
	}
	if err := s.schedules.Append(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save medication schedule: %w", err)
	}
	return schedule, nil
}

func (s *MedicationService) ListSchedules(ctx context.Context, userID int64) ([]domain.MedicationSchedule, error) {
	return s.schedules.ListByUser(ctx, userID)
}

// DeleteSchedule resolves the row by id and removes every row of the user with the same name and time
func (s *MedicationService) DeleteSchedule(ctx context.Context, userID int64, id uint) (*domain.MedicationSchedule, error) {
	schedule, err := s.schedules.Get(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("medication schedule").WithContext("schedule_id", id)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.schedules.DeleteMatching(ctx, userID, schedule.Name, schedule.TimeOfDay); err != nil {
		return nil, err
	}
	return schedule, nil
}

// DueAt returns every schedule, across all users, set for timeOfDay
func (s *MedicationService) DueAt(ctx context.Context, timeOfDay string) ([]domain.MedicationSchedule, error) {
	all, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DueAt(all, timeOfDay), nil
}
