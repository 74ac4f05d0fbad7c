package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
)

const (
	// HistoryLimit is how many readings /history shows
	HistoryLimit = 10
	// StatsWindow is the rolling window of /stats
	StatsWindow = 7 * 24 * time.Hour
)

type PressureService struct {
	readings domain.ReadingStore
	now      func() time.Time
}

func NewPressureService(readings domain.ReadingStore) *PressureService {
	return &PressureService{
		readings: readings,
		now:      time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (s *PressureService) WithClock(now func() time.Time) *PressureService {
	s.now = now
	return s
}

// ParseReading parses "systolic diastolic pulse" as three positive integers separated by whitespace
func ParseReading(text string) (systolic, diastolic, pulse int, err error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return 0, 0, 0, apperrors.NewValidationError(fmt.Sprintf("expected 3 values, got %d", len(fields)))
	}

	values := make([]int, 3)
	for i, f := range fields {
		v, convErr := strconv.Atoi(f)
		if convErr != nil {
			return 0, 0, 0, apperrors.NewValidationError(fmt.Sprintf("%q is not an integer", f))
		}
		if v <= 0 {
			return 0, 0, 0, apperrors.NewValidationError(fmt.Sprintf("%d must be positive", v))
		}
		values[i] = v
	}
	return values[0], values[1], values[2], nil
}

// AddReading stores a new reading stamped with the current time
func (s *PressureService) AddReading(ctx context.Context, userID int64, systolic, diastolic, pulse int) (*domain.Reading, error) {
	if systolic <= 0 || diastolic <= 0 || pulse <= 0 {
		return nil, apperrors.NewValidationError("pressure and pulse must be positive")
	}

	reading := &domain.Reading{
		UserID:    userID,
		TakenAt:   s.now(),
		Systolic:  systolic,
		Diastolic: diastolic,
		Pulse:     pulse,
	}
	if err := s.readings.Append(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to save reading: %w", err)
	}
	return reading, nil
}

// History returns up to limit most recent readings, oldest first
func (s *PressureService) History(ctx context.Context, userID int64, limit int) ([]domain.Reading, error) {
	readings, err := s.readings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(readings) > limit {
		readings = readings[len(readings)-limit:]
	}
	return readings, nil
}

// LastReading returns the most recently added reading or nil when the user has none
func (s *PressureService) LastReading(ctx context.Context, userID int64) (*domain.Reading, error) {
	readings, err := s.History(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

// DeleteLastReading removes the most recently added reading; nil means there was nothing to delete
func (s *PressureService) DeleteLastReading(ctx context.Context, userID int64) (*domain.Reading, error) {
	return s.readings.DeleteLast(ctx, userID)
}

// AddNote attaches a note to the user's reading taken at takenAt
func (s *PressureService) AddNote(ctx context.Context, userID int64, takenAt time.Time, note string) error {
	n, err := s.readings.UpdateNote(ctx, userID, takenAt, note)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewNotFoundError("reading").WithContext("taken_at", takenAt)
	}
	return nil
}

// WeeklyStats averages the readings taken within the last StatsWindow
func (s *PressureService) WeeklyStats(ctx context.Context, userID int64) (*domain.WeeklyStats, error) {
	readings, err := s.readings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.WeeklyStats{Total: len(readings)}
	since := s.now().Add(-StatsWindow)

	var sumSys, sumDia, sumPulse int
	for _, r := range readings {
		if r.TakenAt.Before(since) {
			continue
		}
		sumSys += r.Systolic
		sumDia += r.Diastolic
		sumPulse += r.Pulse
		stats.Count++
	}

	if stats.Count > 0 {
		n := float64(stats.Count)
		stats.AvgSystolic = float64(sumSys) / n
		stats.AvgDiastolic = float64(sumDia) / n
		stats.AvgPulse = float64(sumPulse) / n
	}
	return stats, nil
}
