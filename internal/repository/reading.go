package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"gorm.io/gorm"
)

// ReadingRepository implements domain.ReadingStore on gorm
type ReadingRepository struct {
	db *gorm.DB
}

var _ domain.ReadingStore = (*ReadingRepository)(nil)

// NewReadingRepository creates a new reading repository
func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// normalizeTimestamp makes equality matching independent of driver precision and location
func normalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Append stores the reading and fills in its ID and normalised timestamp
func (r *ReadingRepository) Append(ctx context.Context, reading *domain.Reading) error {
	row := database.PressureReading{
		UserID:    reading.UserID,
		TakenAt:   normalizeTimestamp(reading.TakenAt),
		Systolic:  reading.Systolic,
		Diastolic: reading.Diastolic,
		Pulse:     reading.Pulse,
		Note:      reading.Note,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create pressure reading: %w", err)
	}
	reading.ID = row.ID
	reading.TakenAt = row.TakenAt
	return nil
}

// ListByUser returns the user's readings in insertion order
func (r *ReadingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reading, error) {
	var rows []database.PressureReading
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get user pressure readings: %w", err)
	}

	readings := make([]domain.Reading, len(rows))
	for i, row := range rows {
		readings[i] = toDomainReading(row)
	}
	return readings, nil
}

// UpdateNote sets the note on every reading of the user taken at exactly takenAt
func (r *ReadingRepository) UpdateNote(ctx context.Context, userID int64, takenAt time.Time, note string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&database.PressureReading{}).
		Where("user_id = ? AND taken_at = ?", userID, normalizeTimestamp(takenAt)).
		Update("note", note)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update reading note: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteLast removes the most recently inserted reading of the user. It returns nil when there is none.
func (r *ReadingRepository) DeleteLast(ctx context.Context, userID int64) (*domain.Reading, error) {
	var deleted *domain.Reading
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row database.PressureReading
		err := tx.Where("user_id = ?", userID).Order("id DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&database.PressureReading{}, row.ID).Error; err != nil {
			return err
		}
		reading := toDomainReading(row)
		deleted = &reading
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete last reading: %w", err)
	}
	return deleted, nil
}

func toDomainReading(row database.PressureReading) domain.Reading {
	return domain.Reading{
		ID:        row.ID,
		UserID:    row.UserID,
		TakenAt:   row.TakenAt.UTC(),
		Systolic:  row.Systolic,
		Diastolic: row.Diastolic,
		Pulse:     row.Pulse,
		Note:      row.Note,
	}
}
