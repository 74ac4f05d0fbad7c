package migrations

import (
	"fmt"
	"sort"

	"github.com/vladimiradmaev/pressure-helper/internal/logger"
	"gorm.io/gorm"
)

// Migration represents a database migration
type Migration struct {
	ID   string
	Up   func(*gorm.DB) error
	Down func(*gorm.DB) error
}

// MigrationRecord represents a record of executed migrations
type MigrationRecord struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// Migrator runs registered migrations in ID order, each at most once per database
type Migrator struct {
	migrations map[string]Migration
}

// New creates an empty migrator
func New() *Migrator {
	return &Migrator{migrations: make(map[string]Migration)}
}

// Register adds a new migration. Registering the same ID twice replaces the earlier one.
func (m *Migrator) Register(id string, up, down func(*gorm.DB) error) {
	m.migrations[id] = Migration{
		ID:   id,
		Up:   up,
		Down: down,
	}
}

// Run executes all pending migrations
func (m *Migrator) Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	ids := make([]string, 0, len(m.migrations))
	for id := range m.migrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var executed []MigrationRecord
	if err := db.Find(&executed).Error; err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	executedMap := make(map[string]bool, len(executed))
	for _, rec := range executed {
		executedMap[rec.ID] = true
	}

	for _, id := range ids {
		if executedMap[id] {
			continue
		}
		migration := m.migrations[id]
		logger.Info("Running migration", "id", id)

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&MigrationRecord{ID: id}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", id, err)
		}
		logger.Info("Completed migration", "id", id)
	}

	return nil
}

// Rollback reverts the most recently applied migration that has a Down step
func (m *Migrator) Rollback(db *gorm.DB) error {
	var last MigrationRecord
	if err := db.Order("id DESC").First(&last).Error; err != nil {
		return fmt.Errorf("failed to find last migration: %w", err)
	}

	migration, ok := m.migrations[last.ID]
	if !ok || migration.Down == nil {
		return fmt.Errorf("migration %s cannot be rolled back", last.ID)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := migration.Down(tx); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", last.ID, err)
		}
		return tx.Delete(&MigrationRecord{ID: last.ID}).Error
	})
}

// Applied returns the IDs of executed migrations in order
func Applied(db *gorm.DB) ([]string, error) {
	var records []MigrationRecord
	if err := db.Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids, nil
}
