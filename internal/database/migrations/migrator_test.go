package migrations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrations.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRun_AppliesInOrderOnce(t *testing.T) {
	db := openTestDB(t)
	var order []string

	m := New()
	m.Register("0002_second", func(tx *gorm.DB) error {
		order = append(order, "0002_second")
		return nil
	}, nil)
	m.Register("0001_first", func(tx *gorm.DB) error {
		order = append(order, "0001_first")
		return tx.Migrator().CreateTable(&widget{})
	}, nil)

	require.NoError(t, m.Run(db))
	require.NoError(t, m.Run(db))

	assert.Equal(t, []string{"0001_first", "0002_second"}, order)
	assert.True(t, db.Migrator().HasTable(&widget{}))

	applied, err := Applied(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_first", "0002_second"}, applied)
}

func TestRun_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)

	m := New()
	m.Register("0001_broken", func(tx *gorm.DB) error {
		return errors.New("boom")
	}, nil)

	err := m.Run(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_broken")

	applied, err := Applied(db)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)

	m := New()
	m.Register("0001_widgets",
		func(tx *gorm.DB) error { return tx.Migrator().CreateTable(&widget{}) },
		func(tx *gorm.DB) error { return tx.Migrator().DropTable(&widget{}) },
	)
	require.NoError(t, m.Run(db))

	require.NoError(t, m.Rollback(db))
	assert.False(t, db.Migrator().HasTable(&widget{}))

	applied, err := Applied(db)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
