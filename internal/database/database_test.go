package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/pressure-helper/internal/config"
	"github.com/vladimiradmaev/pressure-helper/internal/database/migrations"
)

func TestNewDB_SQLiteCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pressure.db")

	db, err := NewDB(config.DBConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	assert.FileExists(t, path)
	assert.True(t, db.Migrator().HasTable(&User{}))
	assert.True(t, db.Migrator().HasTable(&PressureReading{}))
	assert.True(t, db.Migrator().HasTable(&MedicationSchedule{}))

	applied, err := migrations.Applied(db)
	require.NoError(t, err)
	assert.Len(t, applied, 3)
}

func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pressure.db")
	cfg := config.DBConfig{Driver: config.DriverSQLite, Path: path}

	db, err := NewDB(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Create(&PressureReading{UserID: 1, Systolic: 120, Diastolic: 80, Pulse: 70}).Error)
	require.NoError(t, Close(db))

	db, err = NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	var count int64
	require.NoError(t, db.Model(&PressureReading{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewDB_UnknownDriver(t *testing.T) {
	_, err := NewDB(config.DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}
