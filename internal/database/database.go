package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vladimiradmaev/pressure-helper/internal/config"
	"github.com/vladimiradmaev/pressure-helper/internal/database/migrations"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens the configured database and brings the schema up to date
func NewDB(cfg config.DBConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("Database connection established and migrations completed", "driver", cfg.Driver)
	return db, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.Path + "?_busy_timeout=5000"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate applies every schema migration known to the bot
func Migrate(db *gorm.DB) error {
	m := migrations.New()
	m.Register("0001_create_users",
		func(tx *gorm.DB) error { return tx.AutoMigrate(&User{}) },
		func(tx *gorm.DB) error { return tx.Migrator().DropTable(&User{}) },
	)
	m.Register("0002_create_pressure_readings",
		func(tx *gorm.DB) error { return tx.AutoMigrate(&PressureReading{}) },
		func(tx *gorm.DB) error { return tx.Migrator().DropTable(&PressureReading{}) },
	)
	m.Register("0003_create_medication_schedules",
		func(tx *gorm.DB) error { return tx.AutoMigrate(&MedicationSchedule{}) },
		func(tx *gorm.DB) error { return tx.Migrator().DropTable(&MedicationSchedule{}) },
	)

	if err := m.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
