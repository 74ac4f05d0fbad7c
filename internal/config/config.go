package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	TelegramToken string
	DB            DBConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Reminder      ReminderConfig
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // sqlite file
}

// RedisConfig is optional; an empty Host keeps conversation state in memory
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

type ReminderConfig struct {
	// CatchUpMinutes bounds how many skipped minutes are re-evaluated after a pause. 0 drops them.
	CatchUpMinutes int
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// Load reads configuration from the environment and validates it
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from the environment without validating it
func FromEnv() (*Config, error) {
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, apperrors.NewConfigError(err.Error())
	}
	catchUp, err := getEnvInt("REMINDER_CATCHUP_MINUTES", 5)
	if err != nil {
		return nil, apperrors.NewConfigError(err.Error())
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DB: DBConfig{
			Driver:   strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverPostgres)),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "pressure_helper"),
			Path:     getEnvOrDefault("DB_PATH", "data/pressure.db"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Reminder: ReminderConfig{
			CatchUpMinutes: catchUp,
		},
	}
	return cfg, nil
}

// Validate collects every configuration problem into one error
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, apperrors.NewConfigError("TELEGRAM_BOT_TOKEN is required"))
	}
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.DBName == "" {
			errs = append(errs, apperrors.NewConfigError("DB_HOST and DB_NAME are required for postgres"))
		}
	case DriverSQLite:
		if c.DB.Path == "" {
			errs = append(errs, apperrors.NewConfigError("DB_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, apperrors.NewConfigError(fmt.Sprintf("unsupported DB_DRIVER %q", c.DB.Driver)))
	}
	if c.Reminder.CatchUpMinutes < 0 {
		errs = append(errs, apperrors.NewConfigError("REMINDER_CATCHUP_MINUTES must not be negative"))
	}
	return errors.Join(errs...)
}

// LoggerSettings converts the logger section for logger.InitWithConfig
func (c *Config) LoggerSettings() logger.Config {
	return logger.Config{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
