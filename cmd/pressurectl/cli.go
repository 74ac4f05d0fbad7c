package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/pressure-helper/internal/config"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/repository"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

// newCLIApp creates the maintenance CLI with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "pressurectl",
		Usage:   "Maintenance tool for the pressure helper bot",
		Version: Version,
		Commands: []*cli.Command{
			validateConfigCmd(),
			exportCmd(),
			dueCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// validateConfigCmd checks the environment the bot would start with.
func validateConfigCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate-config",
		Usage: "Validate configuration from the environment and .env",
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			fmt.Fprintln(out, "🔍 Проверка конфигурации...")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("ошибка валидации конфигурации:\n%w", err)
			}

			fmt.Fprintln(out, "✅ Конфигурация валидна!")
			fmt.Fprintln(out, "📋 Детали конфигурации:")
			fmt.Fprintf(out, "  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
			fmt.Fprintf(out, "  - DB Driver: %s\n", cfg.DB.Driver)
			if cfg.DB.Driver == config.DriverSQLite {
				fmt.Fprintf(out, "  - DB Path: %s\n", cfg.DB.Path)
			} else {
				fmt.Fprintf(out, "  - DB Host: %s\n", cfg.DB.Host)
				fmt.Fprintf(out, "  - DB Port: %s\n", cfg.DB.Port)
				fmt.Fprintf(out, "  - DB User: %s\n", cfg.DB.User)
				fmt.Fprintf(out, "  - DB Name: %s\n", cfg.DB.DBName)
			}
			if cfg.Redis.Enabled() {
				fmt.Fprintf(out, "  - Redis: %s:%s (db %d)\n", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
			} else {
				fmt.Fprintln(out, "  - Redis: <не используется>")
			}
			fmt.Fprintf(out, "  - Reminder catch-up: %d мин\n", cfg.Reminder.CatchUpMinutes)
			fmt.Fprintf(out, "  - Log Level: %v\n", cfg.Logger.Level)
			fmt.Fprintf(out, "  - Log Output: %s\n", cfg.Logger.OutputPath)
			fmt.Fprintf(out, "  - Log Format: %s\n", cfg.Logger.Format)
			return nil
		},
	}
}

// exportCmd writes the same workbook /export sends, without going through Telegram.
func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a user's readings and medications to XLSX",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "Telegram user id"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (defaults to pressure_data_YYYYMMDD.xlsx)"},
		},
		Action: func(c *cli.Context) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			readings := repository.NewReadingRepository(db)
			schedules := repository.NewMedicationRepository(db)
			export, err := services.NewExportService(readings, schedules).BuildWorkbook(c.Context, c.Int64("user"))
			if err != nil {
				return fmt.Errorf("failed to build workbook: %w", err)
			}

			path := c.String("out")
			if path == "" {
				path = export.FileName
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			if err := os.WriteFile(path, export.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Fprintf(c.App.Writer, "📊 %s: %d измерений, %d лекарств\n", path, export.Readings, export.Medications)
			return nil
		},
	}
}

// dueCmd lists the reminders the scheduler would send at a given minute.
func dueCmd() *cli.Command {
	return &cli.Command{
		Name:  "due",
		Usage: "List reminders due at a time of day (Moscow time)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "at", Usage: "Time of day HH:MM (defaults to now)"},
		},
		Action: func(c *cli.Context) error {
			at := utils.FormatTimeOfDay(utils.Now())
			if raw := c.String("at"); raw != "" {
				parsed, err := utils.ParseTimeOfDay(raw)
				if err != nil {
					return err
				}
				at = parsed
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			due, err := services.NewMedicationService(repository.NewMedicationRepository(db)).DueAt(c.Context, at)
			if err != nil {
				return fmt.Errorf("failed to load schedules: %w", err)
			}

			out := c.App.Writer
			if len(due) == 0 {
				fmt.Fprintf(out, "Нет напоминаний на %s\n", at)
				return nil
			}
			fmt.Fprintf(out, "⏰ Напоминания на %s:\n", at)
			for _, s := range due {
				fmt.Fprintf(out, "  - user %d: %s (%s)\n", s.UserID, s.Name, s.Frequency.Label())
			}
			return nil
		},
	}
}

// openDB connects with the bot's database settings; the bot token is not needed here
func openDB() (*gorm.DB, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return database.NewDB(cfg.DB)
}

func maskToken(token string) string {
	if token == "" {
		return "<не установлен>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
