package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/pressure-helper/internal/bot"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/config"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
	"github.com/vladimiradmaev/pressure-helper/internal/reminder"
	"github.com/vladimiradmaev/pressure-helper/internal/repository"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(cfg.LoggerSettings()); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	defer logger.Close()
	logger.Info("Starting Pressure Helper Bot...")

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	readings := repository.NewReadingRepository(db)
	schedules := repository.NewMedicationRepository(db)

	userService := services.NewUserService(repository.NewUserRepository(db))
	pressureService := services.NewPressureService(readings)
	medicationService := services.NewMedicationService(schedules)
	exportService := services.NewExportService(readings, schedules)
	logger.Info("Services initialized successfully")

	var stateManager state.StateManager = state.NewManager()
	if cfg.Redis.Enabled() {
		redisManager, err := state.NewRedisManager(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer redisManager.Close()
		stateManager = redisManager
		logger.Info("Conversation state stored in Redis", "host", cfg.Redis.Host)
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
		UserService:   userService,
		PressureSvc:   pressureService,
		MedicationSvc: medicationService,
		ExportSvc:     exportService,
	}, stateManager)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := reminder.New(medicationService, telegramBot, cfg.Reminder.CatchUpMinutes)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatal("Failed to start reminder scheduler", "error", err)
	}

	logger.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil {
		logger.Error("Bot stopped with error", "error", err)
	}

	telegramBot.Stop()
	scheduler.Stop()
	logger.Info("Shutdown complete")
}
