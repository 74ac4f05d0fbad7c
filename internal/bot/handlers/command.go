package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message. Any command abandons a flow in progress.
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	logger.Infof("Handling command %s from user %d", message.Command(), user.TelegramID)

	if err := h.stateManager.Clear(ctx, user.TelegramID); err != nil {
		return apperrors.NewStorageError(err)
	}

	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "help":
		return menus.SendMainMenu(h.api, chatID)
	case "pressure":
		return reply(h.api, chatID, menus.PressurePrompt)
	case "medication":
		return menus.SendMedicationMenu(h.api, chatID)
	case "history":
		return h.handleHistory(ctx, chatID, user.TelegramID)
	case "note":
		return startNote(ctx, h.api, h.deps, h.stateManager, chatID, user.TelegramID)
	case "stats":
		return h.handleStats(ctx, chatID, user.TelegramID)
	case "export":
		return h.handleExport(ctx, chatID, user.TelegramID)
	case "test":
		return reply(h.api, chatID, menus.BotAlive)
	default:
		return reply(h.api, chatID, menus.UnknownCommand)
	}
}

func (h *CommandHandler) handleHistory(ctx context.Context, chatID, userID int64) error {
	readings, err := h.deps.PressureSvc.History(ctx, userID, services.HistoryLimit)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при получении истории.")
	}
	return reply(h.api, chatID, menus.History(readings))
}

func (h *CommandHandler) handleStats(ctx context.Context, chatID, userID int64) error {
	stats, err := h.deps.PressureSvc.WeeklyStats(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при получении статистики.")
	}
	return reply(h.api, chatID, menus.Stats(stats))
}

// handleExport uploads the workbook straight from memory
func (h *CommandHandler) handleExport(ctx context.Context, chatID, userID int64) error {
	export, err := h.deps.ExportSvc.BuildWorkbook(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при экспорте данных.")
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: export.FileName, Bytes: export.Data})
	doc.Caption = menus.ExportCaption
	if _, err := h.api.Send(doc); err != nil {
		return apperrors.NewDeliveryError(err, userID).WithUserMessage("Произошла ошибка при экспорте данных.")
	}

	logger.WithUser(userID).Info("Exported data",
		"readings", export.Readings,
		"medications", export.Medications,
		"bytes", len(export.Data))
	return nil
}
