package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	// Answer the callback query first so the client drops its spinner
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.WithUser(user.TelegramID).Warn("Failed to answer callback", "error", err)
	}

	if query.Message == nil {
		return nil
	}
	chatID := query.Message.Chat.ID
	userID := user.TelegramID

	switch data := query.Data; {
	case data == keyboards.MedicationAdd:
		return h.handleMedicationAdd(ctx, chatID, userID)
	case data == keyboards.MedicationList:
		return h.handleMedicationList(ctx, chatID, userID)
	case data == keyboards.MedicationDelete:
		return h.handleMedicationDeleteMenu(ctx, chatID, userID)
	case data == keyboards.PressureDelete:
		return h.handlePressureDelete(ctx, chatID, userID)
	case data == keyboards.PressureNote:
		return startNote(ctx, h.api, h.deps, h.stateManager, chatID, userID)
	case strings.HasPrefix(data, keyboards.FrequencyPrefix):
		return h.handleFrequency(ctx, chatID, userID, data)
	case strings.HasPrefix(data, keyboards.TimePrefix):
		return h.handleTime(ctx, chatID, userID, data)
	case strings.HasPrefix(data, keyboards.DeleteMedicationPrefix):
		return h.handleDeleteMedication(ctx, chatID, userID, data)
	default:
		logger.WithUser(userID).Warn("Unknown callback", "data", data)
		return nil
	}
}

func (h *CallbackHandler) handleMedicationAdd(ctx context.Context, chatID, userID int64) error {
	if err := h.stateManager.Set(ctx, userID, state.AwaitingMedicationName()); err != nil {
		return apperrors.NewStorageError(err)
	}
	return reply(h.api, chatID, menus.MedicationPrompt)
}

func (h *CallbackHandler) handleMedicationList(ctx context.Context, chatID, userID int64) error {
	schedules, err := h.deps.MedicationSvc.ListSchedules(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при получении списка лекарств.")
	}
	return reply(h.api, chatID, menus.MedicationList(schedules))
}

func (h *CallbackHandler) handleMedicationDeleteMenu(ctx context.Context, chatID, userID int64) error {
	schedules, err := h.deps.MedicationSvc.ListSchedules(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при удалении лекарства.")
	}
	if len(schedules) == 0 {
		return reply(h.api, chatID, menus.NoMedications)
	}

	msg := tgbotapi.NewMessage(chatID, menus.DeleteMedPrompt)
	msg.ReplyMarkup = keyboards.DeleteMedicationMenu(schedules)
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handlePressureDelete(ctx context.Context, chatID, userID int64) error {
	deleted, err := h.deps.PressureSvc.DeleteLastReading(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при удалении измерения.")
	}
	if deleted == nil {
		return reply(h.api, chatID, menus.NoReadings)
	}
	return reply(h.api, chatID, menus.ReadingDeleted)
}

// handleFrequency advances AwaitingFrequency to AwaitingTime
func (h *CallbackHandler) handleFrequency(ctx context.Context, chatID, userID int64, data string) error {
	conv, err := h.stateManager.Get(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	frequency, ok := keyboards.ParseFrequency(data)
	if conv.Step != state.StepAwaitingFrequency || !ok {
		return h.resetStale(ctx, chatID, userID, data)
	}

	if err := h.stateManager.Set(ctx, userID, state.AwaitingTime(conv.MedicationName, frequency)); err != nil {
		return apperrors.NewStorageError(err)
	}

	msg := tgbotapi.NewMessage(chatID, menus.TimePrompt(conv.MedicationName, frequency))
	msg.ReplyMarkup = keyboards.TimePicker()
	_, err = h.api.Send(msg)
	return err
}

// handleTime stores the schedule collected by the flow and returns the user to Idle
func (h *CallbackHandler) handleTime(ctx context.Context, chatID, userID int64, data string) error {
	conv, err := h.stateManager.Get(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	timeOfDay, ok := keyboards.ParseTime(data)
	if conv.Step != state.StepAwaitingTime || !ok {
		return h.resetStale(ctx, chatID, userID, data)
	}

	schedule, err := h.deps.MedicationSvc.AddSchedule(ctx, userID, conv.MedicationName, timeOfDay, conv.Frequency)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при добавлении лекарства.")
	}
	if err := h.stateManager.Clear(ctx, userID); err != nil {
		return apperrors.NewStorageError(err)
	}

	logger.WithUser(userID).Info("Medication schedule added",
		"schedule_id", schedule.ID,
		"time", schedule.TimeOfDay,
		"frequency", schedule.Frequency)
	return reply(h.api, chatID, menus.ScheduleSaved(schedule))
}

func (h *CallbackHandler) handleDeleteMedication(ctx context.Context, chatID, userID int64, data string) error {
	id, ok := keyboards.ParseDeleteMedication(data)
	if !ok {
		logger.WithUser(userID).Warn("Malformed delete token", "data", data)
		return nil
	}

	deleted, err := h.deps.MedicationSvc.DeleteSchedule(ctx, userID, id)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return reply(h.api, chatID, menus.MedicationMissing)
	}
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при удалении лекарства.")
	}
	return reply(h.api, chatID, menus.MedicationDeleted(deleted.Name))
}

// resetStale drops a flow that no longer matches the pressed button
func (h *CallbackHandler) resetStale(ctx context.Context, chatID, userID int64, data string) error {
	logger.WithUser(userID).Info("Stale callback, resetting conversation", "data", data)
	if err := h.stateManager.Clear(ctx, userID); err != nil {
		return apperrors.NewStorageError(err)
	}
	return reply(h.api, chatID, menus.StaleAction)
}
