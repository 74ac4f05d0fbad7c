package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
)

// TextHandler handles text messages
type TextHandler struct {
	api          BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message. A pending note wins over a medication name, which wins over a reading.
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	userID := user.TelegramID
	conv, err := h.stateManager.Get(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	switch conv.Step {
	case state.StepAwaitingNote:
		return h.handleNote(ctx, message, userID, conv)
	case state.StepAwaitingMedicationName:
		return h.handleMedicationName(ctx, message, userID)
	case state.StepAwaitingFrequency, state.StepAwaitingTime:
		// typing instead of pressing a button abandons the flow
		if err := h.stateManager.Clear(ctx, userID); err != nil {
			return apperrors.NewStorageError(err)
		}
		return h.handleReading(ctx, message, userID)
	default:
		return h.handleReading(ctx, message, userID)
	}
}

func (h *TextHandler) handleReading(ctx context.Context, message *tgbotapi.Message, userID int64) error {
	systolic, diastolic, pulse, err := services.ParseReading(message.Text)
	if err != nil {
		return reply(h.api, message.Chat.ID, menus.InvalidReadingFormat)
	}

	reading, err := h.deps.PressureSvc.AddReading(ctx, userID, systolic, diastolic, pulse)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при сохранении показателей.")
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, menus.ReadingSaved(reading))
	msg.ReplyMarkup = keyboards.ReadingActions()
	_, err = h.api.Send(msg)
	return err
}

func (h *TextHandler) handleNote(ctx context.Context, message *tgbotapi.Message, userID int64, conv state.Conversation) error {
	err := h.deps.PressureSvc.AddNote(ctx, userID, conv.ReadingTakenAt, message.Text)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при добавлении заметки.")
	}
	if clearErr := h.stateManager.Clear(ctx, userID); clearErr != nil {
		return apperrors.NewStorageError(clearErr)
	}
	if err != nil {
		return reply(h.api, message.Chat.ID, "Измерение не найдено. Возможно, оно было удалено.")
	}
	return reply(h.api, message.Chat.ID, menus.NoteSaved)
}

func (h *TextHandler) handleMedicationName(ctx context.Context, message *tgbotapi.Message, userID int64) error {
	name := strings.TrimSpace(message.Text)
	if name == "" || len([]rune(name)) > services.MaxMedicationNameLength {
		return reply(h.api, message.Chat.ID,
			fmt.Sprintf("Название лекарства должно быть от 1 до %d символов. Введите название лекарства:", services.MaxMedicationNameLength))
	}

	if err := h.stateManager.Set(ctx, userID, state.AwaitingFrequency(name)); err != nil {
		return apperrors.NewStorageError(err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, menus.FrequencyPrompt(name))
	msg.ReplyMarkup = keyboards.FrequencyMenu()
	_, err := h.api.Send(msg)
	return err
}
