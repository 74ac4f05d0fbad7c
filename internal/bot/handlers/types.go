package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/interfaces"
)

// BotAPI is the part of *tgbotapi.BotAPI the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService   interfaces.UserServiceInterface
	PressureSvc   interfaces.PressureServiceInterface
	MedicationSvc interfaces.MedicationServiceInterface
	ExportSvc     interfaces.ExportServiceInterface
}

func reply(api menus.Sender, chatID int64, text string) error {
	_, err := api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// startNote puts the user into AwaitingNote for their latest reading
func startNote(ctx context.Context, api BotAPI, deps Dependencies, states state.StateManager, chatID, userID int64) error {
	last, err := deps.PressureSvc.LastReading(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err).WithUserMessage("Произошла ошибка при добавлении заметки.")
	}
	if last == nil {
		return reply(api, chatID, menus.NoReadings)
	}
	if err := states.Set(ctx, userID, state.AwaitingNote(last.TakenAt)); err != nil {
		return apperrors.NewStorageError(err)
	}
	return reply(api, chatID, menus.NotePrompt(last))
}
