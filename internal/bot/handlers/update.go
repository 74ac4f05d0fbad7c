package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             BotAPI
	deps            Dependencies
	errHandler      *apperrors.Handler
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		deps:            deps,
		errHandler:      apperrors.NewHandler(logger.GetLogger()),
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update. Errors raised while serving the user are logged and
// answered with an apology; only a failure to deliver that apology is returned.
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	from, chatID := sender(update)
	if from == nil {
		return nil
	}

	err := h.dispatch(ctx, update, from)
	if err == nil {
		return nil
	}

	h.errHandler.Handle(ctx, apperrors.Wrap(err, errorType(err), "UPDATE", "failed to handle update").
		WithContext("user_id", from.ID).
		WithContext("update_id", update.UpdateID))

	if chatID == 0 {
		return nil
	}
	if sendErr := reply(h.api, chatID, apperrors.UserMessage(err)); sendErr != nil {
		return apperrors.NewDeliveryError(sendErr, from.ID)
	}
	return nil
}

func (h *UpdateHandler) dispatch(ctx context.Context, update tgbotapi.Update, from *tgbotapi.User) error {
	user, err := h.deps.UserService.RegisterUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		return apperrors.NewStorageError(fmt.Errorf("failed to get/create user: %w", err))
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, user)
	}

	if update.Message != nil {
		if update.Message.IsCommand() {
			return h.commandHandler.Handle(ctx, update.Message, user)
		}

		if update.Message.Text != "" {
			return h.textHandler.Handle(ctx, update.Message, user)
		}
	}

	return nil
}

func sender(update tgbotapi.Update) (*tgbotapi.User, int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From, update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		var chatID int64
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		return update.CallbackQuery.From, chatID
	}
	return nil, 0
}

// errorType keeps the type of an already classified error
func errorType(err error) apperrors.ErrorType {
	for _, t := range []apperrors.ErrorType{
		apperrors.ErrorTypeValidation,
		apperrors.ErrorTypeNotFound,
		apperrors.ErrorTypeDelivery,
		apperrors.ErrorTypeStorage,
		apperrors.ErrorTypeConfig,
	} {
		if apperrors.IsType(err, t) {
			return t
		}
	}
	return apperrors.ErrorTypeInternal
}
