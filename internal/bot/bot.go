package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/logger"
)

// updateSource is the long-polling half of *tgbotapi.BotAPI
type updateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api           handlers.BotAPI
	updates       updateSource
	updateHandler *handlers.UpdateHandler
}

var (
	_ domain.BotService = (*Bot)(nil)
	_ domain.Notifier   = (*Bot)(nil)
)

func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot authorized", "account", api.Self.UserName)
	return newBot(api, api, deps, stateManager), nil
}

func newBot(api handlers.BotAPI, updates updateSource, deps handlers.Dependencies, stateManager state.StateManager) *Bot {
	return &Bot{
		api:           api,
		updates:       updates,
		updateHandler: handlers.NewUpdateHandler(api, deps, stateManager),
	}
}

// Start long-polls for updates and handles them one at a time until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.updates.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates...")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down...")
			return nil
		case update, ok := <-updates:
			if !ok {
				logger.Info("Update channel closed")
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				logger.Debug("Received message", "user_id", update.Message.From.ID, "chat_id", update.Message.Chat.ID)
			}
			if err := b.updateHandler.Handle(ctx, update); err != nil {
				logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// Stop closes the long-polling loop
func (b *Bot) Stop() {
	b.updates.StopReceivingUpdates()
}

// SendReminder messages the user in their private chat, whose id equals the user id
func (b *Bot) SendReminder(ctx context.Context, userID int64, medicationName, timeOfDay string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewDeliveryError(err, userID)
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(userID, menus.Reminder(medicationName, timeOfDay))); err != nil {
		return apperrors.NewDeliveryError(err, userID).
			WithContext("medication", medicationName).
			WithContext("time", timeOfDay)
	}
	return nil
}
