package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/handlers"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/interfaces"
)

type fakeTelegram struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	sendErr error
	updates chan tgbotapi.Update
	stopped bool
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{updates: make(chan tgbotapi.Update, 1)}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeTelegram) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stopped {
		f.stopped = true
		close(f.updates)
	}
}

func (f *fakeTelegram) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type stubUsers struct {
	interfaces.UserServiceInterface
}

func (stubUsers) RegisterUser(_ context.Context, telegramID int64, _, _, _ string) (*database.User, error) {
	return &database.User{TelegramID: telegramID}, nil
}

func TestBot_StartHandlesUpdatesUntilStopped(t *testing.T) {
	tg := newFakeTelegram()
	b := newBot(tg, tg, handlers.Dependencies{UserService: stubUsers{}}, state.NewManager())

	done := make(chan error, 1)
	go func() { done <- b.Start(context.Background()) }()

	tg.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 9},
		Chat:     &tgbotapi.Chat{ID: 9},
		Text:     "/test",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}}

	require.Eventually(t, func() bool { return len(tg.messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, menus.BotAlive, tg.messages()[0].Text)

	b.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestBot_StartReturnsOnCancel(t *testing.T) {
	tg := newFakeTelegram()
	b := newBot(tg, tg, handlers.Dependencies{UserService: stubUsers{}}, state.NewManager())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.Start(ctx))
}

func TestBot_SendReminder(t *testing.T) {
	tg := newFakeTelegram()
	b := newBot(tg, tg, handlers.Dependencies{}, state.NewManager())

	require.NoError(t, b.SendReminder(context.Background(), 42, "Лозартан", "08:00"))
	msgs := tg.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].ChatID)
	assert.Equal(t, menus.Reminder("Лозартан", "08:00"), msgs[0].Text)

	tg.sendErr = errors.New("Forbidden: bot was blocked by the user")
	err := b.SendReminder(context.Background(), 42, "Лозартан", "08:00")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDelivery))
}
