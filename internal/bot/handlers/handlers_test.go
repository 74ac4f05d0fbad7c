package handlers

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/menus"
	"github.com/vladimiradmaev/pressure-helper/internal/bot/state"
	"github.com/vladimiradmaev/pressure-helper/internal/config"
	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/pressure-helper/internal/errors"
	"github.com/vladimiradmaev/pressure-helper/internal/interfaces"
	"github.com/vladimiradmaev/pressure-helper/internal/repository"
	"github.com/vladimiradmaev/pressure-helper/internal/services"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent item is %T", f.sent[len(f.sent)-1])
	return msg.Text
}

func (f *fakeAPI) lastMarkup(t *testing.T) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup is %T", msg.ReplyMarkup)
	return markup
}

type testEnv struct {
	api        *fakeAPI
	handler    *UpdateHandler
	states     *state.Manager
	medication *services.MedicationService
	pressure   *services.PressureService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewDB(config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "bot.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	readings := repository.NewReadingRepository(db)
	schedules := repository.NewMedicationRepository(db)
	env := &testEnv{
		api:        &fakeAPI{},
		states:     state.NewManager(),
		medication: services.NewMedicationService(schedules),
		pressure:   services.NewPressureService(readings),
	}
	deps := Dependencies{
		UserService:   services.NewUserService(repository.NewUserRepository(db)),
		PressureSvc:   env.pressure,
		MedicationSvc: env.medication,
		ExportSvc:     services.NewExportService(readings, schedules),
	}
	env.handler = NewUpdateHandler(env.api, deps, env.states)
	return env
}

func (e *testEnv) withPressure(svc interfaces.PressureServiceInterface) {
	e.handler.commandHandler.deps.PressureSvc = svc
	e.handler.textHandler.deps.PressureSvc = svc
	e.handler.callbackHandler.deps.PressureSvc = svc
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Тест"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(userID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func (e *testEnv) send(t *testing.T, update tgbotapi.Update) {
	t.Helper()
	require.NoError(t, e.handler.Handle(context.Background(), update))
}

func (e *testEnv) step(t *testing.T, userID int64) state.Step {
	t.Helper()
	conv, err := e.states.Get(context.Background(), userID)
	require.NoError(t, err)
	return conv.Step
}

func TestReadingFlow(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, textUpdate(1, "120 80 72"))
	assert.Contains(t, env.api.lastText(t), "✅ Показатели успешно сохранены!")
	assert.Contains(t, env.api.lastText(t), "Давление: 120/80\nПульс: 72")
	markup := env.api.lastMarkup(t)
	assert.Equal(t, "pressure_delete", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "pressure_note", *markup.InlineKeyboard[1][0].CallbackData)

	env.send(t, textUpdate(1, "сто двадцать"))
	assert.Equal(t, menus.InvalidReadingFormat, env.api.lastText(t))

	env.send(t, textUpdate(1, "/history"))
	assert.Contains(t, env.api.lastText(t), "Последние 1 измерений")

	env.send(t, callbackUpdate(1, "pressure_delete"))
	assert.Equal(t, menus.ReadingDeleted, env.api.lastText(t))
	env.send(t, callbackUpdate(1, "pressure_delete"))
	assert.Equal(t, menus.NoReadings, env.api.lastText(t))
	assert.Len(t, env.api.requests, 2)
}

func TestNoteFlow(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, textUpdate(1, "/note"))
	assert.Equal(t, menus.NoReadings, env.api.lastText(t))
	assert.Equal(t, state.StepIdle, env.step(t, 1))

	env.send(t, textUpdate(1, "130 85 70"))
	env.send(t, callbackUpdate(1, "pressure_note"))
	assert.Contains(t, env.api.lastText(t), "Введите вашу заметку:")
	assert.Equal(t, state.StepAwaitingNote, env.step(t, 1))

	// a note that looks like a reading is still a note
	env.send(t, textUpdate(1, "120 80 72"))
	assert.Equal(t, menus.NoteSaved, env.api.lastText(t))
	assert.Equal(t, state.StepIdle, env.step(t, 1))

	last, err := env.pressure.LastReading(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 130, last.Systolic)
	assert.Equal(t, "120 80 72", last.Note)
}

func TestNoteForDeletedReading(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, textUpdate(1, "130 85 70"))
	env.send(t, textUpdate(1, "/note"))
	env.send(t, callbackUpdate(1, "pressure_delete"))
	env.send(t, textUpdate(1, "заметка"))

	assert.Contains(t, env.api.lastText(t), "Измерение не найдено")
	assert.Equal(t, state.StepIdle, env.step(t, 1))
}

func TestMedicationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(t, textUpdate(1, "/medication"))
	assert.Equal(t, "med_add", *env.api.lastMarkup(t).InlineKeyboard[0][0].CallbackData)

	env.send(t, callbackUpdate(1, "med_add"))
	assert.Equal(t, menus.MedicationPrompt, env.api.lastText(t))

	// name capture wins over reading parse
	env.send(t, textUpdate(1, "120 80 72"))
	assert.Equal(t, "Выберите частоту приема 120 80 72:", env.api.lastText(t))
	assert.Equal(t, state.StepAwaitingFrequency, env.step(t, 1))

	env.send(t, callbackUpdate(1, "frequency_twice"))
	assert.Len(t, env.api.lastMarkup(t).InlineKeyboard, 12)
	assert.Equal(t, state.StepAwaitingTime, env.step(t, 1))

	env.send(t, callbackUpdate(1, "time_08:30"))
	assert.Contains(t, env.api.lastText(t), "✅ Напоминание добавлено!")
	assert.Equal(t, state.StepIdle, env.step(t, 1))

	schedules, err := env.medication.ListSchedules(ctx, 1)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, domain.MedicationSchedule{
		ID: schedules[0].ID, UserID: 1, Name: "120 80 72", TimeOfDay: "08:30", Frequency: domain.FrequencyTwice,
	}, schedules[0])

	readings, err := env.pressure.History(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, readings)

	env.send(t, callbackUpdate(1, "med_list"))
	assert.Contains(t, env.api.lastText(t), "📅 Частота: Два раза в день")
}

func TestStaleButtonsResetFlow(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, callbackUpdate(1, "time_08:00"))
	assert.Equal(t, menus.StaleAction, env.api.lastText(t))

	schedules, err := env.medication.ListSchedules(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, schedules)

	env.send(t, callbackUpdate(1, "med_add"))
	env.send(t, textUpdate(1, "Аспирин"))
	env.send(t, callbackUpdate(1, "time_08:00"))
	assert.Equal(t, menus.StaleAction, env.api.lastText(t))
	assert.Equal(t, state.StepIdle, env.step(t, 1))
}

func TestTextWhileAwaitingButtonAbandonsFlow(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, callbackUpdate(1, "med_add"))
	env.send(t, textUpdate(1, "Аспирин"))
	env.send(t, textUpdate(1, "118 76 64"))

	assert.Contains(t, env.api.lastText(t), "✅ Показатели успешно сохранены!")
	assert.Equal(t, state.StepIdle, env.step(t, 1))
}

func TestCommandAbandonsFlow(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, callbackUpdate(1, "med_add"))
	env.send(t, textUpdate(1, "/pressure"))
	assert.Equal(t, menus.PressurePrompt, env.api.lastText(t))

	env.send(t, textUpdate(1, "Аспирин"))
	assert.Equal(t, menus.InvalidReadingFormat, env.api.lastText(t))
}

func TestDeleteMedication(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.medication.AddSchedule(ctx, 1, "Лозартан", "08:00", domain.FrequencyDaily)
	require.NoError(t, err)
	_, err = env.medication.AddSchedule(ctx, 1, "Лозартан", "08:00", domain.FrequencyTwice)
	require.NoError(t, err)
	_, err = env.medication.AddSchedule(ctx, 2, "Лозартан", "08:00", domain.FrequencyDaily)
	require.NoError(t, err)

	env.send(t, callbackUpdate(1, "med_delete"))
	assert.Len(t, env.api.lastMarkup(t).InlineKeyboard, 2)

	// another user cannot delete by guessing the id
	env.send(t, callbackUpdate(2, "delete_med_"+itoa(first.ID)))
	assert.Equal(t, menus.MedicationMissing, env.api.lastText(t))

	env.send(t, callbackUpdate(1, "delete_med_"+itoa(first.ID)))
	assert.Equal(t, "✅ Лекарство Лозартан успешно удалено!", env.api.lastText(t))

	mine, err := env.medication.ListSchedules(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, mine)

	others, err := env.medication.ListSchedules(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, textUpdate(1, "120 80 72"))
	env.send(t, textUpdate(1, "/export"))

	doc, ok := env.api.sent[len(env.api.sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, menus.ExportCaption, doc.Caption)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Regexp(t, `^pressure_data_\d{8}\.xlsx$`, file.Name)
	assert.NotEmpty(t, file.Bytes)
}

func TestSimpleCommands(t *testing.T) {
	env := newTestEnv(t)

	env.send(t, textUpdate(1, "/start"))
	assert.Equal(t, menus.HelpText, env.api.lastText(t))
	env.send(t, textUpdate(1, "/test"))
	assert.Equal(t, menus.BotAlive, env.api.lastText(t))
	env.send(t, textUpdate(1, "/stats"))
	assert.Equal(t, menus.NoReadings, env.api.lastText(t))
	env.send(t, textUpdate(1, "/unknown"))
	assert.Equal(t, menus.UnknownCommand, env.api.lastText(t))
}

type failingPressure struct {
	interfaces.PressureServiceInterface
}

func (failingPressure) History(context.Context, int64, int) ([]domain.Reading, error) {
	return nil, errors.New("disk full")
}

func (failingPressure) WeeklyStats(context.Context, int64) (*domain.WeeklyStats, error) {
	return nil, errors.New("disk full")
}

func TestStoreErrorsBecomeApologies(t *testing.T) {
	env := newTestEnv(t)
	env.withPressure(failingPressure{})

	env.send(t, textUpdate(1, "/history"))
	assert.Equal(t, "Произошла ошибка при получении истории.", env.api.lastText(t))

	env.send(t, textUpdate(1, "/stats"))
	assert.Equal(t, "Произошла ошибка при получении статистики.", env.api.lastText(t))

	// the failure stays with the request that caused it
	env.send(t, textUpdate(2, "/test"))
	assert.Equal(t, menus.BotAlive, env.api.lastText(t))
}

func TestRegistrationFailureUsesDefaultApology(t *testing.T) {
	env := newTestEnv(t)
	env.handler.deps.UserService = brokenUsers{}

	env.send(t, textUpdate(1, "/test"))
	assert.Equal(t, apperrors.DefaultUserMessage, env.api.lastText(t))
}

type brokenUsers struct {
	interfaces.UserServiceInterface
}

func (brokenUsers) RegisterUser(context.Context, int64, string, string, string) (*database.User, error) {
	return nil, errors.New("connection refused")
}

func TestUpdatesWithoutSenderAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.send(t, tgbotapi.Update{})
	env.send(t, tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 5}, Text: "hi"}})
	assert.Empty(t, env.api.sent)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
