package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

// Sender is the part of the telegram client used to post messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

const (
	HelpText = `👋 Привет! Я бот для контроля давления и приема лекарств.

Доступные команды:
/pressure - Записать показатели давления
/medication - Добавить лекарство и напоминание
/history - Показать историю измерений
/note - Добавить заметку к последнему измерению
/stats - Показать статистику за неделю
/export - Экспортировать данные в Excel
/test - Проверить работоспособность бота`

	PressurePrompt = `Введите показатели давления в формате:
систолическое диастолическое пульс
Например: 120 80 72`

	InvalidReadingFormat = `❌ Неверный формат. Пожалуйста, введите три числа через пробел:
систолическое диастолическое пульс`

	NoReadings        = "У вас пока нет записей о давлении."
	NoWeeklyReadings  = "За последнюю неделю нет записей о давлении."
	NoMedications     = "У вас пока нет добавленных лекарств."
	MedicationPrompt  = "Введите название лекарства:"
	DeleteMedPrompt   = "Выберите лекарство для удаления:"
	NoteSaved         = "✅ Заметка успешно добавлена!"
	ReadingDeleted    = "✅ Последнее измерение успешно удалено!"
	BotAlive          = "✅ Бот работает корректно!"
	ExportCaption     = "📊 Ваши данные экспортированы в Excel файл."
	UnknownCommand    = "Неизвестная команда. Используйте /start для просмотра доступных команд."
	StaleAction       = "Действие устарело. Начните заново через /medication."
	MedicationMissing = "Лекарство не найдено. Возможно, оно уже удалено."
)

// SendMainMenu sends the help text
func SendMainMenu(api Sender, chatID int64) error {
	_, err := api.Send(tgbotapi.NewMessage(chatID, HelpText))
	return err
}

// SendMedicationMenu sends the add/list/delete keyboard
func SendMedicationMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "💊 Управление лекарствами:")
	msg.ReplyMarkup = keyboards.MedicationMenu()
	_, err := api.Send(msg)
	return err
}

func ReadingSaved(r *domain.Reading) string {
	return fmt.Sprintf("✅ Показатели успешно сохранены!\n\nДата: %s\nДавление: %d/%d\nПульс: %d",
		utils.FormatTimestamp(r.TakenAt), r.Systolic, r.Diastolic, r.Pulse)
}

// History lists readings in the order given
func History(readings []domain.Reading) string {
	if len(readings) == 0 {
		return NoReadings
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Последние %d измерений:\n\n", len(readings))
	for _, r := range readings {
		note := r.Note
		if note == "" {
			note = "Нет"
		}
		fmt.Fprintf(&b, "Дата: %s\nДавление: %d/%d\nПульс: %d\nЗаметка: %s\n\n",
			utils.FormatTimestamp(r.TakenAt), r.Systolic, r.Diastolic, r.Pulse, note)
	}
	return strings.TrimRight(b.String(), "\n")
}

func NotePrompt(r *domain.Reading) string {
	return fmt.Sprintf("Последнее измерение:\nДата: %s\nДавление: %d/%d\nПульс: %d\n\nВведите вашу заметку:",
		utils.FormatTimestamp(r.TakenAt), r.Systolic, r.Diastolic, r.Pulse)
}

func Stats(s *domain.WeeklyStats) string {
	switch {
	case s.Total == 0:
		return NoReadings
	case s.Count == 0:
		return NoWeeklyReadings
	}
	return fmt.Sprintf("📊 Статистика за последние 7 дней:\n\n"+
		"Среднее систолическое: %.1f\n"+
		"Среднее диастолическое: %.1f\n"+
		"Средний пульс: %.1f\n"+
		"Количество измерений: %d",
		s.AvgSystolic, s.AvgDiastolic, s.AvgPulse, s.Count)
}

func MedicationList(schedules []domain.MedicationSchedule) string {
	if len(schedules) == 0 {
		return NoMedications
	}
	var b strings.Builder
	b.WriteString("📋 Ваши лекарства:\n\n")
	for _, s := range schedules {
		fmt.Fprintf(&b, "💊 %s\n🕒 Время: %s\n📅 Частота: %s\n-------------------\n",
			s.Name, s.TimeOfDay, s.Frequency.Label())
	}
	return b.String()
}

func FrequencyPrompt(name string) string {
	return fmt.Sprintf("Выберите частоту приема %s:", name)
}

func TimePrompt(name string, frequency domain.Frequency) string {
	return fmt.Sprintf("Выберите время для приема %s (%s):", name, frequency.Label())
}

func ScheduleSaved(s *domain.MedicationSchedule) string {
	return fmt.Sprintf("✅ Напоминание добавлено!\n\n💊 %s\n🕒 Время (МСК): %s\n📅 Частота: %s",
		s.Name, s.TimeOfDay, s.Frequency.Label())
}

func MedicationDeleted(name string) string {
	return fmt.Sprintf("✅ Лекарство %s успешно удалено!", name)
}

// Reminder is the text delivered when a schedule comes due
func Reminder(medicationName, timeOfDay string) string {
	return fmt.Sprintf("⏰ Напоминание!\n\nПора принять лекарство:\n💊 %s\n🕒 Время (МСК): %s", medicationName, timeOfDay)
}
