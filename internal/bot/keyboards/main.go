package keyboards

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

// Callback data tokens
const (
	MedicationAdd    = "med_add"
	MedicationList   = "med_list"
	MedicationDelete = "med_delete"
	PressureDelete   = "pressure_delete"
	PressureNote     = "pressure_note"

	FrequencyPrefix        = "frequency_"
	TimePrefix             = "time_"
	DeleteMedicationPrefix = "delete_med_"
)

const timeButtonsPerRow = 4

// ReadingActions is attached to the confirmation of a saved reading
func ReadingActions() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Удалить измерение", PressureDelete),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Добавить заметку", PressureNote),
		),
	)
}

// MedicationMenu creates the /medication keyboard
func MedicationMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить лекарство", MedicationAdd),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Список лекарств", MedicationList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Удалить лекарство", MedicationDelete),
		),
	)
}

// FrequencyMenu offers one button per known frequency
func FrequencyMenu() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(domain.Frequencies))
	for _, f := range domain.Frequencies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Label(), FrequencyPrefix+string(f)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// TimePicker offers every half hour of the day
func TimePicker() tgbotapi.InlineKeyboardMarkup {
	slots := utils.HalfHourSlots()
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(slots); i += timeButtonsPerRow {
		end := min(i+timeButtonsPerRow, len(slots))
		var row []tgbotapi.InlineKeyboardButton
		for _, slot := range slots[i:end] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(slot, TimePrefix+slot))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DeleteMedicationMenu lists the user's schedules as delete buttons
func DeleteMedicationMenu(schedules []domain.MedicationSchedule) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(schedules))
	for _, s := range schedules {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ %s (%s)", s.Name, s.TimeOfDay),
				DeleteMedicationPrefix+strconv.FormatUint(uint64(s.ID), 10),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ParseFrequency extracts the frequency from a frequency_* token
func ParseFrequency(data string) (domain.Frequency, bool) {
	raw, ok := strings.CutPrefix(data, FrequencyPrefix)
	if !ok {
		return "", false
	}
	f := domain.Frequency(raw)
	return f, f.Valid()
}

// ParseTime extracts HH:MM from a time_* token
func ParseTime(data string) (string, bool) {
	raw, ok := strings.CutPrefix(data, TimePrefix)
	if !ok {
		return "", false
	}
	t, err := utils.ParseTimeOfDay(raw)
	if err != nil {
		return "", false
	}
	return t, true
}

// ParseDeleteMedication extracts the schedule id from a delete_med_* token
func ParseDeleteMedication(data string) (uint, bool) {
	raw, ok := strings.CutPrefix(data, DeleteMedicationPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
