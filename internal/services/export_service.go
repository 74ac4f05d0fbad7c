package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vladimiradmaev/pressure-helper/internal/domain"
	"github.com/vladimiradmaev/pressure-helper/internal/utils"
)

const (
	ReadingsSheet    = "Измерения давления"
	MedicationsSheet = "Лекарства"
)

var readingsHeader = []interface{}{"ID пользователя", "Дата и время", "Систолическое", "Диастолическое", "Пульс", "Заметки"}

var medicationsHeader = []interface{}{"ID пользователя", "Лекарство", "Время", "Частота"}

// Export is a generated workbook kept in memory
type Export struct {
	FileName    string
	Data        []byte
	Readings    int
	Medications int
}

type ExportService struct {
	readings  domain.ReadingStore
	schedules domain.MedicationStore
	now       func() time.Time
}

func NewExportService(readings domain.ReadingStore, schedules domain.MedicationStore) *ExportService {
	return &ExportService{
		readings:  readings,
		schedules: schedules,
		now:       time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// BuildWorkbook renders the user's readings (oldest first) and schedules into a two-sheet XLSX
func (s *ExportService) BuildWorkbook(ctx context.Context, userID int64) (*Export, error) {
	readings, err := s.readings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].TakenAt.Before(readings[j].TakenAt)
	})

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReadingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(MedicationsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	readingRows := make([][]interface{}, len(readings))
	for i, r := range readings {
		readingRows[i] = []interface{}{r.UserID, utils.FormatTimestamp(r.TakenAt), r.Systolic, r.Diastolic, r.Pulse, r.Note}
	}
	if err := writeSheet(f, ReadingsSheet, readingsHeader, readingRows, headerStyle); err != nil {
		return nil, err
	}

	scheduleRows := make([][]interface{}, len(schedules))
	for i, m := range schedules {
		scheduleRows[i] = []interface{}{m.UserID, m.Name, m.TimeOfDay, m.Frequency.Label()}
	}
	if err := writeSheet(f, MedicationsSheet, medicationsHeader, scheduleRows, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &Export{
		FileName:    fmt.Sprintf("pressure_data_%s.xlsx", s.now().In(utils.Location).Format("20060102")),
		Data:        buf.Bytes(),
		Readings:    len(readings),
		Medications: len(schedules),
	}, nil
}

func writeSheet(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}
	return nil
}
