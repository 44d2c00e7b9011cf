package exporter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	apperrors "consensuscli/internal/errors"
	"consensuscli/pkg/contracts/domain"
)

// Sheet is one worksheet of an exported workbook
type Sheet struct {
	Name    string
	Headers []string
	Rows    []domain.Row
}

// WriteWorkbook writes each sheet, header row first, into a single .xlsx
// file. Like WriteRows the file only appears once it is complete.
func WriteWorkbook(path string, sheets []Sheet, logger *slog.Logger) error {
	if len(sheets) == 0 {
		return apperrors.NewWriteError(path, fmt.Errorf("no sheets to write"))
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return apperrors.NewWriteError(path, fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err))
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return apperrors.NewWriteError(path, fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err))
		}

		if err := fillSheet(f, sheet); err != nil {
			return apperrors.NewWriteError(path, err)
		}
	}
	f.SetActiveSheet(0)

	if err := writeAtomic(path, func(out *os.File) error {
		return f.Write(out)
	}); err != nil {
		return apperrors.NewWriteError(path, err)
	}

	if logger != nil {
		logger.Info("Workbook written",
			slog.String("file_path", path),
			slog.Int("sheets", len(sheets)))
	}
	return nil
}

func fillSheet(f *excelize.File, sheet Sheet) error {
	if err := setRow(f, sheet.Name, 1, sheet.Headers); err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		if err := setRow(f, sheet.Name, i+2, row.Project(sheet.Headers)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", rowNum, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %q: %w", rowNum, sheet, err)
	}
	return nil
}
