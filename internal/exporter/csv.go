package exporter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/infrastructure"
	"consensuscli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	options WriteOptions
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(options WriteOptions, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &CSVWriter{
		options: options,
		logger:  infrastructure.WithComponent(logger, "csv_writer"),
	}
}

// WriteRows writes the header followed by one line per row, each projected
// through headers. Columns a row lacks are written as empty cells.
func (w *CSVWriter) WriteRows(path string, headers []string, rows []domain.Row) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Project(headers)
	}
	return w.WriteRecords(path, headers, records)
}

// WriteRecords writes pre-projected records. The file at path is replaced
// only once every record has been written and flushed.
func (w *CSVWriter) WriteRecords(path string, headers []string, records [][]string) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(records)))

	if err := writeAtomic(path, func(f *os.File) error {
		return w.encode(f, headers, records)
	}); err != nil {
		w.logger.Error("CSV write failed",
			slog.String("file_path", path),
			slog.String("error", err.Error()))
		return apperrors.NewWriteError(path, err)
	}

	return nil
}

func (w *CSVWriter) encode(f *os.File, headers []string, records [][]string) error {
	buf := bufio.NewWriter(f)

	// Write BOM if requested (helps Excel recognize UTF-8)
	if w.options.BOMPrefix {
		if _, err := buf.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(buf)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush records: %w", err)
	}

	return buf.Flush()
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path. The temporary file is removed on any failure.
func writeAtomic(path string, write func(*os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
