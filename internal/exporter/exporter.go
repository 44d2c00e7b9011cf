package exporter

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"consensuscli/internal/config"
	"consensuscli/internal/infrastructure"
	"consensuscli/pkg/contracts/domain"
)

// Sheet names of the optional workbook
const (
	FullSheet    = "Full"
	SummarySheet = "Summary"
)

// ExportResult describes the files produced by one Export call
type ExportResult struct {
	FullPath     string `json:"full_path"`
	SummaryPath  string `json:"summary_path"`
	WorkbookPath string `json:"workbook_path,omitempty"`
	FullRows     int    `json:"full_rows"`
	SummaryRows  int    `json:"summary_rows"`
}

// Files lists every path written, in write order
func (r *ExportResult) Files() []string {
	files := []string{r.FullPath, r.SummaryPath}
	if r.WorkbookPath != "" {
		files = append(files, r.WorkbookPath)
	}
	return files
}

// Exporter writes the full and summary exports as a pair
type Exporter struct {
	settings *config.Settings
	csv      *CSVWriter
	metrics  *infrastructure.RunMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Exporter
type Option func(*Exporter)

// WithLogger sets the exporter logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records written row counts
func WithMetrics(metrics *infrastructure.RunMetrics) Option {
	return func(e *Exporter) {
		e.metrics = metrics
	}
}

// WithClock overrides the clock used to stamp file names
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Exporter writing into settings.OutputDir
func New(settings *config.Settings, opts ...Option) *Exporter {
	e := &Exporter{
		settings: settings,
		logger:   infrastructure.GetLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = infrastructure.WithComponent(e.logger, "exporter")
	e.csv = NewCSVWriter(WriteOptions{BOMPrefix: settings.BOMPrefix}, e.logger)
	return e
}

// Export writes the full export, then the summary export, then the optional
// workbook. Each file name carries the time of its own write. When any step
// fails, files already written by this call are removed.
func (e *Exporter) Export(ctx context.Context, full, summary []domain.Row) (*ExportResult, error) {
	result := &ExportResult{
		FullRows:    len(full),
		SummaryRows: len(summary),
	}

	result.FullPath = e.settings.OutputPath(FileName(e.settings.FullPrefix, e.now()))
	if err := e.csv.WriteRows(result.FullPath, domain.FullColumns(), full); err != nil {
		return nil, err
	}

	result.SummaryPath = e.settings.OutputPath(FileName(e.settings.SummaryPrefix, e.now()))
	if err := e.csv.WriteRows(result.SummaryPath, domain.SummaryColumns(), summary); err != nil {
		e.rollback(ctx, result.FullPath)
		return nil, err
	}

	if e.settings.WorkbookExport {
		result.WorkbookPath = e.settings.OutputPath(WorkbookName(config.WorkbookPrefix, e.now()))
		sheets := []Sheet{
			{Name: FullSheet, Headers: domain.FullColumns(), Rows: full},
			{Name: SummarySheet, Headers: domain.SummaryColumns(), Rows: summary},
		}
		if err := WriteWorkbook(result.WorkbookPath, sheets, e.logger); err != nil {
			e.rollback(ctx, result.FullPath, result.SummaryPath)
			return nil, err
		}
	}

	e.metrics.RecordRowsWritten(ctx, "full", len(full))
	e.metrics.RecordRowsWritten(ctx, "summary", len(summary))

	e.logger.InfoContext(ctx, "Export complete",
		slog.String("full_path", result.FullPath),
		slog.String("summary_path", result.SummaryPath),
		slog.String("workbook_path", result.WorkbookPath),
		slog.Int("rows", len(full)))

	return result, nil
}

func (e *Exporter) rollback(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.WarnContext(ctx, "Failed to remove partial export",
				slog.String("file_path", path),
				slog.String("error", err.Error()))
			continue
		}
		e.logger.InfoContext(ctx, "Removed partial export", slog.String("file_path", path))
	}
}
