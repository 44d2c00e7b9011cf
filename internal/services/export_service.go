package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"consensuscli/internal/config"
	"consensuscli/internal/consensus"
	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/exporter"
	"consensuscli/internal/infrastructure"
	"consensuscli/internal/pagination"
	"consensuscli/internal/transform"
	"consensuscli/pkg/contracts/domain"
)

// RecordSource yields every record of the configured report window
type RecordSource interface {
	FetchAll(ctx context.Context) ([]domain.Record, int, error)
}

// RunResult summarises one completed export run
type RunResult struct {
	TraceID      string          `json:"trace_id"`
	Records      int             `json:"records"`
	Pages        int             `json:"pages"`
	FullPath     string          `json:"full_path"`
	SummaryPath  string          `json:"summary_path"`
	WorkbookPath string          `json:"workbook_path,omitempty"`
	Duration     time.Duration   `json:"duration"`
	FullStats    transform.Stats `json:"full_stats"`
}

// ExportService runs the fetch, transform and write pipeline
type ExportService struct {
	settings *config.Settings
	source   RecordSource
	exporter *exporter.Exporter
	tracer   trace.Tracer
	metrics  *infrastructure.RunMetrics
	system   *infrastructure.SystemMetrics
	logger   *slog.Logger
}

type serviceOptions struct {
	httpClient *http.Client
	telemetry  *infrastructure.OTelProviders
	logger     *slog.Logger
	source     RecordSource
	now        func() time.Time
}

// ServiceOption configures an ExportService
type ServiceOption func(*serviceOptions)

// WithHTTPClient replaces the HTTP client used for report calls
func WithHTTPClient(hc *http.Client) ServiceOption {
	return func(o *serviceOptions) { o.httpClient = hc }
}

// WithTelemetry enables tracing and run metrics
func WithTelemetry(providers *infrastructure.OTelProviders) ServiceOption {
	return func(o *serviceOptions) { o.telemetry = providers }
}

// WithLogger sets the base logger for the service and its components
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) { o.logger = logger }
}

// WithRecordSource replaces the paginated API source
func WithRecordSource(source RecordSource) ServiceOption {
	return func(o *serviceOptions) { o.source = source }
}

// WithClock overrides the clock used to stamp export file names
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) { o.now = now }
}

// NewExportService wires the API client, paginator and exporter from settings
func NewExportService(settings *config.Settings, opts ...ServiceOption) (*ExportService, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}

	o := &serviceOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = infrastructure.GetLogger()
	}

	var tracer trace.Tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	var metrics *infrastructure.RunMetrics
	var system *infrastructure.SystemMetrics
	if o.telemetry != nil {
		if o.telemetry.Tracer != nil {
			tracer = o.telemetry.Tracer
		}
		if o.telemetry.Meter != nil {
			m, err := infrastructure.CreateRunMetrics(o.telemetry.Meter)
			if err != nil {
				return nil, fmt.Errorf("failed to create run metrics: %w", err)
			}
			metrics = m

			sm, err := infrastructure.NewSystemMetrics(o.telemetry.Meter)
			if err != nil {
				return nil, fmt.Errorf("failed to create system metrics: %w", err)
			}
			system = sm
		}
	}

	source := o.source
	if source == nil {
		clientOpts := []consensus.Option{
			consensus.WithTracer(tracer),
			consensus.WithMetrics(metrics),
			consensus.WithLogger(o.logger),
		}
		if o.httpClient != nil {
			clientOpts = append(clientOpts, consensus.WithHTTPClient(o.httpClient))
		}
		client := consensus.NewClient(settings, clientOpts...)
		source = pagination.New(client, settings, o.logger)
	}

	exp := exporter.New(settings,
		exporter.WithLogger(o.logger),
		exporter.WithMetrics(metrics),
		exporter.WithClock(o.now))

	return &ExportService{
		settings: settings,
		source:   source,
		exporter: exp,
		tracer:   tracer,
		metrics:  metrics,
		system:   system,
		logger:   infrastructure.WithComponent(o.logger, "export_service"),
	}, nil
}

// Run fetches the whole report window, transforms it and writes both
// exports. Nothing is written unless every page was fetched.
func (s *ExportService) Run(ctx context.Context) (result *RunResult, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "consensus.export_run",
		trace.WithAttributes(
			attribute.String("start_date", s.settings.StartDate),
			attribute.String("end_date", s.settings.EndDate),
		))
	defer func() {
		duration := time.Since(start)
		s.metrics.RecordRun(ctx, duration, err == nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			attrs := []any{slog.Duration("duration", duration)}
			if apperrors.IsType(err, apperrors.ErrTypeAPI) {
				attrs = append(attrs, slog.String("api_error_kind", string(apperrors.KindOf(err))))
				if code := apperrors.StatusCodeOf(err); code != 0 {
					attrs = append(attrs, slog.Int("status_code", code))
				}
			}
			infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Export run failed", attrs...)
		}
		span.End()
	}()

	s.logger.InfoContext(ctx, "Starting export run",
		slog.Any("settings", s.settings),
		slog.String("otel_trace_id", infrastructure.TraceIDFromContext(ctx)))

	records, pages, err := s.source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export canceled before writing: %w", err)
	}
	s.logger.DebugContext(ctx, "Records held in memory",
		slog.Int("records", len(records)),
		slog.Any("runtime", s.system.Snapshot(ctx, "fetched")))

	full, summary := transform.Records(records, transform.Options{ListSeparator: s.settings.ListSeparator})
	if len(full) != len(records) || len(summary) != len(records) {
		return nil, fmt.Errorf("row count mismatch: %d records, %d full rows, %d summary rows",
			len(records), len(full), len(summary))
	}

	stats := transform.Describe(full, domain.FullColumns())
	s.logger.InfoContext(ctx, "Transformed records",
		slog.Int("rows", stats.Rows),
		slog.Int("columns", stats.Columns),
		slog.Any("empty_counts", stats.EmptyCounts),
		slog.Float64("completeness", stats.Complete()))

	if len(records) == 0 {
		s.logger.WarnContext(ctx, "No records in report window, writing header-only exports")
	}

	exported, err := s.exporter.Export(ctx, full, summary)
	if err != nil {
		return nil, err
	}

	result = &RunResult{
		TraceID:      infrastructure.GetTraceID(ctx),
		Records:      len(records),
		Pages:        pages,
		FullPath:     exported.FullPath,
		SummaryPath:  exported.SummaryPath,
		WorkbookPath: exported.WorkbookPath,
		Duration:     time.Since(start),
		FullStats:    stats,
	}

	s.system.Snapshot(ctx, "exported")

	span.SetAttributes(
		attribute.Int("records", result.Records),
		attribute.Int("pages", result.Pages))

	s.logger.InfoContext(ctx, "Export run complete",
		slog.Int("records", result.Records),
		slog.Int("pages", result.Pages),
		slog.String("full_path", result.FullPath),
		slog.String("summary_path", result.SummaryPath),
		slog.Duration("duration", result.Duration))

	return result, nil
}
