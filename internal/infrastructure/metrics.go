package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RunMetrics holds the instruments recorded during one export run
type RunMetrics struct {
	PagesFetched   metric.Int64Counter
	RecordsFetched metric.Int64Counter
	FetchDuration  metric.Float64Histogram
	APIErrors      metric.Int64Counter
	RowsWritten    metric.Int64Counter
	RunDuration    metric.Float64Histogram
}

// CreateRunMetrics creates the export run instruments
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	pagesFetched, err := meter.Int64Counter(
		"consensus_pages_fetched",
		metric.WithDescription("Total number of report pages fetched"),
	)
	if err != nil {
		return nil, err
	}

	recordsFetched, err := meter.Int64Counter(
		"consensus_records_fetched",
		metric.WithDescription("Total number of report records fetched"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"consensus_fetch_duration_seconds",
		metric.WithDescription("Report page fetch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	apiErrors, err := meter.Int64Counter(
		"consensus_api_errors",
		metric.WithDescription("Total number of failed report calls"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"consensus_rows_written",
		metric.WithDescription("Total number of rows written to export files"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"consensus_run_duration_seconds",
		metric.WithDescription("Export run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		PagesFetched:   pagesFetched,
		RecordsFetched: recordsFetched,
		FetchDuration:  fetchDuration,
		APIErrors:      apiErrors,
		RowsWritten:    rowsWritten,
		RunDuration:    runDuration,
	}, nil
}

// RecordPage records one successful page fetch
func (m *RunMetrics) RecordPage(ctx context.Context, records int, duration time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Add(ctx, 1)
	m.RecordsFetched.Add(ctx, int64(records))
	m.FetchDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "success")))
}

// RecordAPIError records one failed page fetch
func (m *RunMetrics) RecordAPIError(ctx context.Context, kind string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.APIErrors.Add(ctx, 1, attrs)
	m.FetchDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "failure")))
}

// RecordRowsWritten records rows written to one export file
func (m *RunMetrics) RecordRowsWritten(ctx context.Context, export string, rows int) {
	if m == nil {
		return
	}
	m.RowsWritten.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("export", export)))
}

// RecordRun records the outcome of a whole run
func (m *RunMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
