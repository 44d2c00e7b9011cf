package consensus

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"consensuscli/internal/config"
	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/infrastructure"
	"consensuscli/pkg/contracts/domain"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 256 << 20

// Client issues report calls against the single configured endpoint
type Client struct {
	settings   *config.Settings
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	metrics    *infrastructure.RunMetrics
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from settings
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracer sets the tracer used for per-page spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithMetrics sets the run metrics to record fetches into
func WithMetrics(metrics *infrastructure.RunMetrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a report client from settings
func NewClient(settings *config.Settings, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		tracer:   noop.NewTracerProvider().Tracer("consensus"),
		logger:   infrastructure.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = infrastructure.WithComponent(c.logger, "consensus_client")

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(settings, c.logger)
	}

	if settings.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), 1)
	}

	return c
}

// newHTTPClient builds the HTTP client with the configured timeout. The
// transport is instrumented so each call also gets an HTTP client span.
func newHTTPClient(settings *config.Settings, logger *slog.Logger) *http.Client {
	return &http.Client{
		Timeout:   settings.RequestTimeout,
		Transport: otelhttp.NewTransport(newTransport(settings, logger)),
	}
}

// newTransport applies the TLS verification setting
func newTransport(settings *config.Settings, logger *slog.Logger) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !settings.VerifySSL {
		logger.Warn("TLS certificate verification is disabled",
			slog.String("endpoint", settings.BaseURL))
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}
	return transport
}

// BuildRequest assembles the request body for one page
func (c *Client) BuildRequest(page int) ReportRequest {
	return ReportRequest{
		Auth: Auth{
			APIKey:     c.settings.APIKey,
			APISecret:  c.settings.APISecret,
			UserEmail:  c.settings.Email,
			SourceName: c.settings.SourceName,
		},
		Paging: Paging{
			Limit:  c.settings.PageLimit,
			Page:   page,
			SortBy: config.SortBy,
			Order:  config.SortOrder,
		},
		StartDate: c.settings.StartDate,
		EndDate:   c.settings.EndDate,
	}
}

// FetchPage issues one POST for the given page. It never retries; any
// failure is returned as an API error.
func (c *Client) FetchPage(ctx context.Context, page int) (*domain.Page, error) {
	endpoint := c.settings.BaseURL

	ctx, span := c.tracer.Start(ctx, "consensus.fetch_page",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("page.number", page),
			attribute.Int("page.limit", c.settings.PageLimit),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(ctx, time.Now(), apperrors.NewAPIError(apperrors.APIKindNetwork, endpoint, page,
				"request pacing interrupted", err))
		}
	}

	body, err := json.Marshal(c.BuildRequest(page))
	if err != nil {
		return nil, apperrors.NewAPIError(apperrors.APIKindParse, endpoint, page, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewAPIError(apperrors.APIKindNetwork, endpoint, page, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent)

	c.logger.InfoContext(ctx, "Requesting report page",
		slog.String("endpoint", endpoint),
		slog.Int("page", page),
		slog.Int("limit", c.settings.PageLimit),
		slog.String("start_date", c.settings.StartDate),
		slog.String("end_date", c.settings.EndDate))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, start, apperrors.NewAPIError(apperrors.APIKindNetwork, endpoint, page,
			"report request failed", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(ctx, start, apperrors.NewAPIError(apperrors.APIKindNetwork, endpoint, page,
			"failed to read response", err))
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(ctx, start, apperrors.NewAPIStatusError(endpoint, page, resp.StatusCode, respBody))
	}

	result, err := decodePage(respBody, page, c.settings.PageLimit)
	if err != nil {
		return nil, c.fail(ctx, start, apperrors.NewAPIError(apperrors.APIKindParse, endpoint, page,
			"failed to parse response", err).
			WithContext(apperrors.CtxBody, apperrors.Truncate(string(respBody), apperrors.MaxBodyInError)))
	}

	duration := time.Since(start)
	c.metrics.RecordPage(ctx, result.Len(), duration)
	span.SetAttributes(attribute.Int("page.records", result.Len()))

	attrs := []any{
		slog.Int("page", page),
		slog.Int("records", result.Len()),
		slog.Duration("duration", duration),
	}
	if more, known := result.HasMore(); known {
		attrs = append(attrs, slog.Bool("has_more", more))
	}
	c.logger.InfoContext(ctx, "Fetched report page", attrs...)

	return result, nil
}

// fail logs, traces and counts a failed call, then returns err
func (c *Client) fail(ctx context.Context, start time.Time, err *apperrors.AppError) error {
	kind := string(apperrors.KindOf(err))
	c.metrics.RecordAPIError(ctx, kind, time.Since(start))
	infrastructure.RecordError(ctx, err)

	attrs := []any{
		slog.String("kind", kind),
		slog.Any("endpoint", err.Context[apperrors.CtxEndpoint]),
		slog.Any("page", err.Context[apperrors.CtxPage]),
		slog.String("error", err.Error()),
	}
	if code, ok := err.Context[apperrors.CtxStatusCode]; ok {
		attrs = append(attrs, slog.Any("status_code", code))
	}
	if body, ok := err.Context[apperrors.CtxBody]; ok {
		attrs = append(attrs, slog.Any("response_body", body))
	}
	c.logger.ErrorContext(ctx, "Report request failed", attrs...)

	return err
}

// decodePage turns a response body into a Page. Items that are not JSON
// objects are rejected; the body must carry a "data" envelope.
func decodePage(body []byte, page, limit int) (*domain.Page, error) {
	var envelope ReportResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("response has no data object")
	}

	records := make([]domain.Record, 0, len(envelope.Data.Items))
	for i, raw := range envelope.Data.Items {
		var rec domain.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("item %d is not an object: %w", i, err)
		}
		if rec == nil {
			rec = domain.Record{}
		}
		records = append(records, rec)
	}

	return &domain.Page{
		Number:  page,
		Limit:   limit,
		Records: records,
		Paging:  envelope.Data.Paging,
	}, nil
}
