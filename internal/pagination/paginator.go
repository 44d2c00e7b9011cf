package pagination

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"consensuscli/internal/config"
	apperrors "consensuscli/internal/errors"
	"consensuscli/internal/infrastructure"
	"consensuscli/pkg/contracts/domain"
)

// PageFetcher fetches a single page of records
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (*domain.Page, error)
}

// Paginator walks a PageFetcher until the stop policy says the data is
// exhausted
type Paginator struct {
	fetcher    PageFetcher
	startPage  int
	pageLimit  int
	maxPages   int
	stopPolicy string
	logger     *slog.Logger
}

// New creates a Paginator from settings
func New(fetcher PageFetcher, settings *config.Settings, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Paginator{
		fetcher:    fetcher,
		startPage:  settings.PageNumber,
		pageLimit:  settings.PageLimit,
		maxPages:   settings.MaxPages,
		stopPolicy: settings.StopPolicy,
		logger:     infrastructure.WithComponent(logger, "paginator"),
	}
}

// Pages yields pages in increasing page-number order. Iteration ends after
// the last page, or after yielding a non-nil error. Each call starts again
// from the configured start page.
func (p *Paginator) Pages(ctx context.Context) iter.Seq2[*domain.Page, error] {
	return func(yield func(*domain.Page, error) bool) {
		for fetched := 0; ; fetched++ {
			if fetched >= p.maxPages {
				err := apperrors.NewPaginationError(
					fmt.Sprintf("still receiving data after %d pages", p.maxPages)).
					WithContext("start_page", p.startPage).
					WithContext("max_pages", p.maxPages)
				p.logger.ErrorContext(ctx, "Pagination ceiling reached",
					slog.Int("start_page", p.startPage),
					slog.Int("max_pages", p.maxPages))
				yield(nil, err)
				return
			}

			number := p.startPage + fetched
			page, err := p.fetcher.FetchPage(ctx, number)
			if err != nil {
				yield(nil, err)
				return
			}

			last, reason := p.isLast(page)
			if !yield(page, nil) {
				return
			}
			if last {
				p.logger.InfoContext(ctx, "Reached last page",
					slog.Int("page", number),
					slog.String("reason", reason))
				return
			}
		}
	}
}

// FetchAll accumulates every record across all pages, preserving order.
// Nothing is returned when any page fails.
func (p *Paginator) FetchAll(ctx context.Context) ([]domain.Record, int, error) {
	var records []domain.Record
	pages := 0

	for page, err := range p.Pages(ctx) {
		if err != nil {
			return nil, pages, err
		}
		pages++
		records = append(records, page.Records...)
		p.logger.DebugContext(ctx, "Accumulated page",
			slog.Int("page", page.Number),
			slog.Int("page_records", page.Len()),
			slog.Int("total_records", len(records)))
	}

	p.logger.InfoContext(ctx, "Fetched all pages",
		slog.Int("pages", pages),
		slog.Int("records", len(records)))

	return records, pages, nil
}

// isLast applies the stop policy to one page
func (p *Paginator) isLast(page *domain.Page) (bool, string) {
	if page.Len() == 0 {
		return true, "empty page"
	}

	short := page.Len() < p.pageLimit
	more, known := page.HasMore()

	switch p.stopPolicy {
	case config.StopPolicySize:
		if short {
			return true, "short page"
		}
	case config.StopPolicyFlag:
		if known {
			if !more {
				return true, "no next page"
			}
			return false, ""
		}
		if short {
			return true, "short page"
		}
	default:
		if short {
			return true, "short page"
		}
		if known && !more {
			return true, "no next page"
		}
	}

	return false, ""
}
