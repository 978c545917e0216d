package analytics

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"newsdesk/api/logger"
	"newsdesk/api/models"
)

// CSVPageSize is the number of facts fetched per export round trip.
const CSVPageSize = 1000

const csvTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrExportFailed is returned when an export fails before any byte of the
// body was sent. Failures after that point truncate the stream silently.
var ErrExportFailed = errors.New("analytics export failed")

// CSVHeader is the fixed export header. The client address, raw or
// anonymized, is never exported.
var CSVHeader = []string{"Timestamp", "Article", "Brand", "Country", "City", "Browser", "OS", "Device", "Referrer"}

// ResponseSink is the streaming destination of an export. gin.ResponseWriter
// satisfies it.
type ResponseSink interface {
	http.ResponseWriter
	http.Flusher
	Written() bool
}

// StreamAnalyticsCSV writes every matching fact, newest first, as CSV. Facts
// are fetched CSVPageSize at a time and each page is flushed before the next
// fetch. The returned error wraps ErrExportFailed and is only non-nil when
// nothing was sent yet; the export headers are removed in that case so the
// caller can answer with an error status.
func (s *Service) StreamAnalyticsCSV(ctx context.Context, w ResponseSink, f models.AnalyticsFilter) error {
	header := w.Header()
	header.Set("Content-Type", "text/csv; charset=utf-8")
	header.Set("Content-Disposition", "attachment; filename=analytics.csv")

	exported := 0
	fail := func(stage string, err error) error {
		if w.Written() {
			s.log.Warn("CSV export truncated",
				logger.String("stage", stage),
				logger.Int("rows", exported),
				logger.Error(err),
			)
			return nil
		}
		header.Del("Content-Type")
		header.Del("Content-Disposition")
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, stage, err)
	}

	q, err := s.scope(ctx, f)
	if err != nil {
		return fail("scope", err)
	}
	q.Newest = true
	q.Limit = CSVPageSize

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fail("header", err)
	}

	for offset := 0; ; offset += CSVPageSize {
		q.Offset = offset

		views, err := s.views.ListPageViews(ctx, q)
		if err != nil {
			return fail("fetch", err)
		}

		summaries, err := s.content.ArticleSummaries(ctx, articleIDs(views))
		if err != nil {
			return fail("join", err)
		}

		for _, v := range views {
			if err := cw.Write(csvRecord(v, summaries[v.ArticleID])); err != nil {
				return fail("write", err)
			}
		}

		cw.Flush()
		if err := cw.Error(); err != nil {
			return fail("flush", err)
		}
		w.Flush()

		exported += len(views)
		s.metrics.RowsExported(len(views))

		if len(views) < CSVPageSize {
			break
		}
	}

	s.log.Debug("CSV export complete", logger.Int("rows", exported))
	return nil
}

func csvRecord(v models.PageView, sum models.ArticleSummary) []string {
	return []string{
		v.Timestamp.UTC().Format(csvTimestampLayout),
		sum.Title,
		sum.BrandName,
		deref(v.Country),
		deref(v.City),
		deref(v.Browser),
		deref(v.OS),
		deref(v.Device),
		deref(v.Referrer),
	}
}

func articleIDs(views []models.PageView) []string {
	seen := make(map[string]struct{}, len(views))
	ids := make([]string, 0, len(views))
	for _, v := range views {
		if _, ok := seen[v.ArticleID]; ok {
			continue
		}
		seen[v.ArticleID] = struct{}{}
		ids = append(ids, v.ArticleID)
	}
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
