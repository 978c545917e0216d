// Package analytics turns page view facts into dashboard read models and CSV
// exports. Every read model degrades to an empty result when storage fails,
// so a partially broken backend still renders a dashboard.
package analytics

import (
	"context"
	"sort"

	"newsdesk/api/logger"
	"newsdesk/api/metrics"
	"newsdesk/api/models"
)

const (
	// DefaultTopArticlesLimit applies when the filter has no limit.
	DefaultTopArticlesLimit = 10

	// UnknownCategory replaces a missing device or country.
	UnknownCategory = "unknown"

	dateLayout = "2006-01-02"
)

// ViewStore is the read side of the page view fact table.
type ViewStore interface {
	CountPageViews(ctx context.Context, q models.ViewQuery) (uint64, error)
	ListPageViews(ctx context.Context, q models.ViewQuery) ([]models.PageView, error)
}

// ContentStore resolves the article and brand side of analytics joins.
type ContentStore interface {
	ArticleIDsByBrand(ctx context.Context, brandID string) ([]string, error)
	CountPublishedArticles(ctx context.Context, brandID, articleID string) (int64, error)
	CountActiveBrands(ctx context.Context, brandID string) (int64, error)
	ArticleSummaries(ctx context.Context, ids []string) (map[string]models.ArticleSummary, error)
}

// Service computes analytics read models. It never writes facts.
type Service struct {
	views   ViewStore
	content ContentStore
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(views ViewStore, content ContentStore, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		views:   views,
		content: content,
		log:     log,
		metrics: m,
	}
}

// GetGlobalStats counts matching views, published articles and active
// brands. Any storage failure zeroes the whole result.
func (s *Service) GetGlobalStats(ctx context.Context, f models.AnalyticsFilter) models.GlobalStats {
	const op = "global_stats"

	q, err := s.scope(ctx, f)
	if err != nil {
		s.degraded(op, err)
		return models.GlobalStats{}
	}

	totalViews, err := s.views.CountPageViews(ctx, q)
	if err != nil {
		s.degraded(op, err)
		return models.GlobalStats{}
	}

	totalArticles, err := s.content.CountPublishedArticles(ctx, f.BrandID, f.ArticleID)
	if err != nil {
		s.degraded(op, err)
		return models.GlobalStats{}
	}

	totalBrands, err := s.content.CountActiveBrands(ctx, f.BrandID)
	if err != nil {
		s.degraded(op, err)
		return models.GlobalStats{}
	}

	return models.GlobalStats{
		TotalViews:    totalViews,
		TotalArticles: totalArticles,
		TotalBrands:   totalBrands,
	}
}

// GetViewsOverTime buckets views by UTC calendar date. Days without views
// are omitted; buckets come out in ascending date order.
func (s *Service) GetViewsOverTime(ctx context.Context, f models.AnalyticsFilter) []models.ViewsByDate {
	const op = "views_over_time"

	views, err := s.list(ctx, f, false)
	if err != nil {
		s.degraded(op, err)
		return []models.ViewsByDate{}
	}

	series := []models.ViewsByDate{}
	index := make(map[string]int)
	for _, v := range views {
		date := v.Timestamp.UTC().Format(dateLayout)
		i, ok := index[date]
		if !ok {
			i = len(series)
			index[date] = i
			series = append(series, models.ViewsByDate{Date: date})
		}
		series[i].Views++
	}
	return series
}

// GetDeviceBreakdown counts views per device category with their share of
// the total, most common first. Equal counts keep first-seen order.
func (s *Service) GetDeviceBreakdown(ctx context.Context, f models.AnalyticsFilter) []models.DeviceStat {
	const op = "device_breakdown"

	views, err := s.list(ctx, f, false)
	if err != nil {
		s.degraded(op, err)
		return []models.DeviceStat{}
	}

	groups := countBy(views, func(v models.PageView) *string { return v.Device })

	total := len(views)
	stats := make([]models.DeviceStat, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, models.DeviceStat{
			Device:     g.key,
			Count:      g.count,
			Percentage: percentage(g.count, total),
		})
	}
	return stats
}

// GetGeographicDistribution counts views per country, most common first.
// Equal counts keep first-seen order.
func (s *Service) GetGeographicDistribution(ctx context.Context, f models.AnalyticsFilter) []models.CountryStat {
	const op = "geographic_distribution"

	views, err := s.list(ctx, f, false)
	if err != nil {
		s.degraded(op, err)
		return []models.CountryStat{}
	}

	groups := countBy(views, func(v models.PageView) *string { return v.Country })

	stats := make([]models.CountryStat, 0, len(groups))
	for _, g := range groups {
		stats = append(stats, models.CountryStat{Country: g.key, Count: g.count})
	}
	return stats
}

// GetTopArticles ranks articles by view count. LastViewed is the latest
// timestamp among each article's views. Offset skips ranked entries and
// Limit defaults to DefaultTopArticlesLimit.
func (s *Service) GetTopArticles(ctx context.Context, f models.AnalyticsFilter) []models.TopArticle {
	const op = "top_articles"

	views, err := s.list(ctx, f, true)
	if err != nil {
		s.degraded(op, err)
		return []models.TopArticle{}
	}

	ranked := []*models.TopArticle{}
	byID := make(map[string]*models.TopArticle)
	for _, v := range views {
		entry, ok := byID[v.ArticleID]
		if !ok {
			entry = &models.TopArticle{ID: v.ArticleID, LastViewed: v.Timestamp}
			byID[v.ArticleID] = entry
			ranked = append(ranked, entry)
		}
		entry.Views++
		if v.Timestamp.After(entry.LastViewed) {
			entry.LastViewed = v.Timestamp
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views > ranked[j].Views
	})

	ranked = page(ranked, f.Offset, topLimit(f.Limit))

	ids := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		ids = append(ids, entry.ID)
	}
	summaries, err := s.content.ArticleSummaries(ctx, ids)
	if err != nil {
		s.degraded(op, err)
		return []models.TopArticle{}
	}

	result := make([]models.TopArticle, 0, len(ranked))
	for _, entry := range ranked {
		sum := summaries[entry.ID]
		entry.Title = sum.Title
		entry.Brand = sum.BrandName
		result = append(result, *entry)
	}
	return result
}

// scope translates the filter into a fact query. A brand filter resolves to
// the brand's article IDs, intersected with the article filter when both
// are present.
func (s *Service) scope(ctx context.Context, f models.AnalyticsFilter) (models.ViewQuery, error) {
	q := models.ViewQuery{Start: f.StartDate, End: f.EndDate}

	switch {
	case f.BrandID != "":
		ids, err := s.content.ArticleIDsByBrand(ctx, f.BrandID)
		if err != nil {
			return models.ViewQuery{}, err
		}
		scoped := []string{}
		for _, id := range ids {
			if f.ArticleID == "" || id == f.ArticleID {
				scoped = append(scoped, id)
			}
		}
		q.ArticleIDs = scoped
	case f.ArticleID != "":
		q.ArticleIDs = []string{f.ArticleID}
	}
	return q, nil
}

func (s *Service) list(ctx context.Context, f models.AnalyticsFilter, newest bool) ([]models.PageView, error) {
	q, err := s.scope(ctx, f)
	if err != nil {
		return nil, err
	}
	q.Newest = newest
	return s.views.ListPageViews(ctx, q)
}

func (s *Service) degraded(operation string, err error) {
	s.log.Error("Analytics query failed, returning empty result",
		logger.String("operation", operation),
		logger.Error(err),
	)
	s.metrics.DegradedResult(operation)
}

type group struct {
	key   string
	count int
}

// countBy groups views by a nullable category, mapping nil to
// UnknownCategory, and sorts descending by count.
func countBy(views []models.PageView, key func(models.PageView) *string) []group {
	groups := []group{}
	index := make(map[string]int)
	for _, v := range views {
		k := UnknownCategory
		if p := key(v); p != nil {
			k = *p
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{key: k})
		}
		groups[i].count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})
	return groups
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

func topLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopArticlesLimit
	}
	return limit
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}
