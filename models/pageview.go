package models

import "time"

// PageView is one immutable fact recorded for a served view of a published
// article. IPAddress always holds the anonymized digest, never a raw address.
type PageView struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"-"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
	Browser   *string   `json:"browser"`
	OS        *string   `json:"os"`
	Device    *string   `json:"device"`
	Referrer  *string   `json:"referrer"`
}

// AnalyticsFilter narrows the facts an aggregation considers. Nil or zero
// fields impose no constraint; present fields combine with AND.
type AnalyticsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	BrandID   string
	ArticleID string
	Limit     int
	Offset    int
}

type GlobalStats struct {
	TotalViews    uint64 `json:"totalViews"`
	TotalArticles int64  `json:"totalArticles"`
	TotalBrands   int64  `json:"totalBrands"`
}

type ViewsByDate struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

type DeviceStat struct {
	Device     string  `json:"device"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CountryStat struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type TopArticle struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Brand      string    `json:"brand"`
	Views      int       `json:"views"`
	LastViewed time.Time `json:"lastViewed"`
}

// ViewQuery is the storage-level selection of page view facts. A nil
// ArticleIDs slice is unconstrained; a non-nil empty slice matches nothing.
type ViewQuery struct {
	Start      *time.Time
	End        *time.Time
	ArticleIDs []string
	Newest     bool
	Offset     int
	Limit      int
}

// MatchesNothing reports whether the article scope excludes every fact.
func (q ViewQuery) MatchesNothing() bool {
	return q.ArticleIDs != nil && len(q.ArticleIDs) == 0
}
