package models

import "time"

// Article status values.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

type Article struct {
	ID          string     `json:"id"`
	BrandID     string     `json:"brandId"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// IsPublished reports whether the article may be served and tracked.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// ArticleSummary is the article/brand join used by analytics read models.
type ArticleSummary struct {
	ID        string
	Title     string
	BrandName string
}
