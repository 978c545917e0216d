package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"newsdesk/api/models"
)

// ErrArticleNotFound is returned when no article matches a lookup.
var ErrArticleNotFound = errors.New("article not found")

// ContentStore reads brands and articles from PostgreSQL. Writes belong to
// the CMS and are not exposed here.
type ContentStore struct {
	db *sql.DB
}

func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

// GetArticleBySlug returns the article with the given slug in any status.
func (s *ContentStore) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	a := &models.Article{}
	var publishedAt sql.NullTime

	query := `
		SELECT id, brand_id, slug, title, content, status, published_at
		FROM articles
		WHERE slug = $1;
	`
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&a.ID,
		&a.BrandID,
		&a.Slug,
		&a.Title,
		&a.Content,
		&a.Status,
		&publishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}

	if publishedAt.Valid {
		a.PublishedAt = &publishedAt.Time
	}
	return a, nil
}

// ArticleIDsByBrand lists the IDs of every article owned by the brand.
// The result is non-nil even when the brand has no articles.
func (s *ContentStore) ArticleIDsByBrand(ctx context.Context, brandID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM articles WHERE brand_id = $1;`, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles for brand: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan article id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article ids: %w", err)
	}
	return ids, nil
}

// CountPublishedArticles counts published articles, optionally scoped to a
// brand and/or a single article.
func (s *ContentStore) CountPublishedArticles(ctx context.Context, brandID, articleID string) (int64, error) {
	conds := []string{"status = $1"}
	args := []any{models.ArticleStatusPublished}

	if brandID != "" {
		args = append(args, brandID)
		conds = append(conds, "brand_id = $"+strconv.Itoa(len(args)))
	}
	if articleID != "" {
		args = append(args, articleID)
		conds = append(conds, "id = $"+strconv.Itoa(len(args)))
	}

	query := "SELECT COUNT(*) FROM articles WHERE " + strings.Join(conds, " AND ") + ";"

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count published articles: %w", err)
	}
	return total, nil
}

// CountActiveBrands counts active brands, optionally only the given one.
func (s *ContentStore) CountActiveBrands(ctx context.Context, brandID string) (int64, error) {
	query := `SELECT COUNT(*) FROM brands WHERE is_active = TRUE;`
	args := []any{}
	if brandID != "" {
		query = `SELECT COUNT(*) FROM brands WHERE is_active = TRUE AND id = $1;`
		args = append(args, brandID)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count active brands: %w", err)
	}
	return total, nil
}

// ArticleSummaries joins article titles with brand names for the given IDs.
// IDs with no matching article are absent from the result.
func (s *ContentStore) ArticleSummaries(ctx context.Context, ids []string) (map[string]models.ArticleSummary, error) {
	summaries := make(map[string]models.ArticleSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	query := `
		SELECT a.id, a.title, b.name
		FROM articles a
		JOIN brands b ON b.id = a.brand_id
		WHERE a.id = ANY($1::uuid[]);
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query article summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sum models.ArticleSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.BrandName); err != nil {
			return nil, fmt.Errorf("failed to scan article summary: %w", err)
		}
		summaries[sum.ID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article summaries: %w", err)
	}
	return summaries, nil
}
