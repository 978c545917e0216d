package store

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/api/database"
	"newsdesk/api/models"
)

const pageViewColumns = `id, article_id, timestamp, ip_address, country, city, browser, os, device, referrer`

// PageViewStore reads and appends page view facts in ClickHouse. Facts are
// never updated or deleted.
type PageViewStore struct {
	DB *database.ClickHouseClient
}

func NewPageViewStore(chClient *database.ClickHouseClient) *PageViewStore {
	return &PageViewStore{
		DB: chClient,
	}
}

// InsertPageViews appends facts in a single batch.
func (s *PageViewStore) InsertPageViews(ctx context.Context, views []models.PageView) error {
	if len(views) == 0 {
		return nil
	}

	// Column order must match the page_views table schema.
	batch, err := s.DB.Conn.PrepareBatch(ctx, `INSERT INTO page_views (`+pageViewColumns+`)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, v := range views {
		err := batch.Append(
			v.ID,
			v.ArticleID,
			v.Timestamp,
			v.IPAddress,
			v.Country,
			v.City,
			v.Browser,
			v.OS,
			v.Device,
			v.Referrer,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append page view %s: %w", v.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// CountPageViews counts the facts selected by q. Ordering and paging are ignored.
func (s *PageViewStore) CountPageViews(ctx context.Context, q models.ViewQuery) (uint64, error) {
	if q.MatchesNothing() {
		return 0, nil
	}

	where, args := buildViewFilter(q)
	query := "SELECT count() FROM page_views" + where

	var total uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count page views: %w", err)
	}
	return total, nil
}

// ListPageViews returns the facts selected by q ordered by timestamp.
func (s *PageViewStore) ListPageViews(ctx context.Context, q models.ViewQuery) ([]models.PageView, error) {
	if q.MatchesNothing() {
		return nil, nil
	}

	query, args := buildListQuery(q)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query page views: %w", err)
	}
	defer rows.Close()

	var views []models.PageView
	for rows.Next() {
		var v models.PageView
		if err := rows.Scan(
			&v.ID,
			&v.ArticleID,
			&v.Timestamp,
			&v.IPAddress,
			&v.Country,
			&v.City,
			&v.Browser,
			&v.OS,
			&v.Device,
			&v.Referrer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page view: %w", err)
		}
		views = append(views, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during page view query: %w", err)
	}
	return views, nil
}

func buildListQuery(q models.ViewQuery) (string, []any) {
	where, args := buildViewFilter(q)

	direction := "ASC"
	if q.Newest {
		direction = "DESC"
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + pageViewColumns + " FROM page_views")
	sb.WriteString(where)
	// id breaks timestamp ties so offset paging is stable.
	fmt.Fprintf(&sb, " ORDER BY timestamp %s, id %s", direction, direction)

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, q.Offset)
		}
	}
	return sb.String(), args
}

// buildViewFilter translates q into an inclusive WHERE clause.
func buildViewFilter(q models.ViewQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if q.Start != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.Start.UTC())
	}
	if q.End != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, q.End.UTC())
	}
	if len(q.ArticleIDs) == 1 {
		conds = append(conds, "article_id = ?")
		args = append(args, q.ArticleIDs[0])
	} else if len(q.ArticleIDs) > 1 {
		conds = append(conds, "article_id IN (?)")
		args = append(args, q.ArticleIDs)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
