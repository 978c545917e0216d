package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	"newsdesk/api/logger"
	"newsdesk/api/models"
)

var errStorage = errors.New("storage unavailable")

// memViews is an in-memory fact table honoring ViewQuery semantics.
type memViews struct {
	facts      []models.PageView
	countErr   error
	listErr    error
	failOnList int // 1-based list call that fails with listErr; 0 fails every call
	listCalls  []models.ViewQuery
	countCalls int
}

func (m *memViews) CountPageViews(_ context.Context, q models.ViewQuery) (uint64, error) {
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	return uint64(len(m.match(q))), nil
}

func (m *memViews) ListPageViews(_ context.Context, q models.ViewQuery) ([]models.PageView, error) {
	m.listCalls = append(m.listCalls, q)
	if m.listErr != nil && (m.failOnList == 0 || m.failOnList == len(m.listCalls)) {
		return nil, m.listErr
	}

	matched := m.match(q)
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Newest {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *memViews) match(q models.ViewQuery) []models.PageView {
	if q.MatchesNothing() {
		return nil
	}
	allowed := make(map[string]bool, len(q.ArticleIDs))
	for _, id := range q.ArticleIDs {
		allowed[id] = true
	}

	var out []models.PageView
	for _, f := range m.facts {
		if q.Start != nil && f.Timestamp.Before(*q.Start) {
			continue
		}
		if q.End != nil && f.Timestamp.After(*q.End) {
			continue
		}
		if q.ArticleIDs != nil && !allowed[f.ArticleID] {
			continue
		}
		out = append(out, f)
	}
	return out
}

type memArticle struct {
	title   string
	brandID string
	status  string
}

type memBrand struct {
	name   string
	active bool
}

type memContent struct {
	articles map[string]memArticle
	brands   map[string]memBrand
	err      error
	// brandsErr fails only CountActiveBrands.
	brandsErr      error
	summaryCalls   int
	brandIDLookups int
}

func newMemContent() *memContent {
	return &memContent{
		articles: map[string]memArticle{
			"a1": {title: "Cats Faked the Moon Landing", brandID: "b1", status: models.ArticleStatusPublished},
			"a2": {title: "Dogs Deny Everything", brandID: "b1", status: models.ArticleStatusPublished},
			"a3": {title: "Pigeons Unionize", brandID: "b2", status: models.ArticleStatusPublished},
			"a4": {title: "Draft: Goats Run for Mayor", brandID: "b2", status: models.ArticleStatusDraft},
		},
		brands: map[string]memBrand{
			"b1": {name: "The Daily Whisker", active: true},
			"b2": {name: "Bark Gazette", active: true},
			"b3": {name: "Defunct Times", active: false},
		},
	}
}

func (m *memContent) ArticleIDsByBrand(_ context.Context, brandID string) ([]string, error) {
	m.brandIDLookups++
	if m.err != nil {
		return nil, m.err
	}
	ids := []string{}
	for id, a := range m.articles {
		if a.brandID == brandID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memContent) CountPublishedArticles(_ context.Context, brandID, articleID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for id, a := range m.articles {
		if a.status != models.ArticleStatusPublished {
			continue
		}
		if brandID != "" && a.brandID != brandID {
			continue
		}
		if articleID != "" && id != articleID {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memContent) CountActiveBrands(_ context.Context, brandID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.brandsErr != nil {
		return 0, m.brandsErr
	}
	var n int64
	for id, b := range m.brands {
		if b.active && (brandID == "" || id == brandID) {
			n++
		}
	}
	return n, nil
}

func (m *memContent) ArticleSummaries(_ context.Context, ids []string) (map[string]models.ArticleSummary, error) {
	m.summaryCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]models.ArticleSummary, len(ids))
	for _, id := range ids {
		a, ok := m.articles[id]
		if !ok {
			continue
		}
		out[id] = models.ArticleSummary{ID: id, Title: a.title, BrandName: m.brands[a.brandID].name}
	}
	return out, nil
}

func newTestService(views *memViews, content *memContent) *Service {
	return NewService(views, content, logger.NewNop(), nil)
}

func ts(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func str(s string) *string { return &s }

func fact(articleID, at string) models.PageView {
	return models.PageView{ID: articleID + "@" + at, ArticleID: articleID, Timestamp: ts(at)}
}

func withDevice(v models.PageView, device *string) models.PageView {
	v.Device = device
	return v
}

func withCountry(v models.PageView, country *string) models.PageView {
	v.Country = country
	return v
}

func timeStep(i int) time.Duration {
	return time.Duration(i) * time.Minute
}
