package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"newsdesk/api/logger"
	"newsdesk/api/models"
	"newsdesk/api/store"
)

type stubArticles struct {
	articles map[string]*models.Article
	err      error
}

func (s *stubArticles) GetArticleBySlug(_ context.Context, slug string) (*models.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	if a, ok := s.articles[slug]; ok {
		return a, nil
	}
	return nil, store.ErrArticleNotFound
}

func newArticleRouter(articles *stubArticles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewArticleHandlers(articles, logger.NewNop())
	r := gin.New()
	r.GET("/api/public/articles/:slug", h.GetPublicArticle)
	return r
}

func TestGetPublicArticle(t *testing.T) {
	articles := &stubArticles{articles: map[string]*models.Article{
		"moon-landing": {ID: "a1", BrandID: "b1", Slug: "moon-landing", Title: "Cats Faked the Moon Landing", Status: models.ArticleStatusPublished},
		"goats":        {ID: "a4", BrandID: "b2", Slug: "goats", Title: "Goats Run for Mayor", Status: models.ArticleStatusDraft},
	}}
	r := newArticleRouter(articles)

	w := doGet(r, "/api/public/articles/moon-landing")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Cats Faked the Moon Landing"`)

	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/public/articles/goats").Code)
	assert.Equal(t, http.StatusNotFound, doGet(r, "/api/public/articles/nope").Code)
}

func TestGetPublicArticle_StoreError(t *testing.T) {
	r := newArticleRouter(&stubArticles{err: errors.New("postgres down")})

	w := doGet(r, "/api/public/articles/moon-landing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
