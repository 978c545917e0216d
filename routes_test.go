package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/api/analytics"
	"newsdesk/api/config"
	"newsdesk/api/enrichment"
	"newsdesk/api/handlers"
	"newsdesk/api/logger"
	"newsdesk/api/middleware"
	"newsdesk/api/models"
	"newsdesk/api/store"
)

type noArticles struct{}

func (noArticles) GetArticleBySlug(context.Context, string) (*models.Article, error) {
	return nil, store.ErrArticleNotFound
}

type noViews struct{}

func (noViews) InsertPageViews(context.Context, []models.PageView) error { return nil }

func (noViews) CountPageViews(context.Context, models.ViewQuery) (uint64, error) { return 0, nil }

func (noViews) ListPageViews(context.Context, models.ViewQuery) ([]models.PageView, error) {
	return nil, nil
}

type noContent struct{}

func (noContent) ArticleIDsByBrand(context.Context, string) ([]string, error) { return []string{}, nil }

func (noContent) CountPublishedArticles(context.Context, string, string) (int64, error) { return 0, nil }

func (noContent) CountActiveBrands(context.Context, string) (int64, error) { return 0, nil }

func (noContent) ArticleSummaries(context.Context, []string) (map[string]models.ArticleSummary, error) {
	return map[string]models.ArticleSummary{}, nil
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	geo, err := enrichment.NewGeoResolver("", log)
	require.NoError(t, err)

	recorder := middleware.NewPageViewRecorder(noArticles{}, noViews{}, geo, log, nil, middleware.RecorderConfig{Workers: 1})
	recorder.Start()
	t.Cleanup(recorder.Stop)

	r, err := newRouter(cfg, log, routes{
		auth:      handlers.NewAuthHandlers(nil, cfg.Auth.JWTSecret, false, log),
		articles:  handlers.NewArticleHandlers(noArticles{}, log),
		analytics: handlers.NewAnalyticsHandlers(analytics.NewService(noViews{}, noContent{}, log, nil), log),
		recorder:  recorder,
	})
	require.NoError(t, err)
	return r
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{FrontendOrigin: "http://localhost:3000"},
		Auth:   config.AuthConfig{JWTSecret: "s3cret", DefaultKey: "dashboard-key"},
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_AnalyticsRequiresAuth(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/stats", nil)
	req.Header.Set("X-API-KEY", "dashboard-key")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalViews":0,"totalArticles":0,"totalBrands":0}`, w.Body.String())
}

func TestRouter_PublicArticleAndProbes(t *testing.T) {
	r := newTestRouter(t, testConfig())

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/api/public/articles/nope", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/analytics/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_InvalidTrustedProxies(t *testing.T) {
	cfg := testConfig()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}

	_, err := newRouter(cfg, logger.NewNop(), routes{})
	assert.Error(t, err)
}
