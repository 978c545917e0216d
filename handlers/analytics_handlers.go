package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsdesk/api/analytics"
	"newsdesk/api/logger"
	"newsdesk/api/models"
	"newsdesk/api/utils"
)

// AnalyticsReader is the analytics engine as seen by the dashboard API.
type AnalyticsReader interface {
	GetGlobalStats(ctx context.Context, f models.AnalyticsFilter) models.GlobalStats
	GetViewsOverTime(ctx context.Context, f models.AnalyticsFilter) []models.ViewsByDate
	GetDeviceBreakdown(ctx context.Context, f models.AnalyticsFilter) []models.DeviceStat
	GetGeographicDistribution(ctx context.Context, f models.AnalyticsFilter) []models.CountryStat
	GetTopArticles(ctx context.Context, f models.AnalyticsFilter) []models.TopArticle
	StreamAnalyticsCSV(ctx context.Context, w analytics.ResponseSink, f models.AnalyticsFilter) error
}

type AnalyticsHandlers struct {
	Analytics AnalyticsReader
	log       logger.Logger
}

func NewAnalyticsHandlers(a AnalyticsReader, log logger.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{Analytics: a, log: log}
}

func (h *AnalyticsHandlers) GetGlobalStats(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Analytics.GetGlobalStats(c.Request.Context(), f))
}

func (h *AnalyticsHandlers) GetViewsOverTime(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Analytics.GetViewsOverTime(c.Request.Context(), f))
}

func (h *AnalyticsHandlers) GetDeviceBreakdown(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Analytics.GetDeviceBreakdown(c.Request.Context(), f))
}

func (h *AnalyticsHandlers) GetGeographicDistribution(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Analytics.GetGeographicDistribution(c.Request.Context(), f))
}

func (h *AnalyticsHandlers) GetTopArticles(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Analytics.GetTopArticles(c.Request.Context(), f))
}

// ExportCSV streams the filtered facts as an attachment. A failure before the
// first byte becomes a 500; later failures end the download early.
func (h *AnalyticsHandlers) ExportCSV(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	err := h.Analytics.StreamAnalyticsCSV(c.Request.Context(), c.Writer, f)
	if err == nil {
		return
	}

	h.log.Error("Error exporting analytics CSV", logger.Error(err))
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export analytics"})
	}
}

// bindFilter reads the analytics query parameters. It answers 400 itself and
// reports false when any of them is malformed.
func bindFilter(c *gin.Context) (models.AnalyticsFilter, bool) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analytics filter", "details": err.Error()})
		return models.AnalyticsFilter{}, false
	}
	return f, true
}

func parseFilter(c *gin.Context) (models.AnalyticsFilter, error) {
	var f models.AnalyticsFilter
	var err error

	if f.StartDate, err = utils.ParseDateParam(c.Query("startDate"), false); err != nil {
		return f, err
	}
	if f.EndDate, err = utils.ParseDateParam(c.Query("endDate"), true); err != nil {
		return f, err
	}

	if f.BrandID, err = uuidParam(c, "brandId"); err != nil {
		return f, err
	}
	if f.ArticleID, err = uuidParam(c, "articleId"); err != nil {
		return f, err
	}

	if f.Limit, err = utils.ParseNonNegativeInt(c.Query("limit")); err != nil {
		return f, err
	}
	if f.Offset, err = utils.ParseNonNegativeInt(c.Query("offset")); err != nil {
		return f, err
	}
	return f, nil
}

func uuidParam(c *gin.Context, key string) (string, error) {
	raw := c.Query(key)
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: expected a UUID", key, raw)
	}
	return id.String(), nil
}
