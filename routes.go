package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdesk/api/config"
	"newsdesk/api/handlers"
	"newsdesk/api/logger"
	"newsdesk/api/middleware"
)

type routes struct {
	auth      *handlers.AuthHandlers
	articles  *handlers.ArticleHandlers
	analytics *handlers.AnalyticsHandlers
	recorder  *middleware.PageViewRecorder
}

func newRouter(cfg *config.Config, log logger.Logger, h routes) (*gin.Engine, error) {
	r := gin.New()
	// Without an explicit list gin keeps trusting X-Forwarded-For from any
	// peer, which matches deployments behind a single load balancer.
	if len(cfg.Server.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
			return nil, err
		}
	}

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware([]string{cfg.Server.FrontendOrigin}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/signup", h.auth.Signup)
		api.POST("/login", h.auth.Login)
		api.POST("/logout", h.auth.Logout)

		public := api.Group("/public")
		public.GET("/articles/:slug", h.recorder.TrackPageView(), h.articles.GetPublicArticle)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(cfg.Auth, log))
		{
			protected.GET("/profile", h.auth.Profile)

			stats := protected.Group("/analytics")
			{
				stats.GET("/stats", h.analytics.GetGlobalStats)
				stats.GET("/views-over-time", h.analytics.GetViewsOverTime)
				stats.GET("/devices", h.analytics.GetDeviceBreakdown)
				stats.GET("/geography", h.analytics.GetGeographicDistribution)
				stats.GET("/top-articles", h.analytics.GetTopArticles)
				stats.GET("/export", h.analytics.ExportCSV)
			}
		}
	}

	return r, nil
}
