package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"newsdesk/api/logger"
)

// observedLogger adapts a zap observer core to logger.Logger.
type observedLogger struct{ *zap.Logger }

func (l observedLogger) Debug(msg string, f ...logger.Field) { l.Logger.Debug(msg, f...) }
func (l observedLogger) Info(msg string, f ...logger.Field)  { l.Logger.Info(msg, f...) }
func (l observedLogger) Warn(msg string, f ...logger.Field)  { l.Logger.Warn(msg, f...) }
func (l observedLogger) Error(msg string, f ...logger.Field) { l.Logger.Error(msg, f...) }
func (l observedLogger) Fatal(msg string, f ...logger.Field) { l.Logger.Fatal(msg, f...) }
func (l observedLogger) With(f ...logger.Field) logger.Logger {
	return observedLogger{l.Logger.With(f...)}
}
func (l observedLogger) Sync() error { return nil }

func TestRequestLogger_RedactsClientAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(observedLogger{zap.New(core)}))
	r.GET("/api/public/articles/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/public/articles/moon-landing", nil)
	req.RemoteAddr = "198.51.100.23:40000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "198.51.x.x", fields["client"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "198.51.100.23")
		}
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logger.NewNop()))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
