package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsdesk/api/enrichment"
	"newsdesk/api/logger"
	"newsdesk/api/metrics"
	"newsdesk/api/models"
	"newsdesk/api/store"
)

// unknownClient replaces an address that could not be anonymized.
const unknownClient = "unknown"

// ArticleLookup resolves the article behind a public slug.
type ArticleLookup interface {
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
}

// PageViewWriter appends page view facts.
type PageViewWriter interface {
	InsertPageViews(ctx context.Context, views []models.PageView) error
}

// GeoLookup resolves coarse client geography.
type GeoLookup interface {
	Lookup(rawIP string) enrichment.Location
}

// viewJob is everything captured from the request before the handler
// returns. Workers never touch the gin.Context.
type viewJob struct {
	slug      string
	path      string
	clientIP  string
	userAgent string
	referrer  string
}

// PageViewRecorder persists page view facts off the request path. Jobs go to
// a bounded queue drained by a worker pool; when the queue is full the job
// runs on its own goroutine instead of being dropped.
type PageViewRecorder struct {
	articles ArticleLookup
	writer   PageViewWriter
	geo      GeoLookup
	log      logger.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
	workers  int
	now      func() time.Time

	jobs    chan viewJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// RecorderConfig sizes the worker pool.
type RecorderConfig struct {
	QueueSize  int
	Workers    int
	JobTimeout time.Duration
}

func NewPageViewRecorder(
	articles ArticleLookup,
	writer PageViewWriter,
	geo GeoLookup,
	log logger.Logger,
	m *metrics.Metrics,
	cfg RecorderConfig,
) *PageViewRecorder {
	return &PageViewRecorder{
		articles: articles,
		writer:   writer,
		geo:      geo,
		log:      log,
		metrics:  m,
		timeout:  cfg.JobTimeout,
		workers:  cfg.Workers,
		now:      time.Now,
		jobs:     make(chan viewJob, cfg.QueueSize),
	}
}

// Start launches the workers.
func (r *PageViewRecorder) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
}

// Stop stops accepting jobs and waits until every queued or detached job
// has finished.
func (r *PageViewRecorder) Stop() {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.jobs)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// TrackPageView records a view once the wrapped handler has produced a
// successful response for a route with a :slug parameter. Recording never
// changes the response.
func (r *PageViewRecorder) TrackPageView() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		slug := c.Param("slug")
		if slug == "" {
			r.metrics.Skipped(metrics.SkipNoSlug)
			return
		}

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			r.metrics.Skipped(metrics.SkipNotSucceeded)
			return
		}

		r.enqueue(viewJob{
			slug:      slug,
			path:      c.Request.URL.Path,
			clientIP:  c.ClientIP(),
			userAgent: c.Request.UserAgent(),
			referrer:  c.Request.Referer(),
		})
	}
}

func (r *PageViewRecorder) enqueue(job viewJob) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.log.Warn("Page view recorder stopped, discarding view",
			logger.String("slug", job.slug),
			logger.String("path", job.path),
		)
		r.metrics.Failed("shutdown")
		return
	}

	select {
	case r.jobs <- job:
		r.metrics.QueueDepth(len(r.jobs))
	default:
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.record(job)
		}()
	}
}

func (r *PageViewRecorder) work() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.metrics.QueueDepth(len(r.jobs))
		r.record(job)
	}
}

// record runs one job. Every failure is logged with slug and path only and
// never propagates.
func (r *PageViewRecorder) record(job viewJob) {
	fields := []logger.Field{
		logger.String("slug", job.slug),
		logger.String("path", job.path),
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Page view tracking panicked", fields...)
			r.metrics.Failed("panic")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	article, err := r.articles.GetArticleBySlug(ctx, job.slug)
	if errors.Is(err, store.ErrArticleNotFound) {
		r.metrics.Skipped(metrics.SkipNotFound)
		return
	}
	if err != nil {
		r.log.Error("Failed to look up article for page view", append(fields, logger.Error(err))...)
		r.metrics.Failed("lookup")
		return
	}
	if !article.IsPublished() {
		r.metrics.Skipped(metrics.SkipUnpublished)
		return
	}

	view := models.PageView{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		IPAddress: unknownClient,
	}
	if job.referrer != "" {
		view.Referrer = &job.referrer
	}

	r.isolate("anonymize", fields, func() {
		if digest := enrichment.AnonymizeIP(job.clientIP); digest != nil {
			view.IPAddress = *digest
		}
	})
	r.isolate("geo", fields, func() {
		loc := r.geo.Lookup(job.clientIP)
		view.Country, view.City = loc.Country, loc.City
	})
	r.isolate("user_agent", fields, func() {
		client := enrichment.ClassifyUserAgent(job.userAgent)
		view.Browser, view.OS, view.Device = client.Browser, client.OS, client.Device
	})

	view.Timestamp = r.now().UTC()
	if err := r.writer.InsertPageViews(ctx, []models.PageView{view}); err != nil {
		r.log.Error("Failed to record page view", append(fields, logger.Error(err))...)
		r.metrics.Failed("persist")
		return
	}
	r.metrics.Recorded()
}

// isolate runs one enrichment step so that a panic in it leaves the other
// steps and the fact itself unaffected.
func (r *PageViewRecorder) isolate(stage string, fields []logger.Field, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("Page view enrichment failed", append(fields, logger.String("stage", stage))...)
			r.metrics.Failed(stage)
		}
	}()
	fn()
}
