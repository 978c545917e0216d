package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsdesk/api/logger"
	"newsdesk/api/models"
	"newsdesk/api/store"
)

// ArticleLookup resolves articles by slug.
type ArticleLookup interface {
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
}

type ArticleHandlers struct {
	Articles ArticleLookup
	log      logger.Logger
}

func NewArticleHandlers(articles ArticleLookup, log logger.Logger) *ArticleHandlers {
	return &ArticleHandlers{Articles: articles, log: log}
}

// GetPublicArticle serves a published article. Drafts are indistinguishable
// from missing articles.
func (h *ArticleHandlers) GetPublicArticle(c *gin.Context) {
	slug := c.Param("slug")

	article, err := h.Articles.GetArticleBySlug(c.Request.Context(), slug)
	if errors.Is(err, store.ErrArticleNotFound) || (err == nil && !article.IsPublished()) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		h.log.Error("Error loading article", logger.String("slug", slug), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load article"})
		return
	}

	c.JSON(http.StatusOK, article)
}
