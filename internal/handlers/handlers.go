// Package handlers exposes the collection and analytics operations over
// REST. Collaborators are injected through the constructor; nothing here
// holds process-wide state.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DanYC1503/spyglass/internal/analytics"
	"github.com/DanYC1503/spyglass/internal/collector"
	"github.com/DanYC1503/spyglass/pkg/api/spyglass"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/middleware"
	"github.com/DanYC1503/spyglass/pkg/models"
)

const defaultScrapeLimit = 5

// Collector is the collection surface consumed by the handlers.
type Collector interface {
	CollectAll(ctx context.Context, query string, limit int, platforms []models.Platform) ([]models.Comment, map[models.Platform]error, error)
	GetOrCollect(ctx context.Context, query string, platform models.Platform, limit int) ([]models.Comment, error)
}

// Analyzer is the analytics surface consumed by the handlers.
type Analyzer interface {
	Analyze(ctx context.Context, subject string) (models.Report, error)
	ListBySubject(ctx context.Context, subject string) ([]models.Comment, error)
}

// InfluencerStore lists the known influencers.
type InfluencerStore interface {
	ListInfluencers(ctx context.Context) ([]models.Influencer, error)
}

// Handlers wires the HTTP routes to the domain services.
type Handlers struct {
	collector Collector
	analyzer  Analyzer
	store     InfluencerStore
	logger    logging.Logger
}

func New(c Collector, a Analyzer, s InfluencerStore, logger logging.Logger) *Handlers {
	return &Handlers{collector: c, analyzer: a, store: s, logger: logger}
}

// RegisterRoutes attaches the public API under /api.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/scrape/all", h.ScrapeAll)
	api.POST("/scrape/:source", h.ScrapeSource)
	api.GET("/comments/:influencer", h.GetComments)
	api.GET("/analytics/:influencer", h.GetAnalytics)
	api.GET("/influencers", h.ListInfluencers)
}

// ScrapeAll collects from every configured source concurrently and
// returns partial results with the set of failed sources.
func (h *Handlers) ScrapeAll(c *gin.Context) {
	var req spyglass.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "A search query (influencer or keyword) is required"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultScrapeLimit
	}

	comments, failures, err := h.collector.CollectAll(c.Request.Context(), req.Query, req.Limit, nil)
	if err != nil {
		if errors.Is(err, collector.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "A search query (influencer or keyword) is required"})
			return
		}
		middleware.GetContextLogger(c, h.logger).WithError(err).Error("Collection failed")
		c.JSON(http.StatusInternalServerError, spyglass.ErrorResponse{Error: "Failed to collect comments"})
		return
	}

	c.JSON(http.StatusOK, spyglass.ScrapeResponse{
		Influencer:    collector.NormalizeSubject(req.Query),
		Comments:      comments,
		FailedSources: failureMessages(failures),
	})
}

// ScrapeSource is the cache-first single-source path: stored comments for
// the platform are returned without scraping again.
func (h *Handlers) ScrapeSource(c *gin.Context) {
	platform, ok := models.ParsePlatform(c.Param("source"))
	if !ok {
		c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "Unknown source: " + c.Param("source")})
		return
	}

	var req spyglass.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "A search query (influencer or keyword) is required"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultScrapeLimit
	}

	comments, err := h.collector.GetOrCollect(c.Request.Context(), req.Query, platform, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, collector.ErrEmptyQuery):
			c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "A search query (influencer or keyword) is required"})
		case errors.Is(err, collector.ErrUnknownSource):
			c.JSON(http.StatusBadRequest, spyglass.ErrorResponse{Error: "Unknown source: " + c.Param("source")})
		default:
			middleware.GetContextLogger(c, h.logger).WithError(err).Error("Single-source collection failed")
			c.JSON(http.StatusBadGateway, spyglass.ErrorResponse{Error: "Failed to collect from " + string(platform)})
		}
		return
	}

	c.JSON(http.StatusOK, spyglass.ScrapeResponse{
		Influencer: collector.NormalizeSubject(req.Query),
		Comments:   comments,
	})
}

// GetComments returns the influencer's comments, most recent first.
func (h *Handlers) GetComments(c *gin.Context) {
	subject := collector.NormalizeSubject(c.Param("influencer"))

	comments, err := h.analyzer.ListBySubject(c.Request.Context(), subject)
	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			c.JSON(http.StatusNotFound, spyglass.ErrorResponse{Error: "Influencer not found: " + subject})
			return
		}
		middleware.GetContextLogger(c, h.logger).WithError(err).Error("Failed to list comments")
		c.JSON(http.StatusInternalServerError, spyglass.ErrorResponse{Error: "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, spyglass.CommentsResponse{Influencer: subject, Comments: comments})
}

// GetAnalytics returns the reputation report. The report is best-effort:
// summarizer loss degrades to the fallback karma, never to an error.
func (h *Handlers) GetAnalytics(c *gin.Context) {
	subject := collector.NormalizeSubject(c.Param("influencer"))

	report, err := h.analyzer.Analyze(c.Request.Context(), subject)
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrNotFound):
			c.JSON(http.StatusNotFound, spyglass.ErrorResponse{Error: "Influencer not found: " + subject})
		case errors.Is(err, analytics.ErrNoData):
			c.JSON(http.StatusNotFound, spyglass.ErrorResponse{Error: "No comments collected for: " + subject})
		default:
			middleware.GetContextLogger(c, h.logger).WithError(err).Error("Failed to build report")
			c.JSON(http.StatusInternalServerError, spyglass.ErrorResponse{Error: "Failed to build analytics report"})
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListInfluencers returns every influencer that has been collected.
func (h *Handlers) ListInfluencers(c *gin.Context) {
	influencers, err := h.store.ListInfluencers(c.Request.Context())
	if err != nil {
		middleware.GetContextLogger(c, h.logger).WithError(err).Error("Failed to list influencers")
		c.JSON(http.StatusInternalServerError, spyglass.ErrorResponse{Error: "Failed to fetch influencers"})
		return
	}
	c.JSON(http.StatusOK, spyglass.InfluencersResponse{Influencers: influencers})
}

func failureMessages(failures map[models.Platform]error) map[string]string {
	if len(failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(failures))
	for platform, err := range failures {
		out[string(platform)] = err.Error()
	}
	return out
}
