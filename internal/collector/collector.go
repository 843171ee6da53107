// Package collector implements the fan-out collection pipeline: one task
// per source adapter, bounded concurrency, per-source failure isolation,
// sentiment classification and persistence of every produced comment.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DanYC1503/spyglass/internal/metrics"
	"github.com/DanYC1503/spyglass/internal/sources"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/models"
)

// maxConcurrentFetches bounds the fan-out pool. Matches the number of
// source variants.
const maxConcurrentFetches = 3

// ErrEmptyQuery rejects collection requests with no usable query.
var ErrEmptyQuery = errors.New("query must not be empty")

// ErrUnknownSource rejects requests for a platform with no adapter.
var ErrUnknownSource = errors.New("unknown source platform")

// Store is the persistence surface the collector needs.
type Store interface {
	SaveInfluencer(ctx context.Context, name string) error
	SaveComment(ctx context.Context, c models.Comment) error
	CommentsByInfluencerAndPlatform(ctx context.Context, name string, platform models.Platform) ([]models.Comment, error)
}

// Classifier assigns sentiment to a comment text. Implementations never
// fail; degraded calls return neutral.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, float64)
}

// Collector orchestrates collection across the configured adapters.
type Collector struct {
	store      Store
	classifier Classifier
	adapters   map[models.Platform]sources.Adapter
	logger     logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	newID      func() string
}

func New(store Store, classifier Classifier, adapters []sources.Adapter, logger logging.Logger, m *metrics.Metrics) *Collector {
	byPlatform := make(map[models.Platform]sources.Adapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &Collector{
		store:      store,
		classifier: classifier,
		adapters:   byPlatform,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// NormalizeSubject canonicalizes a query into a subject name: trimmed,
// lowercased, leading '#'/'@' stripped.
func NormalizeSubject(query string) string {
	name := strings.TrimSpace(query)
	name = strings.TrimLeft(name, "#@")
	return strings.ToLower(strings.TrimSpace(name))
}

// CollectAll fans out one fetch task per requested platform, classifies
// and persists every produced comment, and merges the results. A failing
// source never aborts its siblings; its error lands in the returned
// failure map. If every source fails the comment list is empty and the
// failure map populated — not an error.
func (c *Collector) CollectAll(ctx context.Context, query string, limit int, platforms []models.Platform) ([]models.Comment, map[models.Platform]error, error) {
	subject := NormalizeSubject(query)
	if subject == "" {
		return nil, nil, ErrEmptyQuery
	}
	if len(platforms) == 0 {
		platforms = c.registeredPlatforms()
	}

	// The subject record must exist before any comment referencing it.
	if err := c.store.SaveInfluencer(ctx, subject); err != nil {
		return nil, nil, err
	}

	failures := make(map[models.Platform]error)
	results := make([][]models.Comment, len(platforms))
	errs := make([]error, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, platform := range platforms {
		adapter, ok := c.adapters[platform]
		if !ok {
			failures[platform] = fmt.Errorf("%w: %s", ErrUnknownSource, platform)
			continue
		}
		g.Go(func() error {
			comments, err := c.collectOne(gctx, adapter, subject, query, limit)
			results[i] = comments
			errs[i] = err
			// Failure isolation: source errors are reported, never
			// propagated through the group.
			return nil
		})
	}
	_ = g.Wait()

	merged := make([]models.Comment, 0)
	for i, platform := range platforms {
		merged = append(merged, results[i]...)
		if errs[i] != nil {
			failures[platform] = errs[i]
			if c.logger != nil {
				c.logger.WithError(errs[i]).WithField("platform", platform).Warn("Source collection failed")
			}
		}
	}
	return merged, failures, nil
}

// GetOrCollect is the cache-first read path for a single platform. Stored
// comments for (subject, platform) are returned as-is; only a miss
// triggers the platform's adapter.
func (c *Collector) GetOrCollect(ctx context.Context, query string, platform models.Platform, limit int) ([]models.Comment, error) {
	subject := NormalizeSubject(query)
	if subject == "" {
		return nil, ErrEmptyQuery
	}
	adapter, ok := c.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, platform)
	}

	cached, err := c.store.CommentsByInfluencerAndPlatform(ctx, subject, platform)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		c.countCache(platform, "hit")
		return cached, nil
	}
	c.countCache(platform, "miss")

	if err := c.store.SaveInfluencer(ctx, subject); err != nil {
		return nil, err
	}
	return c.collectOne(ctx, adapter, subject, query, limit)
}

// collectOne runs the fetch → normalize → classify → persist pipeline for
// one adapter. Comments persisted before an error stand; the error is
// returned alongside them.
func (c *Collector) collectOne(ctx context.Context, adapter sources.Adapter, subject, query string, limit int) ([]models.Comment, error) {
	platform := adapter.Platform()

	items, err := adapter.Fetch(ctx, query, limit)
	if err != nil {
		c.countFetch(platform, "error")
		return nil, fmt.Errorf("fetch %s: %w", platform, err)
	}
	c.countFetch(platform, "ok")

	collectedAt := c.now().UTC()
	comments := make([]models.Comment, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(strings.TrimSpace(item.Title) + " " + strings.TrimSpace(item.Text))
		if text == "" {
			continue
		}

		label, score := c.classifier.Classify(ctx, text)

		date := item.PostedAt
		if date.IsZero() {
			date = collectedAt
		}

		comment := models.Comment{
			ID:         c.newID(),
			Platform:   platform,
			Influencer: subject,
			Text:       text,
			Sentiment:  label,
			Score:      score,
			Date:       date.UTC().Format(time.RFC3339),
		}
		if err := c.store.SaveComment(ctx, comment); err != nil {
			return comments, fmt.Errorf("persist %s comment: %w", platform, err)
		}
		comments = append(comments, comment)
		c.countStored(platform)
	}
	return comments, nil
}

func (c *Collector) registeredPlatforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(c.adapters))
	for _, p := range models.AllPlatforms() {
		if _, ok := c.adapters[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}

func (c *Collector) countFetch(platform models.Platform, status string) {
	if c.metrics != nil && c.metrics.SourceFetches != nil {
		c.metrics.SourceFetches.WithLabelValues(string(platform), status).Inc()
	}
}

func (c *Collector) countStored(platform models.Platform) {
	if c.metrics != nil && c.metrics.CommentsStored != nil {
		c.metrics.CommentsStored.WithLabelValues(string(platform)).Inc()
	}
}

func (c *Collector) countCache(platform models.Platform, outcome string) {
	if c.metrics != nil && c.metrics.CacheLookups != nil {
		c.metrics.CacheLookups.WithLabelValues(string(platform), outcome).Inc()
	}
}
