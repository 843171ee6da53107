// Package sources holds the platform adapters that fetch raw opinion
// items. Each adapter owns its upstream protocol; the collector only sees
// RawItems or an error. Zero results and failure are distinct outcomes.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/DanYC1503/spyglass/pkg/models"
)

// RawItem is one unprocessed item returned by an adapter. PostedAt may be
// zero when the platform exposes no timestamp; the collector substitutes
// the collection time.
type RawItem struct {
	Title    string
	Text     string
	PostedAt time.Time
}

// Adapter fetches raw items for a query. A limit <= 0 yields an empty
// result, not an error.
type Adapter interface {
	Platform() models.Platform
	Fetch(ctx context.Context, query string, limit int) ([]RawItem, error)
}

// APIError is returned when an upstream platform answers with a non-2xx
// status.
type APIError struct {
	Platform   models.Platform
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status: %d", e.Platform, e.StatusCode)
}
