package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/DanYC1503/spyglass/pkg/models"
)

// ErrAdapterNotConfigured is returned when an adapter's scraper endpoint
// is unset. The collector treats it like any other source failure.
var ErrAdapterNotConfigured = errors.New("adapter endpoint not configured")

// TikTokAdapter talks to a scraper sidecar that resolves videos for a
// query and returns their comments. The sidecar owns browser automation;
// this adapter only speaks its JSON API.
type TikTokAdapter struct {
	apiClient
	baseURL string
}

func NewTikTokAdapter(baseURL string, opts ...Option) *TikTokAdapter {
	a := &TikTokAdapter{
		apiClient: newAPIClient(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(&a.apiClient)
	}
	return a
}

func (a *TikTokAdapter) Platform() models.Platform {
	return models.PlatformTikTok
}

type tiktokComment struct {
	VideoTitle string `json:"video_title"`
	Text       string `json:"text"`
}

func (a *TikTokAdapter) Fetch(ctx context.Context, query string, limit int) ([]RawItem, error) {
	if limit <= 0 {
		return []RawItem{}, nil
	}
	if a.baseURL == "" {
		return nil, fmt.Errorf("tiktok: %w", ErrAdapterNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/comments?query=%s&videos=%d",
		a.baseURL, url.QueryEscape(query), limit)

	var comments []tiktokComment
	if err := a.getJSON(ctx, models.PlatformTikTok, endpoint, nil, &comments); err != nil {
		return nil, fmt.Errorf("tiktok comments: %w", err)
	}

	items := make([]RawItem, 0, len(comments))
	for _, c := range comments {
		// The sidecar exposes no per-comment timestamp; the collector
		// falls back to the collection time.
		items = append(items, RawItem{
			Title: c.VideoTitle,
			Text:  c.Text,
		})
	}
	return items, nil
}
