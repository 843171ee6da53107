package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/DanYC1503/spyglass/pkg/models"
)

const defaultRedditBaseURL = "https://www.reddit.com"

// RedditAdapter queries Reddit's public search endpoint. No credentials
// are needed; Reddit only requires a descriptive User-Agent.
type RedditAdapter struct {
	apiClient
	baseURL   string
	userAgent string
}

func NewRedditAdapter(baseURL string, opts ...Option) *RedditAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultRedditBaseURL
	}
	a := &RedditAdapter{
		apiClient: newAPIClient(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "spyglass/1.0 (reputation analytics)",
	}
	for _, opt := range opts {
		opt(&a.apiClient)
	}
	return a
}

func (a *RedditAdapter) Platform() models.Platform {
	return models.PlatformReddit
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) Fetch(ctx context.Context, query string, limit int) ([]RawItem, error) {
	if limit <= 0 {
		return []RawItem{}, nil
	}

	endpoint := fmt.Sprintf("%s/search.json?q=%s&limit=%d&sort=new",
		a.baseURL, url.QueryEscape(query), limit)

	var listing redditListing
	if err := a.getJSON(ctx, models.PlatformReddit, endpoint, map[string]string{"User-Agent": a.userAgent}, &listing); err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}

	items := make([]RawItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		items = append(items, RawItem{
			Title:    child.Data.Title,
			Text:     child.Data.Selftext,
			PostedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
		})
	}
	return items, nil
}
