package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/DanYC1503/spyglass/pkg/models"
)

// FacebookAdapter talks to a scraper service that searches public posts
// and returns them with their comment threads. One RawItem is produced
// per comment, not per post.
type FacebookAdapter struct {
	apiClient
	baseURL string
}

func NewFacebookAdapter(baseURL string, opts ...Option) *FacebookAdapter {
	a := &FacebookAdapter{
		apiClient: newAPIClient(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(&a.apiClient)
	}
	return a
}

func (a *FacebookAdapter) Platform() models.Platform {
	return models.PlatformFacebook
}

type facebookPost struct {
	PostTitle string `json:"postTitle"`
	Date      string `json:"date"`
	Comments  []struct {
		Comment string `json:"comment"`
	} `json:"comments"`
}

func (a *FacebookAdapter) Fetch(ctx context.Context, query string, limit int) ([]RawItem, error) {
	if limit <= 0 {
		return []RawItem{}, nil
	}
	if a.baseURL == "" {
		return nil, fmt.Errorf("facebook: %w", ErrAdapterNotConfigured)
	}

	endpoint := fmt.Sprintf("%s/posts?query=%s&limit=%d",
		a.baseURL, url.QueryEscape(query), limit)

	var posts []facebookPost
	if err := a.getJSON(ctx, models.PlatformFacebook, endpoint, nil, &posts); err != nil {
		return nil, fmt.Errorf("facebook posts: %w", err)
	}

	var items []RawItem
	for _, post := range posts {
		postedAt, _ := time.Parse(time.RFC3339, post.Date)
		for _, c := range post.Comments {
			if strings.TrimSpace(c.Comment) == "" {
				continue
			}
			items = append(items, RawItem{
				Title:    post.PostTitle,
				Text:     c.Comment,
				PostedAt: postedAt,
			})
		}
	}
	return items, nil
}
