// Package wordcloud renders a word-cloud image for a text corpus through
// a QuickChart-compatible chart service.
package wordcloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/DanYC1503/spyglass/pkg/clients"
)

// maxCorpusChars keeps the rendered URL within sane limits; the cloud
// only needs enough text for word frequencies, not the full corpus.
const maxCorpusChars = 1500

// Client renders word clouds. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL      string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: 10 * time.Second},
		httpExecutor: clients.NewHTTPExecutor(clients.DefaultHTTPExecutorConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render verifies the chart service will serve a cloud for the corpus and
// returns the image URL.
func (c *Client) Render(ctx context.Context, corpus string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("wordcloud service not configured")
	}
	corpus = strings.TrimSpace(corpus)
	if corpus == "" {
		return "", fmt.Errorf("empty corpus")
	}
	if len(corpus) > maxCorpusChars {
		corpus = corpus[:maxCorpusChars]
	}

	imageURL := fmt.Sprintf("%s/wordcloud?text=%s", c.baseURL, url.QueryEscape(corpus))

	resp, err := clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("render wordcloud: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("wordcloud service returned status: %d", resp.StatusCode)
	}
	return imageURL, nil
}
