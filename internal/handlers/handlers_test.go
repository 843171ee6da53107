package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanYC1503/spyglass/internal/analytics"
	"github.com/DanYC1503/spyglass/internal/collector"
	"github.com/DanYC1503/spyglass/internal/sentiment"
	"github.com/DanYC1503/spyglass/internal/sources"
	"github.com/DanYC1503/spyglass/internal/store"
	"github.com/DanYC1503/spyglass/pkg/api/spyglass"
	"github.com/DanYC1503/spyglass/pkg/logging"
	"github.com/DanYC1503/spyglass/pkg/models"
)

type stubAdapter struct {
	platform models.Platform
	items    []sources.RawItem
	err      error
	calls    int
}

func (s *stubAdapter) Platform() models.Platform { return s.platform }

func (s *stubAdapter) Fetch(_ context.Context, _ string, limit int) ([]sources.RawItem, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if limit <= 0 {
		return []sources.RawItem{}, nil
	}
	return s.items, nil
}

func setupAPI(t *testing.T, adapters ...sources.Adapter) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.NewLogger()
	st := store.New(store.NewMemoryKV())
	classifier := sentiment.New(nil, logger)
	coll := collector.New(st, classifier, adapters, logger, nil)
	analyzer := analytics.New(st, nil, nil, logger, nil)

	router := gin.New()
	New(coll, analyzer, st, logger).RegisterRoutes(router)
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestScrapeAll(t *testing.T) {
	reddit := &stubAdapter{platform: models.PlatformReddit, items: []sources.RawItem{{Text: "nice work"}}}
	tiktok := &stubAdapter{platform: models.PlatformTikTok, err: errors.New("blocked")}
	router, _ := setupAPI(t, reddit, tiktok)

	w := doJSON(t, router, http.MethodPost, "/api/scrape/all",
		spyglass.ScrapeRequest{Query: "@Alice", Limit: 3})
	require.Equal(t, http.StatusOK, w.Code)

	var resp spyglass.ScrapeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Influencer)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, models.PlatformReddit, resp.Comments[0].Platform)
	require.Contains(t, resp.FailedSources, "tiktok")
}

func TestScrapeAllMissingQuery(t *testing.T) {
	router, _ := setupAPI(t)
	w := doJSON(t, router, http.MethodPost, "/api/scrape/all", map[string]interface{}{"limit": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeSourceCacheHit(t *testing.T) {
	reddit := &stubAdapter{platform: models.PlatformReddit, items: []sources.RawItem{{Text: "hello"}}}
	router, _ := setupAPI(t, reddit)

	first := doJSON(t, router, http.MethodPost, "/api/scrape/reddit",
		spyglass.ScrapeRequest{Query: "alice", Limit: 3})
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, reddit.calls)

	second := doJSON(t, router, http.MethodPost, "/api/scrape/reddit",
		spyglass.ScrapeRequest{Query: "alice", Limit: 3})
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, reddit.calls, "cache hit must not scrape again")
}

func TestScrapeSourceUnknown(t *testing.T) {
	router, _ := setupAPI(t)
	w := doJSON(t, router, http.MethodPost, "/api/scrape/myspace",
		spyglass.ScrapeRequest{Query: "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScrapeSourceUpstreamFailure(t *testing.T) {
	reddit := &stubAdapter{platform: models.PlatformReddit, err: errors.New("rate limited")}
	router, _ := setupAPI(t, reddit)

	w := doJSON(t, router, http.MethodPost, "/api/scrape/reddit",
		spyglass.ScrapeRequest{Query: "alice"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetCommentsSortedDescending(t *testing.T) {
	router, st := setupAPI(t)
	ctx := context.Background()
	require.NoError(t, st.SaveInfluencer(ctx, "alice"))
	require.NoError(t, st.SaveComment(ctx, models.Comment{
		ID: "id-1", Platform: models.PlatformReddit, Influencer: "alice",
		Text: "older", Sentiment: models.SentimentNeutral, Date: "2025-05-01T10:00:00Z",
	}))
	require.NoError(t, st.SaveComment(ctx, models.Comment{
		ID: "id-2", Platform: models.PlatformReddit, Influencer: "alice",
		Text: "newer", Sentiment: models.SentimentNeutral, Date: "2025-05-02T10:00:00Z",
	}))

	w := doJSON(t, router, http.MethodGet, "/api/comments/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp spyglass.CommentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 2)
	assert.Equal(t, "id-2", resp.Comments[0].ID)
	assert.Equal(t, "id-1", resp.Comments[1].ID)
}

func TestGetCommentsUnknownInfluencer(t *testing.T) {
	router, _ := setupAPI(t)
	w := doJSON(t, router, http.MethodGet, "/api/comments/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalyticsFallbackReport(t *testing.T) {
	router, st := setupAPI(t)
	ctx := context.Background()
	require.NoError(t, st.SaveInfluencer(ctx, "alice"))
	require.NoError(t, st.SaveComment(ctx, models.Comment{
		ID: "id-1", Platform: models.PlatformReddit, Influencer: "alice",
		Text: "great job", Sentiment: models.SentimentPositive, Score: 0.8, Date: "2025-05-01T10:00:00Z",
	}))
	require.NoError(t, st.SaveComment(ctx, models.Comment{
		ID: "id-2", Platform: models.PlatformReddit, Influencer: "alice",
		Text: "terrible", Sentiment: models.SentimentNegative, Score: -0.6, Date: "2025-05-02T10:00:00Z",
	}))

	w := doJSON(t, router, http.MethodGet, "/api/analytics/alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Total)
	assert.InDelta(t, 52.5, report.Karma, 1e-9)
	assert.NotEmpty(t, report.Recommendation)
}

func TestGetAnalyticsUnknownInfluencer(t *testing.T) {
	router, _ := setupAPI(t)
	w := doJSON(t, router, http.MethodGet, "/api/analytics/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListInfluencers(t *testing.T) {
	router, st := setupAPI(t)
	require.NoError(t, st.SaveInfluencer(context.Background(), "alice"))
	require.NoError(t, st.SaveInfluencer(context.Background(), "bob"))

	w := doJSON(t, router, http.MethodGet, "/api/influencers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp spyglass.InfluencersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Influencers, 2)
}
