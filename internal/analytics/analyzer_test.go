package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanYC1503/spyglass/internal/store"
	"github.com/DanYC1503/spyglass/pkg/llm"
	"github.com/DanYC1503/spyglass/pkg/models"
)

type stubSummarizer struct {
	reply string
	err   error
}

func (s *stubSummarizer) Complete(_ context.Context, _ []llm.Message) (string, error) {
	return s.reply, s.err
}

type stubWordCloud struct {
	url string
	err error
}

func (s *stubWordCloud) Render(_ context.Context, _ string) (string, error) {
	return s.url, s.err
}

func seedStore(t *testing.T, comments ...models.Comment) *store.Store {
	t.Helper()
	st := store.New(store.NewMemoryKV())
	ctx := context.Background()
	if len(comments) > 0 {
		require.NoError(t, st.SaveInfluencer(ctx, comments[0].Influencer))
	}
	for _, c := range comments {
		require.NoError(t, st.SaveComment(ctx, c))
	}
	return st
}

func aliceComments() []models.Comment {
	return []models.Comment{
		{
			ID: "id-1", Platform: models.PlatformReddit, Influencer: "alice",
			Text: "great job", Sentiment: models.SentimentPositive, Score: 0.8,
			Date: "2025-05-01T10:00:00Z",
		},
		{
			ID: "id-2", Platform: models.PlatformReddit, Influencer: "alice",
			Text: "terrible", Sentiment: models.SentimentNegative, Score: -0.6,
			Date: "2025-05-02T10:00:00Z",
		},
	}
}

func TestAnalyzeUnknownInfluencer(t *testing.T) {
	a := New(store.New(store.NewMemoryKV()), nil, nil, nil, nil)
	_, err := a.Analyze(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyzeNoData(t *testing.T) {
	st := store.New(store.NewMemoryKV())
	require.NoError(t, st.SaveInfluencer(context.Background(), "alice"))
	a := New(st, nil, nil, nil, nil)
	_, err := a.Analyze(context.Background(), "alice")
	require.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeFallbackKarmaScenario(t *testing.T) {
	// Summarizer unavailable: 1 positive + 1 negative, avg 0.1
	// → (1+0)/2*100 + 0.1*25 = 52.5
	st := seedStore(t, aliceComments()...)
	a := New(st, nil, nil, nil, nil)

	report, err := a.Analyze(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Positive)
	assert.Equal(t, 1, report.Negative)
	assert.Equal(t, 0, report.Neutral)
	assert.InDelta(t, 0.1, report.AverageScore, 1e-9)
	assert.InDelta(t, 52.5, report.Karma, 1e-9)
	assert.NotEmpty(t, report.Recommendation)
}

func TestAnalyzeUsesSummarizer(t *testing.T) {
	st := seedStore(t, aliceComments()...)
	summarizer := &stubSummarizer{reply: "Karma: 83\nRecomendación: Sigue así"}
	a := New(st, summarizer, nil, nil, nil)

	report, err := a.Analyze(context.Background(), "alice")
	require.NoError(t, err)
	assert.InDelta(t, 83, report.Karma, 1e-9)
	assert.Equal(t, "Sigue así", report.Recommendation)
}

func TestAnalyzeSummarizerKarmaClamped(t *testing.T) {
	st := seedStore(t, aliceComments()...)
	summarizer := &stubSummarizer{reply: "Karma: 150\nRecomendación: demasiado bueno"}
	a := New(st, summarizer, nil, nil, nil)

	report, err := a.Analyze(context.Background(), "alice")
	require.NoError(t, err)
	assert.InDelta(t, 100, report.Karma, 1e-9)
}

func TestAnalyzeSummarizerDegradesToFallback(t *testing.T) {
	tests := []struct {
		name       string
		summarizer *stubSummarizer
	}{
		{"error", &stubSummarizer{err: errors.New("timeout")}},
		{"unparsable", &stubSummarizer{reply: "the subject seems fine"}},
		{"missing recommendation", &stubSummarizer{reply: "Karma: 70"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := seedStore(t, aliceComments()...)
			a := New(st, tt.summarizer, nil, nil, nil)

			report, err := a.Analyze(context.Background(), "alice")
			require.NoError(t, err)
			assert.InDelta(t, 52.5, report.Karma, 1e-9)
		})
	}
}

func TestAnalyzeWordCloud(t *testing.T) {
	st := seedStore(t, aliceComments()...)
	a := New(st, nil, &stubWordCloud{url: "https://charts.example/wc.png"}, nil, nil)

	report, err := a.Analyze(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://charts.example/wc.png", report.WordCloudURL)
}

func TestAnalyzeWordCloudFailureNonBlocking(t *testing.T) {
	st := seedStore(t, aliceComments()...)
	a := New(st, nil, &stubWordCloud{err: errors.New("render failed")}, nil, nil)

	report, err := a.Analyze(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, report.WordCloudURL)
	assert.InDelta(t, 52.5, report.Karma, 1e-9)
}

func TestFallbackKarmaBounds(t *testing.T) {
	tests := []struct {
		name          string
		pos, neg, neu int
		avg           float64
		want          float64
	}{
		{"degenerate guard", 0, 0, 0, 0.9, 50},
		{"all negative floor", 0, 10, 0, -1, 0},
		{"all positive ceiling", 10, 0, 0, 1, 100},
		{"alice scenario", 1, 1, 0, 0.1, 52.5},
		{"neutral weighting", 0, 0, 4, 0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackKarma(tt.pos, tt.neg, tt.neu, tt.avg)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestListBySubjectOrdering(t *testing.T) {
	comments := aliceComments()
	comments = append(comments, models.Comment{
		ID: "id-3", Platform: models.PlatformTikTok, Influencer: "alice",
		Text: "undated", Sentiment: models.SentimentNeutral, Date: "not-a-date",
	})
	st := seedStore(t, comments...)
	a := New(st, nil, nil, nil, nil)

	got, err := a.ListBySubject(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Most recent first; the unparseable date sorts last.
	assert.Equal(t, "id-2", got[0].ID)
	assert.Equal(t, "id-1", got[1].ID)
	assert.Equal(t, "id-3", got[2].ID)
}

func TestListBySubjectUnknown(t *testing.T) {
	a := New(store.New(store.NewMemoryKV()), nil, nil, nil, nil)
	_, err := a.ListBySubject(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListBySubjectEmpty(t *testing.T) {
	st := store.New(store.NewMemoryKV())
	require.NoError(t, st.SaveInfluencer(context.Background(), "alice"))
	a := New(st, nil, nil, nil, nil)

	got, err := a.ListBySubject(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, got)
}
