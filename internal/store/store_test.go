package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanYC1503/spyglass/pkg/models"
)

func newTestStore() *Store {
	return New(NewMemoryKV())
}

func TestSaveInfluencerIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.SaveInfluencer(ctx, "alice"))
	require.NoError(t, s.SaveInfluencer(ctx, "alice"))

	exists, err := s.InfluencerExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	influencers, err := s.ListInfluencers(ctx)
	require.NoError(t, err)
	require.Len(t, influencers, 1)
	assert.Equal(t, "alice", influencers[0].Name)
	assert.NotEmpty(t, influencers[0].LastScrape)
}

func TestGetInfluencerNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.GetInfluencer(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveAndQueryComments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	require.NoError(t, s.SaveInfluencer(ctx, "alice"))

	c1 := models.Comment{
		ID:         "id-1",
		Platform:   models.PlatformReddit,
		Influencer: "alice",
		Text:       "great job",
		Sentiment:  models.SentimentPositive,
		Score:      0.8,
		Date:       "2025-05-01T10:00:00Z",
	}
	c2 := models.Comment{
		ID:         "id-2",
		Platform:   models.PlatformTikTok,
		Influencer: "alice",
		Text:       "terrible",
		Sentiment:  models.SentimentNegative,
		Score:      -0.6,
		Date:       "2025-05-02T10:00:00Z",
	}
	require.NoError(t, s.SaveComment(ctx, c1))
	require.NoError(t, s.SaveComment(ctx, c2))

	all, err := s.CommentsByInfluencer(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	reddit, err := s.CommentsByInfluencerAndPlatform(ctx, "alice", models.PlatformReddit)
	require.NoError(t, err)
	require.Len(t, reddit, 1)
	assert.Equal(t, "id-1", reddit[0].ID)

	fb, err := s.CommentsByInfluencerAndPlatform(ctx, "alice", models.PlatformFacebook)
	require.NoError(t, err)
	assert.Empty(t, fb)
}

func TestCommentsSkipOrphanedIndexEntries(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := New(kv)

	c := models.Comment{
		ID:         "id-1",
		Platform:   models.PlatformReddit,
		Influencer: "alice",
		Text:       "hello",
		Sentiment:  models.SentimentNeutral,
	}
	require.NoError(t, s.SaveComment(ctx, c))

	// Simulate the accepted weak-consistency case: an indexed id whose
	// value has gone missing.
	require.NoError(t, kv.SAdd(ctx, "influencer_comments:alice", "ghost-id"))

	comments, err := s.CommentsByInfluencer(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "id-1", comments[0].ID)
}
