// Package store persists influencers and comments in a keyed store.
//
// Layout mirrors a plain Redis keyspace:
//
//	influencer:<name>                      hash  {name, last_scrape}
//	comment:<id>                           JSON-encoded models.Comment
//	influencer_comments:<name>             set of comment ids
//	influencer_comments:<name>:<platform>  set of comment ids
//
// A comment is written first and indexed second. The two steps are not
// atomic: an id can be orphaned if the index write fails, in which case
// the comment is simply unreachable through queries. Readers tolerate
// missing values behind index entries for the same reason.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DanYC1503/spyglass/pkg/models"
)

// ErrNotFound is returned when the requested influencer is unknown.
var ErrNotFound = errors.New("influencer not found")

// KV is the minimal keyed-store surface the service needs. Implemented by
// RedisKV in production and MemoryKV in tests.
type KV interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	SAdd(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Store provides typed access on top of a KV.
type Store struct {
	kv  KV
	now func() time.Time
}

func New(kv KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

func keyInfluencer(name string) string {
	return "influencer:" + name
}

func keyComment(id string) string {
	return "comment:" + id
}

func keyComments(name string) string {
	return "influencer_comments:" + name
}

func keyCommentsPlatform(name string, platform models.Platform) string {
	return fmt.Sprintf("influencer_comments:%s:%s", name, platform)
}

// SaveInfluencer creates the influencer record or refreshes its scrape
// timestamp. Idempotent.
func (s *Store) SaveInfluencer(ctx context.Context, name string) error {
	err := s.kv.HSet(ctx, keyInfluencer(name), map[string]string{
		"name":        name,
		"last_scrape": s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("save influencer %q: %w", name, err)
	}
	return nil
}

// InfluencerExists reports whether the influencer record is present.
func (s *Store) InfluencerExists(ctx context.Context, name string) (bool, error) {
	ok, err := s.kv.Exists(ctx, keyInfluencer(name))
	if err != nil {
		return false, fmt.Errorf("check influencer %q: %w", name, err)
	}
	return ok, nil
}

// GetInfluencer fetches the influencer record, or ErrNotFound.
func (s *Store) GetInfluencer(ctx context.Context, name string) (models.Influencer, error) {
	fields, err := s.kv.HGetAll(ctx, keyInfluencer(name))
	if err != nil {
		return models.Influencer{}, fmt.Errorf("get influencer %q: %w", name, err)
	}
	if len(fields) == 0 {
		return models.Influencer{}, ErrNotFound
	}
	return models.Influencer{
		Name:       fields["name"],
		LastScrape: fields["last_scrape"],
	}, nil
}

// ListInfluencers returns every known influencer record.
func (s *Store) ListInfluencers(ctx context.Context) ([]models.Influencer, error) {
	keys, err := s.kv.Keys(ctx, "influencer:*")
	if err != nil {
		return nil, fmt.Errorf("list influencers: %w", err)
	}
	influencers := make([]models.Influencer, 0, len(keys))
	for _, key := range keys {
		fields, err := s.kv.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("list influencers: %w", err)
		}
		if len(fields) == 0 {
			continue
		}
		influencers = append(influencers, models.Influencer{
			Name:       fields["name"],
			LastScrape: fields["last_scrape"],
		})
	}
	return influencers, nil
}

// SaveComment writes the comment value and then indexes it under the
// influencer and the influencer+platform sets.
func (s *Store) SaveComment(ctx context.Context, c models.Comment) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal comment %s: %w", c.ID, err)
	}
	if err := s.kv.Set(ctx, keyComment(c.ID), string(payload)); err != nil {
		return fmt.Errorf("save comment %s: %w", c.ID, err)
	}
	if err := s.kv.SAdd(ctx, keyComments(c.Influencer), c.ID); err != nil {
		return fmt.Errorf("index comment %s: %w", c.ID, err)
	}
	if err := s.kv.SAdd(ctx, keyCommentsPlatform(c.Influencer, c.Platform), c.ID); err != nil {
		return fmt.Errorf("index comment %s by platform: %w", c.ID, err)
	}
	return nil
}

// CommentsByInfluencer returns every reachable comment for the influencer.
// Ids whose backing value is missing are skipped.
func (s *Store) CommentsByInfluencer(ctx context.Context, name string) ([]models.Comment, error) {
	return s.commentsFromSet(ctx, keyComments(name))
}

// CommentsByInfluencerAndPlatform returns the influencer's comments
// collected from one platform.
func (s *Store) CommentsByInfluencerAndPlatform(ctx context.Context, name string, platform models.Platform) ([]models.Comment, error) {
	return s.commentsFromSet(ctx, keyCommentsPlatform(name, platform))
}

func (s *Store) commentsFromSet(ctx context.Context, setKey string) ([]models.Comment, error) {
	ids, err := s.kv.SMembers(ctx, setKey)
	if err != nil {
		return nil, fmt.Errorf("read comment index %q: %w", setKey, err)
	}
	comments := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		value, found, err := s.kv.Get(ctx, keyComment(id))
		if err != nil {
			return nil, fmt.Errorf("read comment %s: %w", id, err)
		}
		if !found {
			continue
		}
		var c models.Comment
		if err := json.Unmarshal([]byte(value), &c); err != nil {
			return nil, fmt.Errorf("decode comment %s: %w", id, err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}
