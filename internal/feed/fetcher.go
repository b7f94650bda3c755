package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/elevacare/podsite/internal/database"
	"github.com/elevacare/podsite/internal/model"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long a fetched document is reused before the
// upstream feed is asked again.
const DefaultCacheTTL = 5 * time.Minute

// ErrNotFound is returned by Episode for an unknown slug.
var ErrNotFound = errors.New("episode not found")

// SnapshotStore persists the last good copy of the feed document.
type SnapshotStore interface {
	SaveSnapshot(feedURL, body string, fetchedAt time.Time) error
	GetSnapshot(feedURL string) (*database.Snapshot, error)
}

// Service fetches the feed document and answers episode queries. Extraction
// itself is pure; the service adds the time-bounded cache in front of it and
// the last-good fallback behind it. Safe for concurrent use.
type Service struct {
	feedURL string
	ttl     time.Duration
	client  *http.Client
	store   SnapshotStore
	log     zerolog.Logger

	mu        sync.Mutex
	body      string
	fetchedAt time.Time
}

// NewService creates a feed service. store may be nil, in which case no
// snapshot fallback is available.
func NewService(feedURL string, ttl time.Duration, client *http.Client, store SnapshotStore, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{
		feedURL: feedURL,
		ttl:     ttl,
		client:  client,
		store:   store,
		log:     logger,
	}
}

// document returns the current feed text, refreshing it when the cache
// window has passed. Callers always get a complete document: the body is
// read in full before it is cached or returned. On fetch failure the
// previous in-memory copy, then the stored snapshot, is served instead;
// only with neither available does the error propagate.
func (s *Service) document(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.body != "" && time.Since(s.fetchedAt) < s.ttl {
		return s.body, nil
	}

	body, err := s.fetch(ctx)
	if err != nil {
		if s.body != "" {
			s.log.Warn().Err(err).Str("feed_url", s.feedURL).Msg("feed fetch failed, serving stale copy")
			return s.body, nil
		}
		if s.store != nil {
			if snap, serr := s.store.GetSnapshot(s.feedURL); serr == nil && snap != nil {
				s.log.Warn().Err(err).Str("feed_url", s.feedURL).Time("snapshot_at", snap.FetchedAt).
					Msg("feed fetch failed, serving stored snapshot")
				s.body = snap.Body
				s.fetchedAt = snap.FetchedAt
				return s.body, nil
			}
		}
		return "", err
	}

	s.body = body
	s.fetchedAt = time.Now()
	if s.store != nil {
		if err := s.store.SaveSnapshot(s.feedURL, body, s.fetchedAt); err != nil {
			s.log.Error().Err(err).Msg("save feed snapshot")
		}
	}
	return body, nil
}

func (s *Service) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed %s: %w", s.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch feed %s: unexpected status %s", s.feedURL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read feed body: %w", err)
	}
	return string(raw), nil
}

// Episodes returns episodes in feed order, truncated to limit when
// limit > 0.
func (s *Service) Episodes(ctx context.Context, limit int) ([]model.Episode, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return nil, err
	}
	episodes := ParseEpisodes(doc)
	if limit > 0 && len(episodes) > limit {
		episodes = episodes[:limit]
	}
	return episodes, nil
}

// Episode looks up a single episode by slug. When two titles collapse to
// the same slug the first in feed order wins. Returns ErrNotFound for an
// unknown id.
func (s *Service) Episode(ctx context.Context, id string) (model.Episode, error) {
	episodes, err := s.Episodes(ctx, 0)
	if err != nil {
		return model.Episode{}, err
	}
	for _, ep := range episodes {
		if ep.ID == id {
			return ep, nil
		}
	}
	return model.Episode{}, ErrNotFound
}

// Meta returns the channel-level record. A document without a self link
// reports the configured feed URL.
func (s *Service) Meta(ctx context.Context) (model.PodcastMeta, error) {
	doc, err := s.document(ctx)
	if err != nil {
		return model.PodcastMeta{}, err
	}
	meta := ParsePodcastMeta(doc)
	if meta.FeedURL == "" {
		meta.FeedURL = s.feedURL
	}
	return meta, nil
}
