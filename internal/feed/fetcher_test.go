package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elevacare/podsite/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedServer serves the sample feed and counts hits; set fail to make it
// start returning 500s.
type feedServer struct {
	hits int64
	fail atomic.Bool
	srv  *httptest.Server
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fs.hits, 1)
		if fs.fail.Load() {
			http.Error(w, "upstream down", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func newTestService(t *testing.T, fs *feedServer, store SnapshotStore) *Service {
	t.Helper()
	return NewService(fs.srv.URL, time.Minute, fs.srv.Client(), store, zerolog.Nop())
}

func TestServiceEpisodesAndCache(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestService(t, fs, nil)
	ctx := context.Background()

	episodes, err := svc.Episodes(ctx, 0)
	require.NoError(t, err)
	require.Len(t, episodes, 2)

	// Second call within the TTL hits the cache, not the upstream.
	again, err := svc.Episodes(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, episodes, again)
	assert.Equal(t, int64(1), atomic.LoadInt64(&fs.hits))
}

func TestServiceEpisodesLimit(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestService(t, fs, nil)

	episodes, err := svc.Episodes(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, "hormones-exercise-what-we-know", episodes[0].ID)
}

func TestServiceEpisodeLookup(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestService(t, fs, nil)
	ctx := context.Background()

	ep, err := svc.Episode(ctx, "season-3-trailer")
	require.NoError(t, err)
	assert.Equal(t, "Season 3 Trailer", ep.Title)

	_, err = svc.Episode(ctx, "no-such-episode")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceMetaFeedURLFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<rss><channel><title>Bare</title></channel></rss>"))
	}))
	defer srv.Close()

	svc := NewService(srv.URL, time.Minute, srv.Client(), nil, zerolog.Nop())
	meta, err := svc.Meta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bare", meta.Title)
	assert.Equal(t, srv.URL, meta.FeedURL, "self link absent, configured URL wins")
}

func TestServiceServesStaleOnFetchFailure(t *testing.T) {
	fs := newFeedServer(t)
	svc := newTestService(t, fs, nil)
	ctx := context.Background()

	first, err := svc.Episodes(ctx, 0)
	require.NoError(t, err)

	// Expire the cache and break the upstream.
	svc.mu.Lock()
	svc.fetchedAt = time.Now().Add(-time.Hour)
	svc.mu.Unlock()
	fs.fail.Store(true)

	stale, err := svc.Episodes(ctx, 0)
	require.NoError(t, err, "stale in-memory copy must be served")
	assert.Equal(t, first, stale)
}

func TestServiceServesSnapshotWhenColdAndUnreachable(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "podsite.db"))
	require.NoError(t, err)
	defer db.Close()

	fs := newFeedServer(t)
	fs.fail.Store(true)
	require.NoError(t, db.SaveSnapshot(fs.srv.URL, sampleFeed, time.Now().Add(-time.Hour)))

	svc := newTestService(t, fs, db)
	episodes, err := svc.Episodes(context.Background(), 0)
	require.NoError(t, err, "stored snapshot must cover a cold start")
	require.Len(t, episodes, 2)
}

func TestServiceColdFailurePropagates(t *testing.T) {
	fs := newFeedServer(t)
	fs.fail.Store(true)

	svc := newTestService(t, fs, nil)
	_, err := svc.Episodes(context.Background(), 0)
	require.Error(t, err)
}

func TestServiceSavesSnapshotOnSuccess(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "podsite.db"))
	require.NoError(t, err)
	defer db.Close()

	fs := newFeedServer(t)
	svc := newTestService(t, fs, db)
	_, err = svc.Episodes(context.Background(), 0)
	require.NoError(t, err)

	snap, err := db.GetSnapshot(fs.srv.URL)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, sampleFeed, snap.Body)
}
