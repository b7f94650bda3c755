package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, defaultAddr, cfg.Addr)
	assert.Equal(t, defaultFeedURL, cfg.FeedURL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.NotEmpty(t, cfg.Site.Title)
	assert.NotEmpty(t, cfg.Site.BaseURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("RSS_FEED_URL", "https://feeds.example.com/rss")
	t.Setenv("BASE_URL", "https://other.example.com")
	t.Setenv("FEED_CACHE_TTL", "90s")

	cfg := Load()
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, "https://feeds.example.com/rss", cfg.FeedURL)
	assert.Equal(t, "https://other.example.com", cfg.Site.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
}

func TestCacheTTLFallsBackOnGarbage(t *testing.T) {
	t.Setenv("FEED_CACHE_TTL", "not-a-duration")
	assert.Equal(t, defaultCacheTTL, Load().CacheTTL)

	t.Setenv("FEED_CACHE_TTL", "120")
	assert.Equal(t, 120*time.Second, Load().CacheTTL)
}
