// Package config loads server settings from the environment and carries
// the fixed site identity used by the rendering layer.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultAddr      = "0.0.0.0:8080"
	defaultDBPath    = "podsite.db"
	defaultFeedURL   = "https://anchor.fm/s/fb6b5228/podcast/rss"
	defaultBaseURL   = "https://podcast.patriciamota.com"
	defaultCacheTTL  = 5 * time.Minute
	defaultHTTPLimit = 30 * time.Second
)

// Config holds runtime settings.
type Config struct {
	Addr        string
	DBPath      string
	FeedURL     string
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
	Site        Site
}

// Site is the immutable identity block consumed by templates, schema
// builders and the machine-readable endpoints. It is configuration, not
// extractor state: nothing here feeds back into feed parsing.
type Site struct {
	BaseURL     string
	Title       string
	Description string
	ShareImage  string

	HostName        string
	HostTitle       string
	HostDescription string
	HostTwitter     string

	ProducerName string
	ProducerURL  string

	SpotifyURL string
	AppleURL   string
	YouTubeURL string
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	baseURL := getEnvOrDefault("BASE_URL", defaultBaseURL)
	cfg := &Config{
		Addr:        getEnvOrDefault("LISTEN_ADDR", defaultAddr),
		DBPath:      getEnvOrDefault("DB_PATH", defaultDBPath),
		FeedURL:     getEnvOrDefault("RSS_FEED_URL", defaultFeedURL),
		CacheTTL:    getEnvDuration("FEED_CACHE_TTL", defaultCacheTTL),
		HTTPTimeout: defaultHTTPLimit,
		Site: Site{
			BaseURL:         baseURL,
			Title:           "Just Between Us … and Science: The Women's Health Lab",
			Description:     "Join Dr. Patrícia Mota, PT, PhD, as she takes you behind the scenes of women's health — from the latest research to everyday experiences.",
			ShareImage:      baseURL + "/static/share-image.png",
			HostName:        "Dr. Patrícia Mota",
			HostTitle:       "PT, PhD",
			HostDescription: "Physical Therapist and PhD specializing in women's health research",
			HostTwitter:     "https://twitter.com/patimota",
			ProducerName:    "Eleva Care",
			ProducerURL:     "https://eleva.care",
			SpotifyURL:      "https://open.spotify.com/show/2PMAy4HFeiu8IAf8Ic8Fqo",
			AppleURL:        "https://podcasts.apple.com/us/podcast/elevating-womens-health/id1770183816",
			YouTubeURL:      "https://www.youtube.com/@patimota",
		},
	}
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
