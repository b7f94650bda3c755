package schema

import (
	"encoding/json"
	"testing"

	"github.com/elevacare/podsite/internal/config"
	"github.com/elevacare/podsite/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = config.Site{
	BaseURL:      "https://podcast.example.com",
	Title:        "Test Podcast",
	Description:  "A test show.",
	ShareImage:   "https://podcast.example.com/static/share.png",
	HostName:     "Dr. Pat",
	HostTitle:    "PT, PhD",
	HostTwitter:  "https://twitter.com/pat",
	ProducerName: "Producer Co",
	ProducerURL:  "https://producer.example.com",
	SpotifyURL:   "https://spotify.example.com",
	AppleURL:     "https://apple.example.com",
	YouTubeURL:   "https://youtube.example.com",
}

func TestPodcastSeries(t *testing.T) {
	record := PodcastSeries(testSite, "https://feeds.example.com/rss")

	assert.Equal(t, "PodcastSeries", record["@type"])
	assert.Equal(t, testSite.BaseURL, record["@id"])
	assert.Equal(t, "https://feeds.example.com/rss", record["webFeed"])
	assert.Contains(t, record["sameAs"], testSite.SpotifyURL)

	// Must be marshalable for the <script> tag.
	_, err := json.Marshal(record)
	require.NoError(t, err)
}

func TestPodcastEpisodeFull(t *testing.T) {
	ep := model.Episode{
		ID:           "test-episode",
		Title:        "Test Episode",
		Description:  "<p>Notes &amp; more.</p>",
		PubDate:      "Tue, 14 Jan 2025 06:00:00 GMT",
		AudioURL:     "https://cdn.example.com/ep.mp3",
		AudioSize:    52428800,
		HasAudioSize: true,
		Duration:     "1:02:03",
		Season:       2,
		Episode:      42,
		Chapters: []model.Chapter{
			{Time: "00:00", Seconds: 0, Title: "Welcome"},
			{Time: "03:23", Seconds: 203, Title: "Main topic"},
		},
		Guest: &model.Guest{
			Name:  "Dr. Jane Doe",
			Links: []model.GuestLink{{Platform: "X", URL: "https://x.com/janedoe"}},
		},
		Keywords: []string{"health"},
	}

	record := PodcastEpisode(testSite, ep)

	assert.Equal(t, "PodcastEpisode", record["@type"])
	assert.Equal(t, "https://podcast.example.com/episode/test-episode", record["url"])
	assert.Equal(t, "Notes & more.", record["description"])
	assert.Equal(t, "PT1H2M3S", record["duration"])
	assert.Equal(t, 42, record["episodeNumber"])

	season := record["partOfSeason"].(map[string]any)
	assert.Equal(t, 2, season["seasonNumber"])

	audio := record["associatedMedia"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/ep.mp3", audio["contentUrl"])
	assert.Equal(t, "50MB", audio["contentSize"])

	contributor := record["contributor"].(map[string]any)
	assert.Equal(t, "Dr. Jane Doe", contributor["name"])
	assert.Equal(t, []string{"https://x.com/janedoe"}, contributor["sameAs"])

	parts := record["hasPart"].([]map[string]any)
	require.Len(t, parts, 2)
	assert.Equal(t, 203, parts[1]["startOffset"])
	assert.Equal(t, "https://podcast.example.com/episode/test-episode#chapter-2", parts[1]["url"])

	_, err := json.Marshal(record)
	require.NoError(t, err)
}

func TestPodcastEpisodeOptionalFieldsAbsent(t *testing.T) {
	ep := model.Episode{
		ID:       "bare",
		Title:    "Bare",
		AudioURL: "https://cdn.example.com/bare.mp3",
	}

	record := PodcastEpisode(testSite, ep)

	for _, key := range []string{"duration", "episodeNumber", "partOfSeason", "about", "contributor", "hasPart"} {
		_, present := record[key]
		assert.False(t, present, "key %q should be absent", key)
	}

	// Episode artwork falls back to the share image.
	image := record["image"].(map[string]any)
	assert.Equal(t, testSite.ShareImage, image["url"])

	audio := record["associatedMedia"].(map[string]any)
	_, present := audio["contentSize"]
	assert.False(t, present)
}
