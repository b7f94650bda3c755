package markdown

import (
	"strings"
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
	HostName:     "Dr. Pat",
	HostTitle:    "PT, PhD",
	HostTwitter:  "https://twitter.com/pat",
	ProducerName: "Producer Co",
	ProducerURL:  "https://producer.example.com",
	SpotifyURL:   "https://spotify.example.com",
	AppleURL:     "https://apple.example.com",
	YouTubeURL:   "https://youtube.example.com",
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <strong>world</strong></p>", "Hello world"},
		{"<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"plain  text\n\nwith   gaps", "plain text with gaps"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTML(tt.in), "input %q", tt.in)
	}
}

func TestSummaryTruncates(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := Summary(long, 50)
	assert.LessOrEqual(t, len([]rune(got)), 51)
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "short", Summary("<p>short</p>", 50))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00", formatTimestamp(0))
	assert.Equal(t, "3:23", formatTimestamp(203))
	assert.Equal(t, "1:02:03", formatTimestamp(3723))
}

func TestFormatPubDate(t *testing.T) {
	assert.Equal(t, "January 14, 2025", formatPubDate("Tue, 14 Jan 2025 06:00:00 GMT"))
	assert.Equal(t, "not a date", formatPubDate("not a date"))
}

func testEpisode() model.Episode {
	return model.Episode{
		ID:          "test-episode",
		Title:       "Test Episode",
		Description: "<p>Show notes with <strong>markup</strong> &amp; entities.</p>",
		PubDate:     "Tue, 14 Jan 2025 06:00:00 GMT",
		AudioURL:    "https://cdn.example.com/ep.mp3",
		Duration:    "1:02:03",
		Season:      2,
		Episode:     42,
		Chapters: []model.Chapter{
			{Time: "00:00", Seconds: 0, Title: "Welcome"},
			{Time: "03:23", Seconds: 203, Title: "Main topic", Emoji: "🎯"},
		},
		Guest: &model.Guest{
			Name:  "Dr. Jane Doe",
			Links: []model.GuestLink{{Platform: "LinkedIn", URL: "https://linkedin.com/in/janedoe"}},
		},
		Keywords: []string{"health", "science"},
	}
}

func TestEpisodeDetail(t *testing.T) {
	out := EpisodeDetail(testSite, testEpisode())

	assert.Contains(t, out, "# Test Episode")
	assert.Contains(t, out, "> S2E42 | Test Podcast")
	assert.Contains(t, out, "| **Published** | January 14, 2025 |")
	assert.Contains(t, out, "| **Duration** | 1:02:03 |")
	assert.Contains(t, out, "Show notes with markup & entities.")
	assert.Contains(t, out, "1. **[0:00]** Welcome")
	assert.Contains(t, out, "2. **[3:23]** Main topic")
	assert.Contains(t, out, "**Dr. Jane Doe**")
	assert.Contains(t, out, "### Connect with Dr.")
	assert.Contains(t, out, "- **LinkedIn:** https://linkedin.com/in/janedoe")
	assert.Contains(t, out, "- health\n- science")
	assert.NotContains(t, out, "<p>", "HTML must be stripped from show notes")
}

func TestEpisodeDetailMinimal(t *testing.T) {
	ep := model.Episode{ID: "bare", Title: "Bare", AudioURL: "https://cdn.example.com/bare.mp3"}
	out := EpisodeDetail(testSite, ep)

	assert.Contains(t, out, "| **Duration** | N/A |")
	assert.Contains(t, out, "| **Type** | full |")
	assert.NotContains(t, out, "## Chapters")
	assert.NotContains(t, out, "## Featured Guest")
	assert.NotContains(t, out, "## Topics Covered")
}

func TestEpisodeIndex(t *testing.T) {
	meta := model.PodcastMeta{
		FeedURL:     "https://feeds.example.com/rss",
		Language:    "en-us",
		Category:    "Health &amp; Fitness",
		Subcategory: "Medicine",
	}
	out := EpisodeIndex(testSite, meta, []model.Episode{testEpisode()})

	assert.Contains(t, out, "# Test Podcast")
	assert.Contains(t, out, "| Total Episodes | 1 |")
	assert.Contains(t, out, "| Category | Health & Fitness > Medicine |")
	assert.Contains(t, out, "### [S2E42] Test Episode")
	assert.Contains(t, out, "| Web Page | https://podcast.example.com/episode/test-episode |")
	assert.Contains(t, out, "| Markdown | https://podcast.example.com/episode/test-episode.md |")
	assert.Contains(t, out, "**Topics:** health, science")
}

func TestLLMText(t *testing.T) {
	meta := model.PodcastMeta{FeedURL: "https://feeds.example.com/rss"}
	out := LLMText(testSite, meta, 12)

	assert.Contains(t, out, "# Test Podcast")
	assert.Contains(t, out, "| RSS Feed | https://feeds.example.com/rss |")
	assert.Contains(t, out, "- Episodes available: 12")
	assert.Contains(t, out, "`/episode/{episode-slug}.md`")
}

func TestNotFound(t *testing.T) {
	require.Contains(t, NotFound(), "# Episode Not Found")
}
