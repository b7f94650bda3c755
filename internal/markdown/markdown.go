// Package markdown renders the machine-readable mirrors of the site:
// the episode index, per-episode show notes and the llm.txt overview.
// These exist for AI-agent consumption, so they re-strip the HTML kept
// raw in Episode.Description.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/elevacare/podsite/internal/config"
	"github.com/elevacare/podsite/internal/feed"
	"github.com/elevacare/podsite/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripHTML reduces an HTML fragment to its text content with whitespace
// collapsed. Entities are decoded by the HTML parser along the way.
func StripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(whitespaceRe.ReplaceAllString(fragment, " "))
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Text(), " "))
}

// Summary strips an HTML fragment and truncates it for listings.
func Summary(fragment string, max int) string {
	text := StripHTML(fragment)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// formatPubDate renders a feed date string for human readers, falling back
// to the raw string when it is not an RFC 1123 date.
func formatPubDate(raw string) string {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return raw
}

// formatTimestamp renders chapter seconds as "H:MM:SS", or "M:SS" under an
// hour, normalizing whatever shape the feed used.
func formatTimestamp(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// seasonEpisodeLabel renders "S2E42", "E42" or "".
func seasonEpisodeLabel(ep model.Episode) string {
	switch {
	case ep.Season > 0 && ep.Episode > 0:
		return fmt.Sprintf("S%dE%d", ep.Season, ep.Episode)
	case ep.Episode > 0:
		return fmt.Sprintf("E%d", ep.Episode)
	}
	return ""
}

// EpisodeIndex renders the full episode listing served at /episodes.md.
func EpisodeIndex(site config.Site, meta model.PodcastMeta, episodes []model.Episode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", site.Title)
	fmt.Fprintf(&b, "> *This document is designed for AI assistants, language models, and programmatic access. For the interactive website, visit [%s](%s).*\n\n", site.BaseURL, site.BaseURL)
	fmt.Fprintf(&b, "## About\n\n%s\n\n", site.Description)
	b.WriteString("| Property | Value |\n|----------|-------|\n")
	fmt.Fprintf(&b, "| Website | %s |\n", site.BaseURL)
	fmt.Fprintf(&b, "| RSS Feed | %s |\n", meta.FeedURL)
	fmt.Fprintf(&b, "| Total Episodes | %d |\n", len(episodes))
	fmt.Fprintf(&b, "| Language | %s |\n", meta.Language)
	if meta.Category != "" {
		category := feed.DecodeEntities(meta.Category)
		if meta.Subcategory != "" {
			category += " > " + feed.DecodeEntities(meta.Subcategory)
		}
		fmt.Fprintf(&b, "| Category | %s |\n", category)
	}
	b.WriteString("\n---\n\n## Episode Index\n\n")

	for _, ep := range episodes {
		label := seasonEpisodeLabel(ep)
		if label != "" {
			fmt.Fprintf(&b, "### [%s] %s\n\n", label, ep.Title)
		} else {
			fmt.Fprintf(&b, "### %s\n\n", ep.Title)
		}
		b.WriteString("| Property | Value |\n|----------|-------|\n")
		fmt.Fprintf(&b, "| Published | %s |\n", formatPubDate(ep.PubDate))
		duration := ep.Duration
		if duration == "" {
			duration = "N/A"
		}
		fmt.Fprintf(&b, "| Duration | %s |\n", duration)
		fmt.Fprintf(&b, "| Web Page | %s/episode/%s |\n", site.BaseURL, ep.ID)
		fmt.Fprintf(&b, "| Markdown | %s/episode/%s.md |\n", site.BaseURL, ep.ID)
		if len(ep.Keywords) > 0 {
			topics := ep.Keywords
			if len(topics) > 5 {
				topics = topics[:5]
			}
			fmt.Fprintf(&b, "\n**Topics:** %s\n", strings.Join(topics, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n\n---\n\n", Summary(ep.Description, 200))
	}

	fmt.Fprintf(&b, "## Listening Platforms\n\n")
	fmt.Fprintf(&b, "- Spotify: %s\n", site.SpotifyURL)
	fmt.Fprintf(&b, "- Apple Podcasts: %s\n", site.AppleURL)
	fmt.Fprintf(&b, "- YouTube: %s\n\n", site.YouTubeURL)
	fmt.Fprintf(&b, "**Brought to you by [%s](%s)**\n", site.ProducerName, site.ProducerURL)

	return b.String()
}

// EpisodeDetail renders the per-episode mirror served at /episode/{id}.md.
func EpisodeDetail(site config.Site, ep model.Episode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", ep.Title)
	if label := seasonEpisodeLabel(ep); label != "" {
		fmt.Fprintf(&b, "> %s | %s\n\n", label, site.Title)
	} else {
		fmt.Fprintf(&b, "> %s\n\n", site.Title)
	}

	b.WriteString("## Episode Details\n\n| Property | Value |\n|----------|-------|\n")
	fmt.Fprintf(&b, "| **Published** | %s |\n", formatPubDate(ep.PubDate))
	duration := ep.Duration
	if duration == "" {
		duration = "N/A"
	}
	fmt.Fprintf(&b, "| **Duration** | %s |\n", duration)
	episodeType := ep.EpisodeType
	if episodeType == "" {
		episodeType = "full"
	}
	fmt.Fprintf(&b, "| **Type** | %s |\n", episodeType)
	explicit := "No"
	if ep.Explicit {
		explicit = "Yes"
	}
	fmt.Fprintf(&b, "| **Explicit** | %s |\n\n", explicit)

	fmt.Fprintf(&b, "**Episode URL:** %s/episode/%s\n\n", site.BaseURL, ep.ID)
	fmt.Fprintf(&b, "**Audio File:** %s\n\n", ep.AudioURL)
	fmt.Fprintf(&b, "---\n\n## Show Notes\n\n%s\n\n", StripHTML(ep.Description))

	if len(ep.Chapters) > 0 {
		b.WriteString("## Chapters\n\n")
		for i, ch := range ep.Chapters {
			fmt.Fprintf(&b, "%d. **[%s]** %s\n", i+1, formatTimestamp(ch.Seconds), ch.Title)
		}
		b.WriteString("\n")
	}

	if ep.Guest != nil {
		fmt.Fprintf(&b, "## Featured Guest\n\n**%s**", ep.Guest.Name)
		if ep.Guest.Title != "" {
			fmt.Fprintf(&b, " — %s", ep.Guest.Title)
		}
		b.WriteString("\n\n")
		if len(ep.Guest.Links) > 0 {
			fmt.Fprintf(&b, "### Connect with %s\n\n", firstName(ep.Guest.Name))
			for _, l := range ep.Guest.Links {
				fmt.Fprintf(&b, "- **%s:** %s\n", l.Platform, l.URL)
			}
			b.WriteString("\n")
		}
	}

	if len(ep.Keywords) > 0 {
		b.WriteString("## Topics Covered\n\n")
		for _, k := range ep.Keywords {
			fmt.Fprintf(&b, "- %s\n", k)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n\n## About the Podcast\n\n**%s**\n\n%s\n\n", site.Title, site.Description)
	fmt.Fprintf(&b, "Host: %s, %s\n\n", site.HostName, site.HostTitle)
	fmt.Fprintf(&b, "- Spotify: %s\n- Apple Podcasts: %s\n- YouTube: %s\n\n", site.SpotifyURL, site.AppleURL, site.YouTubeURL)
	fmt.Fprintf(&b, "**Brought to you by [%s](%s)**\n\n", site.ProducerName, site.ProducerURL)
	fmt.Fprintf(&b, "*This document is optimized for AI assistants. For the full experience, visit %s/episode/%s.*\n", site.BaseURL, ep.ID)

	return b.String()
}

// NotFound is the Markdown body for unknown episode ids.
func NotFound() string {
	return "# Episode Not Found\n\nThe requested episode could not be found.\n"
}

// LLMText renders the plaintext site overview served at /llm.txt.
func LLMText(site config.Site, meta model.PodcastMeta, episodeCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", site.Title)
	b.WriteString("> LLM-optimized documentation for AI assistants and language models\n\n")
	fmt.Fprintf(&b, "## Overview\n\n%s\n\n", site.Description)

	b.WriteString("## Quick Access\n\n| Resource | URL |\n|----------|-----|\n")
	fmt.Fprintf(&b, "| Website | %s |\n", site.BaseURL)
	fmt.Fprintf(&b, "| Episode Index | %s/episodes.md |\n", site.BaseURL)
	fmt.Fprintf(&b, "| RSS Feed | %s |\n", meta.FeedURL)
	fmt.Fprintf(&b, "| Sitemap | %s/sitemap.xml |\n\n", site.BaseURL)

	fmt.Fprintf(&b, "## Credits\n\n")
	fmt.Fprintf(&b, "- Host: %s (%s) — %s\n", site.HostName, site.HostTitle, site.HostTwitter)
	fmt.Fprintf(&b, "- Producer: %s — %s\n", site.ProducerName, site.ProducerURL)
	fmt.Fprintf(&b, "- Episodes available: %d\n\n", episodeCount)

	b.WriteString("## URL Structure\n\n")
	b.WriteString("- Homepage: `/`\n")
	b.WriteString("- Episode page: `/episode/{episode-slug}`\n")
	b.WriteString("- Episode index (markdown): `/episodes.md`\n")
	b.WriteString("- Episode detail (markdown): `/episode/{episode-slug}.md`\n\n")

	b.WriteString("## Structured Data\n\n")
	b.WriteString("- Homepage embeds a JSON-LD PodcastSeries record.\n")
	b.WriteString("- Episode pages embed JSON-LD PodcastEpisode records with chapters, guests and media.\n\n")

	b.WriteString("## Listening Platforms\n\n")
	fmt.Fprintf(&b, "- Spotify: %s\n- Apple Podcasts: %s\n- YouTube: %s\n", site.SpotifyURL, site.AppleURL, site.YouTubeURL)

	return b.String()
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
