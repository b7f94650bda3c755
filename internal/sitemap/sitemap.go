// Package sitemap generates the sitemap.xml document.
package sitemap

import (
	"encoding/xml"
	"time"

	"github.com/elevacare/podsite/internal/model"
)

// URLSet is the root of a sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL is a single sitemap entry.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

// episodeLastMod converts a feed pubDate into a sitemap lastmod date when
// it parses; otherwise the entry carries no lastmod.
func episodeLastMod(pubDate string) string {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, pubDate); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// Build generates the sitemap for the site: the homepage, the
// machine-readable endpoints, and one entry per episode page plus its
// Markdown mirror.
func Build(baseURL string, episodes []model.Episode, now time.Time) ([]byte, error) {
	today := now.Format("2006-01-02")
	doc := URLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []URL{
			{Loc: baseURL, LastMod: today, ChangeFreq: "daily", Priority: 1.0},
			{Loc: baseURL + "/llm.txt", LastMod: today, ChangeFreq: "weekly", Priority: 0.5},
			{Loc: baseURL + "/episodes.md", LastMod: today, ChangeFreq: "daily", Priority: 0.7},
		},
	}

	for _, ep := range episodes {
		lastMod := episodeLastMod(ep.PubDate)
		doc.URLs = append(doc.URLs, URL{
			Loc:        baseURL + "/episode/" + ep.ID,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   0.8,
		})
	}
	for _, ep := range episodes {
		doc.URLs = append(doc.URLs, URL{
			Loc:        baseURL + "/episode/" + ep.ID + ".md",
			LastMod:    episodeLastMod(ep.PubDate),
			ChangeFreq: "weekly",
			Priority:   0.6,
		})
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}
