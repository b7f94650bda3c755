// Package schema builds schema.org JSON-LD records for the site's pages.
// The records are plain maps marshalled into <script type="application/ld+json">
// tags; optional fields are simply left out of the map.
package schema

import (
	"fmt"

	"github.com/elevacare/podsite/internal/config"
	"github.com/elevacare/podsite/internal/feed"
	"github.com/elevacare/podsite/internal/markdown"
	"github.com/elevacare/podsite/internal/model"
)

// PodcastSeries builds the series-level record for the home page.
func PodcastSeries(site config.Site, feedURL string) map[string]any {
	return map[string]any{
		"webFeed":             feedURL,
		"@context":            "https://schema.org",
		"@type":               "PodcastSeries",
		"@id":                 site.BaseURL,
		"name":                site.Title,
		"description":         site.Description,
		"url":                 site.BaseURL,
		"inLanguage":          "en-US",
		"isAccessibleForFree": true,
		"accessMode":          []string{"auditory", "textual"},
		"image": map[string]any{
			"@type":  "ImageObject",
			"url":    site.ShareImage,
			"width":  "1200",
			"height": "630",
		},
		"sameAs": []string{site.SpotifyURL, site.AppleURL, site.YouTubeURL, site.BaseURL},
		"author": map[string]any{
			"@type":       "Person",
			"name":        site.HostName,
			"jobTitle":    site.HostTitle,
			"description": site.HostDescription,
			"sameAs":      []string{site.YouTubeURL, site.HostTwitter},
		},
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  site.ProducerName,
			"url":   site.ProducerURL,
		},
	}
}

// PodcastEpisode builds the episode-level record for an episode page.
func PodcastEpisode(site config.Site, ep model.Episode) map[string]any {
	episodeURL := site.BaseURL + "/episode/" + ep.ID
	isoDuration := feed.ISO8601Duration(ep.Duration)

	record := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "PodcastEpisode",
		"@id":                 episodeURL,
		"name":                ep.Title,
		"description":         markdown.Summary(ep.Description, 300),
		"datePublished":       ep.PubDate,
		"url":                 episodeURL,
		"inLanguage":          "en-US",
		"isAccessibleForFree": true,
		"accessMode":          []string{"auditory", "textual"},
		"partOfSeries": map[string]any{
			"@type": "PodcastSeries",
			"@id":   site.BaseURL,
			"name":  site.Title,
			"url":   site.BaseURL,
		},
		"creator": map[string]any{
			"@type":    "Person",
			"name":     site.HostName,
			"jobTitle": site.HostTitle,
			"sameAs":   []string{site.HostTwitter, site.YouTubeURL},
		},
		"subjectOf": map[string]any{
			"@type": "WebPage",
			"url":   episodeURL + ".md",
			"name":  ep.Title + " - Show Notes",
		},
	}

	imageURL := ep.ImageURL
	if imageURL == "" {
		imageURL = site.ShareImage
	}
	record["image"] = map[string]any{
		"@type":  "ImageObject",
		"url":    imageURL,
		"width":  "1200",
		"height": "630",
	}

	if isoDuration != "" {
		record["duration"] = isoDuration
		record["timeRequired"] = isoDuration
	}

	audio := map[string]any{
		"@type":          "AudioObject",
		"contentUrl":     ep.AudioURL,
		"encodingFormat": "audio/mpeg",
	}
	if isoDuration != "" {
		audio["duration"] = isoDuration
	}
	if ep.HasAudioSize {
		audio["contentSize"] = fmt.Sprintf("%dMB", ep.AudioSize/1024/1024)
	}
	record["associatedMedia"] = audio

	if ep.Episode > 0 {
		record["episodeNumber"] = ep.Episode
	}
	if ep.Season > 0 {
		record["partOfSeason"] = map[string]any{
			"@type":        "PodcastSeason",
			"seasonNumber": ep.Season,
		}
	}

	if len(ep.Keywords) > 0 {
		about := make([]map[string]any, 0, len(ep.Keywords))
		for _, k := range ep.Keywords {
			about = append(about, map[string]any{"@type": "Thing", "name": k})
		}
		record["about"] = about
	}

	if ep.Guest != nil {
		contributor := map[string]any{
			"@type": "Person",
			"name":  ep.Guest.Name,
		}
		if len(ep.Guest.Links) > 0 {
			sameAs := make([]string, 0, len(ep.Guest.Links))
			for _, l := range ep.Guest.Links {
				sameAs = append(sameAs, l.URL)
			}
			contributor["sameAs"] = sameAs
		}
		record["contributor"] = contributor
	}

	if len(ep.Chapters) > 0 {
		parts := make([]map[string]any, 0, len(ep.Chapters))
		for i, ch := range ep.Chapters {
			parts = append(parts, map[string]any{
				"@type":       "Clip",
				"name":        ch.Title,
				"startOffset": ch.Seconds,
				"position":    i + 1,
				"url":         fmt.Sprintf("%s#chapter-%d", episodeURL, i+1),
			})
		}
		record["hasPart"] = parts
	}

	return record
}
