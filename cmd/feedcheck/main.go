// Command feedcheck cross-checks the site's tolerant feed extractor
// against a conventional RSS parser. The extractor is deliberately loose,
// so this tool exists to spot the opposite failure mode: items the loose
// scanners silently drop or mangle when the upstream feed changes shape.
//
// Usage:
//
//	feedcheck [-feed URL]
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/elevacare/podsite/internal/feed"
	"github.com/elevacare/podsite/internal/model"
	"github.com/mmcdole/gofeed"
)

func main() {
	feedURL := flag.String("feed", "https://anchor.fm/s/fb6b5228/podcast/rss", "feed URL to check")
	flag.Parse()

	if err := run(*feedURL); err != nil {
		fmt.Fprintf(os.Stderr, "feedcheck: %v\n", err)
		os.Exit(1)
	}
}

func run(feedURL string) error {
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(feedURL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", feedURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", feedURL, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	doc := string(raw)

	episodes := feed.ParseEpisodes(doc)
	meta := feed.ParsePodcastMeta(doc)

	parsed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return fmt.Errorf("gofeed parse: %w", err)
	}

	fmt.Printf("feed: %s\n", feedURL)
	fmt.Printf("channel title: extractor=%q gofeed=%q\n", meta.Title, parsed.Title)
	fmt.Printf("items: extractor=%d gofeed=%d\n", len(episodes), len(parsed.Items))

	problems := compare(episodes, parsed.Items)
	for _, p := range problems {
		fmt.Printf("  ! %s\n", p)
	}
	if len(problems) == 0 {
		fmt.Println("no disagreements")
		return nil
	}
	return fmt.Errorf("%d disagreement(s)", len(problems))
}

// compare lines the two parses up by title and reports items one side has
// and the other does not, plus enclosure mismatches.
func compare(episodes []model.Episode, items []*gofeed.Item) []string {
	var problems []string

	byTitle := make(map[string]model.Episode, len(episodes))
	for _, ep := range episodes {
		byTitle[strings.TrimSpace(ep.Title)] = ep
	}

	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		ep, ok := byTitle[title]
		if !ok {
			if len(item.Enclosures) == 0 {
				// The extractor drops enclosure-less items on purpose.
				continue
			}
			problems = append(problems, fmt.Sprintf("item %q: present in gofeed, dropped by extractor", title))
			continue
		}
		if len(item.Enclosures) > 0 && item.Enclosures[0].URL != ep.AudioURL {
			problems = append(problems, fmt.Sprintf("item %q: audio URL mismatch (%s vs %s)",
				title, ep.AudioURL, item.Enclosures[0].URL))
		}
		delete(byTitle, title)
	}

	for title := range byTitle {
		problems = append(problems, fmt.Sprintf("item %q: extracted but not seen by gofeed", title))
	}
	return problems
}
