// Package model defines shared data structures.
package model

// Episode is one feed item. All fields are set once during extraction and
// never mutated afterwards; "updating" an episode means re-extracting the
// whole feed.
type Episode struct {
	ID          string // URL-safe slug derived from the title
	GUID        string // raw feed GUID, empty if absent
	Title       string
	Description string // raw HTML from the feed, not sanitized here
	PubDate     string // original feed date string, not reparsed
	AudioURL    string
	AudioSize   int64 // bytes; meaningful only when HasAudioSize
	ImageURL    string
	Duration    string // raw "H:MM:SS" or "MM:SS" from the feed
	Link        string

	// iTunes metadata. Season and Episode use 0 for "not specified";
	// the feed never carries a legitimate zero for either.
	Season      int
	Episode     int
	EpisodeType string // "full", "trailer" or "bonus"; empty otherwise
	Explicit    bool

	HasAudioSize bool

	// Content recovered from the free-text description.
	Chapters []Chapter
	Guest    *Guest
	Keywords []string
}

// Chapter is a timestamped segment recovered from show notes. Chapters keep
// the order they appear in the description, which is chronological order.
type Chapter struct {
	Time    string // the matched timestamp text, e.g. "03:23"
	Seconds int    // literal interpretation of Time
	Title   string
	Emoji   string // single leading emoji if present
}

// Guest is the episode guest recovered from show notes, at most one per
// episode.
type Guest struct {
	Name  string
	Title string
	Links []GuestLink
}

// GuestLink is one social link from the "where to find" section of the
// show notes. Platform is the label exactly as it appeared.
type GuestLink struct {
	Platform string
	URL      string
}

// PodcastMeta is the channel-level record, derived from the part of the
// feed document preceding the first item.
type PodcastMeta struct {
	Title       string
	Description string
	Author      string
	Email       string
	Copyright   string
	Language    string
	Category    string
	Subcategory string
	ImageURL    string
	WebsiteURL  string
	FeedURL     string
	Explicit    bool
}
