// Package feed provides podcast feed fetching and extraction.
//
// The extractor is deliberately not an XML parser. The upstream feed is
// approximately well-formed RSS with embedded HTML in the descriptions, and
// a strict parser would reject documents the site must still render. Each
// field is recovered by its own tolerant scanner; anything that does not
// match is simply absent.
package feed

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/elevacare/podsite/internal/model"
)

var (
	itemRe = regexp.MustCompile(`(?s)<item>(.*?)</item>`)

	// Text fields prefer the CDATA-wrapped form, then plain inline text.
	titleCDATARe = regexp.MustCompile(`<title><!\[CDATA\[(.*?)\]\]></title>`)
	titlePlainRe = regexp.MustCompile(`<title>(.*?)</title>`)
	descCDATARe  = regexp.MustCompile(`(?s)<description><!\[CDATA\[(.*?)\]\]></description>`)
	descPlainRe  = regexp.MustCompile(`(?s)<description>(.*?)</description>`)

	pubDateRe   = regexp.MustCompile(`<pubDate>(.*?)</pubDate>`)
	linkRe      = regexp.MustCompile(`<link>(.*?)</link>`)
	guidRe      = regexp.MustCompile(`<guid[^>]*>(.*?)</guid>`)
	durationRe  = regexp.MustCompile(`<itunes:duration>(.*?)</itunes:duration>`)
	imageRe     = regexp.MustCompile(`(?i)<itunes:image[^>]*href="([^"]*)"`)
	seasonRe    = regexp.MustCompile(`<itunes:season>(\d+)</itunes:season>`)
	episodeRe   = regexp.MustCompile(`<itunes:episode>(\d+)</itunes:episode>`)
	typeRe      = regexp.MustCompile(`<itunes:episodeType>(full|trailer|bonus)</itunes:episodeType>`)
	keywordsRe  = regexp.MustCompile(`<itunes:keywords>(.*?)</itunes:keywords>`)
	authorRe    = regexp.MustCompile(`<itunes:author>(.*?)</itunes:author>`)
	emailRe     = regexp.MustCompile(`<itunes:email>(.*?)</itunes:email>`)
	copyrightRe = regexp.MustCompile(`<copyright>(.*?)</copyright>`)
	languageRe  = regexp.MustCompile(`<language>(.*?)</language>`)
	categoryRe  = regexp.MustCompile(`<itunes:category[^>]*text="([^"]*)"`)
	// Subcategory only counts when a category tag is nested inside another.
	subcategoryRe = regexp.MustCompile(`(?s)<itunes:category[^>]*text="[^"]*"[^>]*>\s*<itunes:category[^>]*text="([^"]*)"`)
	feedLinkRe    = regexp.MustCompile(`(?i)<atom:link[^>]*href="([^"]*)"[^>]*rel="self"`)

	enclosureTagRe = regexp.MustCompile(`(?i)<enclosure[^>]*>`)
	urlAttrRe      = regexp.MustCompile(`url="([^"]*)"`)
	lengthAttrRe   = regexp.MustCompile(`length="(\d+)"`)
)

// firstMatch returns the first capture of the first pattern that matches.
func firstMatch(s string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// ParseEpisodes extracts all episodes from a raw feed document, preserving
// feed order. Item blocks missing a title or an enclosure URL are dropped;
// malformed optional fields never abort the run.
func ParseEpisodes(xmlText string) []model.Episode {
	var episodes []model.Episode
	for _, m := range itemRe.FindAllStringSubmatch(xmlText, -1) {
		if ep, ok := parseItem(m[1]); ok {
			episodes = append(episodes, ep)
		}
	}
	return episodes
}

func parseItem(item string) (model.Episode, bool) {
	title := firstMatch(item, titleCDATARe, titlePlainRe)
	audioURL, audioSize, hasSize := parseEnclosure(item)
	if title == "" || audioURL == "" {
		return model.Episode{}, false
	}

	description := firstMatch(item, descCDATARe, descPlainRe)

	ep := model.Episode{
		ID:           Slugify(title),
		GUID:         firstMatch(item, guidRe),
		Title:        title,
		Description:  description,
		PubDate:      firstMatch(item, pubDateRe),
		AudioURL:     audioURL,
		AudioSize:    audioSize,
		HasAudioSize: hasSize,
		ImageURL:     firstMatch(item, imageRe),
		Duration:     firstMatch(item, durationRe),
		Link:         firstMatch(item, linkRe),
		EpisodeType:  firstMatch(item, typeRe),
		Explicit:     parseExplicit(item),
		Chapters:     ParseChapters(description),
		Guest:        ParseGuest(description),
		Keywords:     parseKeywords(item),
	}
	if s := firstMatch(item, seasonRe); s != "" {
		ep.Season, _ = strconv.Atoi(s)
	}
	if e := firstMatch(item, episodeRe); e != "" {
		ep.Episode, _ = strconv.Atoi(e)
	}
	return ep, true
}

// parseEnclosure recovers the audio URL and optional byte size from the
// first enclosure tag, tolerating any attribute order.
func parseEnclosure(item string) (url string, size int64, hasSize bool) {
	tag := enclosureTagRe.FindString(item)
	if tag == "" {
		return "", 0, false
	}
	if m := urlAttrRe.FindStringSubmatch(tag); m != nil {
		url = m[1]
	}
	if m := lengthAttrRe.FindStringSubmatch(tag); m != nil {
		if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			return url, n, true
		}
	}
	return url, 0, false
}

func parseExplicit(s string) bool {
	return strings.Contains(s, "<itunes:explicit>true</itunes:explicit>") ||
		strings.Contains(s, "<itunes:explicit>yes</itunes:explicit>")
}

func parseKeywords(item string) []string {
	raw := firstMatch(item, keywordsRe)
	if raw == "" {
		return nil
	}
	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// ParsePodcastMeta extracts the channel-level record from the portion of
// the document preceding the first item. FeedURL is left empty when the
// document carries no self link; the caller supplies its configured URL.
func ParsePodcastMeta(xmlText string) model.PodcastMeta {
	channel := xmlText
	if i := strings.Index(xmlText, "<item>"); i >= 0 {
		channel = xmlText[:i]
	}

	meta := model.PodcastMeta{
		Title:       firstMatch(channel, titleCDATARe, titlePlainRe),
		Description: firstMatch(channel, descCDATARe, descPlainRe),
		Author:      firstMatch(channel, authorRe),
		Email:       firstMatch(channel, emailRe),
		Copyright:   firstMatch(channel, copyrightRe),
		Language:    firstMatch(channel, languageRe),
		Category:    firstMatch(channel, categoryRe),
		Subcategory: firstMatch(channel, subcategoryRe),
		ImageURL:    firstMatch(channel, imageRe),
		WebsiteURL:  firstMatch(channel, linkRe),
		FeedURL:     firstMatch(channel, feedLinkRe),
		Explicit:    parseExplicit(channel),
	}
	if meta.Language == "" {
		meta.Language = "en"
	}
	return meta
}

var (
	slugStripRe  = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRe  = regexp.MustCompile(`\s+`)
	slugHyphenRe = regexp.MustCompile(`-+`)
)

// Slugify derives the URL-safe episode id from a title: lowercased,
// non-word characters stripped, whitespace runs collapsed to hyphens.
// Two different titles can normalize to the same slug; lookups resolve
// such collisions by feed order.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugHyphenRe.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

var entityRe = regexp.MustCompile(`&(?:amp|lt|gt|quot|#39|apos|nbsp);`)

var entities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&#39;":  "'",
	"&apos;": "'",
	"&nbsp;": " ",
}

// DecodeEntities replaces the fixed set of named HTML character references
// in a single left-to-right pass. The pass never rescans its own output,
// so "&amp;lt;" decodes to "&lt;", not "<". Anything outside the fixed set
// (numeric references included) passes through unchanged.
func DecodeEntities(s string) string {
	return entityRe.ReplaceAllStringFunc(s, func(m string) string {
		return entities[m]
	})
}

// chapterRe matches "(MM:SS) title" or "(H:MM:SS) title" up to the next
// line break or tag.
var chapterRe = regexp.MustCompile(`\((\d{1,2}:\d{2}(?::\d{2})?)\)\s*([^\n<]+)`)

// ParseChapters recovers chapter markers from a raw description. Matches
// are kept in document order, which the feed uses as chronological order;
// no re-sort by seconds happens here.
func ParseChapters(description string) []model.Chapter {
	var chapters []model.Chapter
	for _, m := range chapterRe.FindAllStringSubmatch(description, -1) {
		ts, title := m[1], m[2]
		emoji, rest := splitLeadingEmoji(title)
		chapters = append(chapters, model.Chapter{
			Time:    ts,
			Seconds: literalSeconds(ts),
			Title:   DecodeEntities(strings.TrimSpace(rest)),
			Emoji:   emoji,
		})
	}
	return chapters
}

// literalSeconds interprets "H:MM:SS" or "MM:SS" with no bounds checking;
// a minutes value of 90 is accepted as written.
func literalSeconds(ts string) int {
	parts := strings.Split(ts, ":")
	n := make([]int, len(parts))
	for i, p := range parts {
		n[i], _ = strconv.Atoi(p)
	}
	if len(n) == 3 {
		return n[0]*3600 + n[1]*60 + n[2]
	}
	return n[0]*60 + n[1]
}

// splitLeadingEmoji peels a single leading emoji (plus a trailing
// variation selector, if any) off a chapter title.
func splitLeadingEmoji(s string) (emoji, rest string) {
	r, size := utf8.DecodeRuneInString(s)
	if !isEmoji(r) {
		return "", s
	}
	emoji, rest = s[:size], s[size:]
	if r2, sz := utf8.DecodeRuneInString(rest); r2 == 0xFE0F {
		emoji += rest[:sz]
		rest = rest[sz:]
	}
	return emoji, rest
}

// isEmoji covers the pictograph blocks that actually occur in show notes.
// ASCII digits, '#' and '*' carry the Unicode Emoji property but are never
// chapter emoji.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, emoticons, transport, supplemental
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // stars, misc arrows
		return true
	}
	return false
}

var (
	guestIntroRe = regexp.MustCompile(`(?i)sits down with\s+\*\*([^*]+)\*\*`)
	guestLinksRe = regexp.MustCompile(`(?is)where to find[^:]*:\*\*</p>(.*?)(?:<p><strong>|$)`)
	// Closed platform vocabulary: this is not a general link scraper.
	guestLinkRe = regexp.MustCompile(`(?i)(LinkedIn|Instagram|ResearchGate|Twitter|X):\s*<a[^>]*href="([^"]+)"`)
)

// ParseGuest recovers at most one guest from a raw description. The
// trigger is the introductory phrase followed by a bold name span; without
// it there is no guest, which is not an error.
func ParseGuest(description string) *model.Guest {
	m := guestIntroRe.FindStringSubmatch(description)
	if m == nil {
		return nil
	}
	guest := &model.Guest{Name: DecodeEntities(m[1])}
	if section := guestLinksRe.FindStringSubmatch(description); section != nil {
		for _, lm := range guestLinkRe.FindAllStringSubmatch(section[1], -1) {
			guest.Links = append(guest.Links, model.GuestLink{Platform: lm[1], URL: lm[2]})
		}
	}
	return guest
}

// ClockDuration holds the components of a raw feed duration string.
type ClockDuration struct {
	Hours   int
	Minutes int
	Seconds int
}

// ParseClock splits a raw "H:MM:SS" or "MM:SS" duration into components.
// ok is false for anything else, including empty input.
func ParseClock(raw string) (d ClockDuration, ok bool) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ClockDuration{}, false
	}
	n := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ClockDuration{}, false
		}
		n[i] = v
	}
	if len(n) == 3 {
		return ClockDuration{Hours: n[0], Minutes: n[1], Seconds: n[2]}, true
	}
	return ClockDuration{Minutes: n[0], Seconds: n[1]}, true
}

// ISO8601Duration converts a raw feed duration into an ISO 8601 duration
// ("PT1H2M3S"). Unparseable input yields the empty string.
func ISO8601Duration(raw string) string {
	d, ok := ParseClock(raw)
	if !ok {
		return ""
	}
	if strings.Count(raw, ":") == 2 {
		return "PT" + strconv.Itoa(d.Hours) + "H" + strconv.Itoa(d.Minutes) + "M" + strconv.Itoa(d.Seconds) + "S"
	}
	return "PT" + strconv.Itoa(d.Minutes) + "M" + strconv.Itoa(d.Seconds) + "S"
}
