// Package post composes the final text of a social post: badge, short
// title, summary sentences, source footer, and hashtags, all within the
// platform's character budget.
package post

import (
	"strings"

	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/summarize"
)

const (
	// MaxLength is the platform character budget per post.
	MaxLength = 280

	officialBadge = "RESMİ"
	rumorBadge    = "SÖYLENTİ"

	shortTitleWords = 8
)

// Team hashtags, matched against the normalized post text in order so tag
// selection is deterministic.
var teamHashtags = []struct {
	team string
	tag  string
}{
	{"galatasaray", "#Galatasaray"},
	{"fenerbahce", "#Fenerbahçe"},
	{"besiktas", "#Beşiktaş"},
	{"trabzonspor", "#Trabzonspor"},
	{"real madrid", "#RealMadrid"},
	{"barcelona", "#Barcelona"},
	{"liverpool", "#Liverpool"},
	{"arsenal", "#Arsenal"},
}

var defaultHashtags = []string{"#futbol", "#transfer"}

// Compose renders the full post text for an item.
func Compose(item news.Item, category news.Category, summary summarize.Summary) string {
	var b strings.Builder

	switch category {
	case news.CategoryOfficial:
		b.WriteString(officialBadge + " | ")
	case news.CategoryRumor:
		b.WriteString(rumorBadge + " | ")
	}

	b.WriteString(summarize.ShortTitle(item.Title, shortTitleWords))

	body := strings.Join(summary.Sentences, " ")
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}

	footer := "\n\nKaynak: " + news.Domain(item.URL)
	tags := Hashtags(item.Title + " " + body)
	if len(tags) > 0 {
		footer += "\n" + strings.Join(tags, " ")
	}

	return fit(b.String(), footer, MaxLength)
}

// Hashtags picks team tags matching the text, falling back to the generic
// football tags. At most three tags so they never dominate the post.
func Hashtags(text string) []string {
	normalized := news.NormalizeText(text)

	var tags []string
	for _, entry := range teamHashtags {
		if strings.Contains(normalized, entry.team) {
			tags = append(tags, entry.tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, defaultHashtags...)
	}
	if len(tags) > 3 {
		tags = tags[:3]
	}
	return tags
}

// fit truncates the main text so that text+footer stays within budget. The
// footer is never truncated; the break prefers a sentence boundary, then a
// word boundary.
func fit(text, footer string, budget int) string {
	if runeLen(text+footer) <= budget {
		return text + footer
	}

	avail := budget - runeLen(footer) - 1 // room for the ellipsis rune
	if avail <= 0 {
		return footer
	}
	return Truncate(text, avail) + footer
}

// Truncate cuts text to at most maxRunes runes, appending an ellipsis. Cuts
// at a sentence end when one lands in the second half of the budget,
// otherwise at a word boundary.
func Truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	head := string(runes[:maxRunes])

	if idx := strings.LastIndexAny(head, ".!?"); idx > len(head)/2 {
		return strings.TrimSpace(head[:idx+1])
	}
	if idx := strings.LastIndexAny(head, " \n"); idx > 0 {
		head = head[:idx]
	}
	return strings.TrimSpace(head) + "…"
}

func runeLen(s string) int {
	return len([]rune(s))
}
