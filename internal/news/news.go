// Package news holds the NewsItem model and the content fingerprint that
// identifies a news event across fetches.
package news

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Item is a single fetched news item. Items are created by the fetch stage
// and never mutated afterwards; only a PostRecord outlives the run.
type Item struct {
	SourceID    string
	URL         string
	Title       string
	Body        string
	Language    string
	PublishedAt time.Time
	FetchedAt   time.Time
	Fingerprint string
}

// Category of a classified item.
type Category string

const (
	CategoryOfficial Category = "official"
	CategoryRumor    Category = "rumor"
	CategoryUnknown  Category = "unknown"
)

// Query parameters that carry tracking state and must not influence identity.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"source":       true,
	"campaign":     true,
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases, strips combining accents, and collapses
// whitespace. Classification and fingerprinting both go through it so that
// "RESMÎ" and "resmi" score the same.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeURL lowercases the location, drops tracking parameters and the
// fragment, and keeps the remaining query in lexical order.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if trackingParams[strings.ToLower(key)] {
			q.Del(key)
		}
	}
	if len(q) == 0 {
		u.RawQuery = ""
	} else {
		keys := make([]string, 0, len(q))
		for key := range q {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var parts []string
		for _, key := range keys {
			for _, v := range q[key] {
				parts = append(parts, key+"="+v)
			}
		}
		u.RawQuery = strings.Join(parts, "&")
	}

	return u.String()
}

// Fingerprint derives the stable identity hash of a news event from its
// source, normalized URL, and normalized title. Two items with the same
// fingerprint are the same logical event regardless of when they were fetched.
func Fingerprint(sourceID, rawURL, title string) string {
	key := NormalizeText(sourceID) + "|" + NormalizeURL(rawURL) + "|" + NormalizeText(title)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// Domain extracts the bare host of a URL for source attribution.
func Domain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// SortItems orders merged fetch results deterministically: published_at
// ascending, then source_id. The admit tie-break depends on this ordering.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.Before(items[j].PublishedAt)
		}
		return items[i].SourceID < items[j].SourceID
	})
}
