// Package classify labels news items as official, rumor, or unknown using
// weighted keyword tables. The tables and thresholds come from configuration
// so the rules can be tuned without code changes.
package classify

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/futbot/futbot/internal/news"
)

// Term is a single scored keyword or phrase.
type Term struct {
	Text   string  `yaml:"text"`
	Weight float64 `yaml:"weight"`
}

// Keywords holds the tunable classification rules. Passed explicitly into
// Classify; there is no hidden global table.
type Keywords struct {
	Official []Term `yaml:"official"`
	Rumor    []Term `yaml:"rumor"`

	// Domains whose items get an official boost (club and federation sites).
	OfficialDomains []string `yaml:"official_domains"`
	// DomainBoost is added to the score when the item URL matches one of
	// OfficialDomains.
	DomainBoost float64 `yaml:"domain_boost"`

	// Score at or above which an item is official; at or below the negated
	// rumor threshold it is a rumor. The band in between is unknown.
	OfficialThreshold float64 `yaml:"official_threshold"`
	RumorThreshold    float64 `yaml:"rumor_threshold"`
}

// Classification is the derived label for one item. Recomputed every run,
// never persisted.
type Classification struct {
	Fingerprint  string
	Category     news.Category
	Score        float64
	MatchedTerms []string
}

// LoadKeywords reads the keyword tables from a YAML file.
func LoadKeywords(path string) (*Keywords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var kw Keywords
	if err := yaml.NewDecoder(f).Decode(&kw); err != nil {
		return nil, fmt.Errorf("decode keywords config: %w", err)
	}
	kw.applyDefaults()
	return &kw, nil
}

func (k *Keywords) applyDefaults() {
	if k.OfficialThreshold == 0 {
		k.OfficialThreshold = 0.6
	}
	if k.RumorThreshold == 0 {
		k.RumorThreshold = 0.5
	}
	if k.DomainBoost == 0 {
		k.DomainBoost = 0.8
	}
}

// DefaultKeywords returns the built-in Turkish/English tables. Used when no
// keywords file is configured and by tests that need a realistic table.
func DefaultKeywords() *Keywords {
	kw := &Keywords{
		Official: []Term{
			{Text: "resmi", Weight: 0.2},
			{Text: "resmen", Weight: 0.3},
			{Text: "açıklama", Weight: 0.2},
			{Text: "duyurdu", Weight: 0.2},
			{Text: "açıkladı", Weight: 0.2},
			{Text: "imzaladı", Weight: 0.3},
			{Text: "kesinleşti", Weight: 0.3},
			{Text: "basın açıklaması", Weight: 0.3},
			{Text: "confirmed", Weight: 0.2},
			{Text: "announced", Weight: 0.2},
			{Text: "official", Weight: 0.2},
			{Text: "officially", Weight: 0.3},
			{Text: "press release", Weight: 0.3},
			{Text: "club statement", Weight: 0.3},
		},
		Rumor: []Term{
			{Text: "iddia", Weight: 0.3},
			{Text: "söylenti", Weight: 0.3},
			{Text: "dedikodu", Weight: 0.3},
			{Text: "iddiaya göre", Weight: 0.3},
			{Text: "kaynaklara göre", Weight: 0.3},
			{Text: "kulislerde", Weight: 0.3},
			{Text: "olabilir", Weight: 0.2},
			{Text: "ihtimal", Weight: 0.2},
			{Text: "rumour", Weight: 0.3},
			{Text: "rumor", Weight: 0.3},
			{Text: "reportedly", Weight: 0.3},
			{Text: "allegedly", Weight: 0.3},
			{Text: "sources say", Weight: 0.3},
			{Text: "speculation", Weight: 0.3},
			{Text: "unconfirmed", Weight: 0.3},
		},
		OfficialDomains: []string{
			"uefa.com", "fifa.com", "tff.org",
			"galatasaray.org", "fenerbahce.org", "besiktas.com.tr",
			"trabzonspor.org.tr",
		},
	}
	kw.applyDefaults()
	return kw
}

// Classify scores an item against the keyword tables. Deterministic: the same
// text and tables always produce the same classification.
func Classify(item news.Item, kw *Keywords) Classification {
	text := news.NormalizeText(item.Title + " " + item.Body)

	var score float64
	var matched []string

	for _, t := range kw.Official {
		if containsTerm(text, news.NormalizeText(t.Text)) {
			score += t.Weight
			matched = append(matched, t.Text)
		}
	}
	for _, t := range kw.Rumor {
		if containsTerm(text, news.NormalizeText(t.Text)) {
			score -= t.Weight
			matched = append(matched, t.Text)
		}
	}

	domain := news.Domain(item.URL)
	for _, d := range kw.OfficialDomains {
		if domain == d {
			score += kw.DomainBoost
			break
		}
	}

	sort.Strings(matched)

	category := news.CategoryUnknown
	switch {
	case score >= kw.OfficialThreshold:
		category = news.CategoryOfficial
	case score <= -kw.RumorThreshold:
		category = news.CategoryRumor
	}

	return Classification{
		Fingerprint:  item.Fingerprint,
		Category:     category,
		Score:        score,
		MatchedTerms: matched,
	}
}

// containsTerm matches phrases and longer tokens as substrings, which also
// catches Turkish suffixed forms ("iddiaya", "resmileşti"). Tokens of three
// characters or fewer require a whole-word match so they do not fire inside
// unrelated words.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	if strings.Contains(term, " ") || len(term) > 3 {
		return strings.Contains(text, term)
	}
	for _, word := range strings.Fields(text) {
		if word == term || strings.TrimRight(word, ".,:;!?\"'") == term {
			return true
		}
	}
	return false
}
