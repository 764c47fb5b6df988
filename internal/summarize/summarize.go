// Package summarize adapts an extractive sentence-ranking backend to the
// pipeline. The backend is a pure function from sentences to a salience
// ordering; everything else (splitting, degenerate inputs, fallback) lives
// here.
package summarize

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"
)

// Summary is the derived per-run summary of one item.
type Summary struct {
	Fingerprint string
	Sentences   []string
	Language    string
}

// Ranker ranks sentences by salience and returns their indices in descending
// order of importance. It must be deterministic for a given input.
type Ranker interface {
	Rank(sentences []string, language string) ([]int, error)
}

// Adapter wraps a Ranker with the summarization contract used by the
// pipeline.
type Adapter struct {
	ranker Ranker
}

func NewAdapter(r Ranker) *Adapter {
	return &Adapter{ranker: r}
}

// Summarize selects up to maxSentences representative sentences from text.
// Empty or whitespace-only text yields an empty sentence list, not an error.
// When the ranker fails the first maxSentences sentences are returned
// verbatim and a warning is logged; summarization failure never fails the
// run.
func (a *Adapter) Summarize(text, language string, maxSentences int) Summary {
	s := Summary{Language: language}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return s
	}

	// Ranking fewer candidates than slots is meaningless; keep original order.
	if len(sentences) <= maxSentences {
		s.Sentences = sentences
		return s
	}

	indices, err := a.ranker.Rank(sentences, language)
	if err != nil || len(indices) == 0 {
		slog.Warn("summarizer backend failed, falling back to leading sentences", "error", err)
		s.Sentences = sentences[:maxSentences]
		return s
	}

	picked := indices
	if len(picked) > maxSentences {
		picked = picked[:maxSentences]
	}
	// Present selected sentences in their original order.
	ordered := append([]int(nil), picked...)
	sort.Ints(ordered)

	s.Sentences = make([]string, 0, len(ordered))
	for _, idx := range ordered {
		if idx >= 0 && idx < len(sentences) {
			s.Sentences = append(s.Sentences, sentences[idx])
		}
	}
	if len(s.Sentences) == 0 {
		s.Sentences = sentences[:maxSentences]
	}
	return s
}

// SplitSentences breaks text into trimmed sentences on terminal punctuation.
// Decimal points and common abbreviations do not end a sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var b strings.Builder
	runes := []rune(text)

	flush := func() {
		sent := strings.TrimSpace(b.String())
		b.Reset()
		if sent != "" {
			sentences = append(sentences, sent)
		}
	}

	for i, r := range runes {
		b.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Not a boundary inside numbers like "1.5" or ordinals like "19.".
		if r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

// ShortTitle trims a headline to at most maxWords words, preferring a natural
// break at a separator.
func ShortTitle(title string, maxWords int) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" - ", " | ", " / "} {
		title = strings.ReplaceAll(title, sep, " ")
	}
	words := strings.Fields(title)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	for i := 0; i < maxWords; i++ {
		if strings.HasSuffix(words[i], ":") || strings.HasSuffix(words[i], "-") {
			return strings.Join(words[:i+1], " ")
		}
	}
	return strings.Join(words[:maxWords], " ")
}
