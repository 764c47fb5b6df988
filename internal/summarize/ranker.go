package summarize

import (
	"errors"
	"sort"
	"strings"

	"github.com/futbot/futbot/internal/news"
)

// Turkish stopwords excluded from frequency scoring, plus football terms so
// common that they carry no salience in this domain.
var turkishStopwords = map[string]bool{
	"bir": true, "bu": true, "şu": true, "o": true, "ve": true, "ile": true,
	"için": true, "da": true, "de": true, "den": true, "dan": true,
	"olan": true, "oldu": true, "olur": true, "olacak": true, "var": true,
	"yok": true, "gibi": true, "kadar": true, "daha": true, "en": true,
	"çok": true, "az": true, "ama": true, "ancak": true, "ise": true,
	"futbol": true, "maç": true, "takım": true, "sezon": true, "lig": true,
}

// FrequencyRanker is the default extractive backend: a sentence scores by the
// summed document frequency of its content words, normalized by length.
type FrequencyRanker struct{}

var errNoContent = errors.New("no rankable content words")

// Rank implements Ranker.
func (FrequencyRanker) Rank(sentences []string, language string) ([]int, error) {
	freq := make(map[string]float64)
	tokenized := make([][]string, len(sentences))

	for i, sent := range sentences {
		words := contentWords(sent)
		tokenized[i] = words
		for _, w := range words {
			freq[w]++
		}
	}
	if len(freq) == 0 {
		return nil, errNoContent
	}

	scores := make([]float64, len(sentences))
	for i, words := range tokenized {
		if len(words) == 0 {
			continue
		}
		var sum float64
		for _, w := range words {
			sum += freq[w]
		}
		scores[i] = sum / float64(len(words))
	}

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = i
	}
	// Stable on index so equal scores keep document order, which keeps the
	// ranking deterministic.
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})
	return indices, nil
}

func contentWords(sentence string) []string {
	var words []string
	for _, w := range strings.Fields(news.NormalizeText(sentence)) {
		w = strings.Trim(w, ".,:;!?\"'()[]")
		if len([]rune(w)) <= 2 || turkishStopwords[w] {
			continue
		}
		words = append(words, w)
	}
	return words
}
