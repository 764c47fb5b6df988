package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/summarize"
)

func TestComposeOfficialBadge(t *testing.T) {
	item := news.Item{
		Title: "Galatasaray transferi duyurdu",
		URL:   "https://www.ntvspor.net/haber/1",
	}
	summary := summarize.Summary{Sentences: []string{"Sözleşme üç yıllık."}}

	text := Compose(item, news.CategoryOfficial, summary)

	require.True(t, strings.HasPrefix(text, "RESMİ | "))
	require.Contains(t, text, "Sözleşme üç yıllık.")
	require.Contains(t, text, "Kaynak: ntvspor.net")
	require.Contains(t, text, "#Galatasaray")
	require.LessOrEqual(t, len([]rune(text)), MaxLength)
}

func TestComposeRumorBadge(t *testing.T) {
	item := news.Item{Title: "Ayrılık iddiası", URL: "https://example.com/2"}

	text := Compose(item, news.CategoryRumor, summarize.Summary{})
	require.True(t, strings.HasPrefix(text, "SÖYLENTİ | "))
}

func TestComposeUnknownHasNoBadge(t *testing.T) {
	item := news.Item{Title: "Derbi golsüz bitti", URL: "https://example.com/3"}

	text := Compose(item, news.CategoryUnknown, summarize.Summary{})
	require.False(t, strings.HasPrefix(text, "RESMİ"))
	require.False(t, strings.HasPrefix(text, "SÖYLENTİ"))
	require.True(t, strings.HasPrefix(text, "Derbi golsüz bitti"))
}

func TestComposeFitsBudgetWithLongSummary(t *testing.T) {
	item := news.Item{
		Title: "Çok uzun bir transfer haberi başlığı ile ilgili gelişme",
		URL:   "https://example.com/4",
	}
	long := strings.Repeat("Bu cümle metni doldurmak için yazılmıştır. ", 15)
	summary := summarize.Summary{Sentences: []string{strings.TrimSpace(long)}}

	text := Compose(item, news.CategoryOfficial, summary)

	require.LessOrEqual(t, len([]rune(text)), MaxLength)
	// The footer survives truncation intact.
	require.Contains(t, text, "Kaynak: example.com")
}

func TestHashtags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			"team match",
			"Fenerbahçe yeni hocasını açıkladı",
			[]string{"#Fenerbahçe"},
		},
		{
			"multiple teams capped at three",
			"Galatasaray, Fenerbahçe, Beşiktaş ve Trabzonspor zirvede",
			[]string{"#Galatasaray", "#Fenerbahçe", "#Beşiktaş"},
		},
		{
			"fallback to generic tags",
			"Süper Lig'de hafta sonu programı",
			[]string{"#futbol", "#transfer"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Hashtags(tt.text))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "kısa", Truncate("kısa", 10))

	// A sentence end past the midpoint wins over a plain cut.
	got := Truncate("Birinci cümle burada bitti. Sonra devam eden uzun bir anlatım", 40)
	require.Equal(t, "Birinci cümle burada bitti.", got)

	// No sentence boundary: cut at a word and mark the cut.
	got = Truncate("kelime kelime kelime kelime", 15)
	require.True(t, strings.HasSuffix(got, "…"))
	require.LessOrEqual(t, len([]rune(got)), 16)
	require.NotContains(t, got, "kelim…")
}
