package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/futbot/futbot/internal/news"
)

func item(title, body, url string) news.Item {
	return news.Item{
		SourceID:    "test",
		URL:         url,
		Title:       title,
		Body:        body,
		Fingerprint: news.Fingerprint("test", url, title),
	}
}

func TestClassifyOfficial(t *testing.T) {
	kw := DefaultKeywords()

	it := item("Kulüp resmen imzaladı", "Transfer için sözleşme imzalandı.", "https://example.com/1")
	c := Classify(it, kw)

	require.Equal(t, news.CategoryOfficial, c.Category)
	require.GreaterOrEqual(t, c.Score, kw.OfficialThreshold)
	require.Contains(t, c.MatchedTerms, "resmen")
	require.Contains(t, c.MatchedTerms, "imzaladı")
	require.Equal(t, it.Fingerprint, c.Fingerprint)
}

func TestClassifyRumor(t *testing.T) {
	kw := DefaultKeywords()

	it := item("İddiaya göre transfer olabilir", "", "https://example.com/2")
	c := Classify(it, kw)

	require.Equal(t, news.CategoryRumor, c.Category)
	require.LessOrEqual(t, c.Score, -kw.RumorThreshold)
}

func TestClassifyUnknownBand(t *testing.T) {
	kw := DefaultKeywords()

	// A single weak signal lands between the thresholds.
	c := Classify(item("Kulüpten açıklama geldi", "", "https://example.com/3"), kw)
	require.Equal(t, news.CategoryUnknown, c.Category)

	// No signal at all.
	c = Classify(item("Maç 2-1 bitti", "", "https://example.com/4"), kw)
	require.Equal(t, news.CategoryUnknown, c.Category)
	require.Zero(t, c.Score)
	require.Empty(t, c.MatchedTerms)
}

func TestClassifyOfficialDomainBoost(t *testing.T) {
	kw := DefaultKeywords()

	// The domain boost alone clears the official threshold.
	c := Classify(item("Yeni sözleşme", "", "https://www.tff.org/haber/1"), kw)
	require.Equal(t, news.CategoryOfficial, c.Category)
	require.InDelta(t, kw.DomainBoost, c.Score, 1e-9)
}

func TestClassifySuffixedTurkishForms(t *testing.T) {
	kw := DefaultKeywords()

	// "iddialara" carries the "iddia" stem and must still count.
	c := Classify(item("Çıkan iddialara göre ayrılık yakın", "Söylentiler güçleniyor.", "https://example.com/5"), kw)
	require.Equal(t, news.CategoryRumor, c.Category)
}

func TestClassifyDeterministic(t *testing.T) {
	kw := DefaultKeywords()
	it := item("Resmen açıklandı: iddia değil", "Kulüp duyurdu.", "https://example.com/6")

	first := Classify(it, kw)
	second := Classify(it, kw)

	require.Equal(t, first, second)
	require.IsIncreasing(t, first.MatchedTerms)
}

func TestKeywordsApplyDefaults(t *testing.T) {
	kw := &Keywords{}
	kw.applyDefaults()

	require.Equal(t, 0.6, kw.OfficialThreshold)
	require.Equal(t, 0.5, kw.RumorThreshold)
	require.Equal(t, 0.8, kw.DomainBoost)
}
