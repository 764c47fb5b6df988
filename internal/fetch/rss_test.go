package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/futbot/futbot/internal/source"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Futbol</title>
    <item>
      <title>Transfer resmen açıklandı</title>
      <link>https://example.com/haber/1?utm_source=rss</link>
      <description>Kulüp yeni transferini duyurdu.</description>
      <pubDate>Sun, 01 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://example.com/haber/2</link>
    </item>
    <item>
      <title>Başlık var link yok</title>
    </item>
  </channel>
</rss>`

func TestRSSFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	f := NewRSSFetcher(5 * time.Second)
	src := source.Source{ID: "test", URL: srv.URL, Kind: source.KindRSS, Lang: "tr"}

	items, err := f.Fetch(context.Background(), src)
	require.NoError(t, err)

	// Entries without a title or link are skipped.
	require.Len(t, items, 1)

	item := items[0]
	require.Equal(t, "test", item.SourceID)
	require.Equal(t, "Transfer resmen açıklandı", item.Title)
	require.Equal(t, "Kulüp yeni transferini duyurdu.", item.Body)
	require.Equal(t, "tr", item.Language)
	require.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), item.PublishedAt)
	require.Len(t, item.Fingerprint, 16)
}

func TestRSSFetcherBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewRSSFetcher(5 * time.Second)
	_, err := f.Fetch(context.Background(), source.Source{ID: "test", URL: srv.URL})
	require.Error(t, err)
}
