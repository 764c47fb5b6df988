package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/futbot/futbot/internal/news"
)

func TestOpenverseClientRender(t *testing.T) {
	var searches int
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1/images/", func(w http.ResponseWriter, r *http.Request) {
		searches++
		require.Equal(t, "commercial", r.URL.Query().Get("license_type"))
		require.Contains(t, r.URL.Query().Get("q"), "football")
		fmt.Fprintf(w, `{"results":[{"url":"%s/img.jpg","license":"by"}]}`, srv.URL)
	})
	mux.HandleFunc("/img.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	})

	c := NewOpenverseClientWithBase(srv.URL, 5*time.Second)

	data, err := c.Render(context.Background(), "Galatasaray transferi duyurdu", news.CategoryOfficial)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)

	// The second render for the same headline hits the query cache.
	_, err = c.Render(context.Background(), "Galatasaray transferi duyurdu", news.CategoryOfficial)
	require.NoError(t, err)
	require.Equal(t, 1, searches)
}

func TestOpenverseClientNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	c := NewOpenverseClientWithBase(srv.URL, 5*time.Second)
	_, err := c.Render(context.Background(), "başlık", news.CategoryUnknown)
	require.Error(t, err)
}

func TestOpenverseClientSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenverseClientWithBase(srv.URL, 5*time.Second)
	_, err := c.Render(context.Background(), "başlık", news.CategoryUnknown)
	require.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	require.Equal(t, "galatasaray yeni transferini resmen football",
		buildQuery("Galatasaray yeni transferini RESMEN duyurdu"))
	require.Equal(t, "derbi football", buildQuery("Derbi"))
}
