// Package fetch pulls raw items from configured sources. A single source's
// failure is logged and skipped; it never aborts the run.
package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/retry"
	"github.com/futbot/futbot/internal/source"
)

// Fetcher obtains the current items of one source.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Source) ([]news.Item, error)
}

// Options bounds a fan-out fetch.
type Options struct {
	// MaxAge drops items older than now-MaxAge. Items without a publish
	// date are kept.
	MaxAge time.Duration
	// Concurrency caps parallel source fetches.
	Concurrency int
	// Retry bounds re-attempts against a flapping feed endpoint.
	Retry retry.Config
}

// Feed and listing failures are dominated by connection resets and 5xx
// responses, so every fetch error gets the bounded retry.
func transientFetch(error) bool { return true }

// All fetches every source concurrently and merges results into a
// deterministic order (published_at ascending, then source_id). The per-item
// fingerprint is filled in here.
func All(ctx context.Context, fetchers map[source.Kind]Fetcher, sources []source.Source, opts Options, now time.Time) []news.Item {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var (
		mu    sync.Mutex
		items []news.Item
		wg    sync.WaitGroup
	)
	sem := make(chan struct{}, concurrency)

	for _, src := range sources {
		fetcher, ok := fetchers[src.Kind]
		if !ok {
			slog.Warn("no fetcher for source kind", "source", src.ID, "kind", src.Kind)
			continue
		}

		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var fetched []news.Item
			err := retry.Do(ctx, opts.Retry, "fetch "+src.ID, func() error {
				batch, ferr := fetcher.Fetch(ctx, src)
				if ferr != nil {
					return ferr
				}
				fetched = batch
				return nil
			}, transientFetch)
			if err != nil {
				slog.Error("source fetch failed, skipping", "source", src.ID, "error", err)
				return
			}
			slog.Info("fetched source", "source", src.ID, "items", len(fetched))

			mu.Lock()
			items = append(items, fetched...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	fresh := items[:0]
	cutoff := now.Add(-opts.MaxAge)
	for _, item := range items {
		if opts.MaxAge > 0 && !item.PublishedAt.IsZero() && item.PublishedAt.Before(cutoff) {
			continue
		}
		if item.Fingerprint == "" {
			item.Fingerprint = news.Fingerprint(item.SourceID, item.URL, item.Title)
		}
		fresh = append(fresh, item)
	}

	news.SortItems(fresh)
	return fresh
}
