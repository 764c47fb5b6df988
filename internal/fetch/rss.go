package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/source"
)

// RSSFetcher reads a source's RSS/Atom feed.
type RSSFetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

var _ Fetcher = (*RSSFetcher)(nil)

func NewRSSFetcher(timeout time.Duration) *RSSFetcher {
	p := gofeed.NewParser()
	p.UserAgent = "futbot/1.0 (+https://github.com/futbot/futbot)"
	return &RSSFetcher{parser: p, timeout: timeout}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src source.Source) ([]news.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	now := time.Now().UTC()
	items := make([]news.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Link == "" || entry.Title == "" {
			continue
		}

		var published time.Time
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			published = entry.UpdatedParsed.UTC()
		}

		body := entry.Description
		if entry.Content != "" {
			body = entry.Content
		}

		items = append(items, news.Item{
			SourceID:    src.ID,
			URL:         entry.Link,
			Title:       entry.Title,
			Body:        body,
			Language:    src.Lang,
			PublishedAt: published,
			FetchedAt:   now,
			Fingerprint: news.Fingerprint(src.ID, entry.Link, entry.Title),
		})
	}
	return items, nil
}
