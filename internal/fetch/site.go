package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/source"
)

// How many article links to follow from one listing page per fetch.
const maxArticlesPerSite = 5

// SiteFetcher scrapes a news listing page, follows article links, and
// extracts title and body text.
type SiteFetcher struct {
	client *http.Client
}

var _ Fetcher = (*SiteFetcher)(nil)

func NewSiteFetcher(timeout time.Duration) *SiteFetcher {
	return &SiteFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *SiteFetcher) Fetch(ctx context.Context, src source.Source) ([]news.Item, error) {
	doc, err := f.get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", src.URL, err)
	}

	selector := src.Selector
	if selector == "" {
		selector = "article a[href], h2 a[href], h3 a[href]"
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	seen := map[string]bool{}
	var links []string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref).String()
		if ref.Fragment != "" || seen[abs] || abs == src.URL {
			return true
		}
		seen[abs] = true
		links = append(links, abs)
		return len(links) < maxArticlesPerSite
	})

	now := time.Now().UTC()
	var items []news.Item
	for _, link := range links {
		item, err := f.extractArticle(ctx, src, link, now)
		if err != nil {
			// One broken article should not sink the source.
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *SiteFetcher) extractArticle(ctx context.Context, src source.Source, link string, now time.Time) (news.Item, error) {
	doc, err := f.get(ctx, link)
	if err != nil {
		return news.Item{}, err
	}

	title := strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return news.Item{}, fmt.Errorf("no title at %s", link)
	}

	var paragraphs []string
	doc.Find("article p, .article-body p, .content p, main p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 40 {
			paragraphs = append(paragraphs, text)
		}
	})
	body := strings.Join(paragraphs, "\n")
	if body == "" {
		body = strings.TrimSpace(doc.Find("meta[property='og:description']").AttrOr("content", ""))
	}

	var published time.Time
	if meta := doc.Find("meta[property='article:published_time']").AttrOr("content", ""); meta != "" {
		if t, err := time.Parse(time.RFC3339, meta); err == nil {
			published = t.UTC()
		}
	}

	return news.Item{
		SourceID:    src.ID,
		URL:         link,
		Title:       title,
		Body:        body,
		Language:    src.Lang,
		PublishedAt: published,
		FetchedAt:   now,
		Fingerprint: news.Fingerprint(src.ID, link, title),
	}, nil
}

func (f *SiteFetcher) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "futbot/1.0 (+https://github.com/futbot/futbot)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
