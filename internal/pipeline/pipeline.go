// Package pipeline composes fetching, deduplication, classification,
// summarization, rate limiting, and publishing into one end-to-end run.
// Only the store writes outlive a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/futbot/futbot/internal/classify"
	"github.com/futbot/futbot/internal/fetch"
	"github.com/futbot/futbot/internal/images"
	"github.com/futbot/futbot/internal/metrics"
	"github.com/futbot/futbot/internal/news"
	"github.com/futbot/futbot/internal/post"
	"github.com/futbot/futbot/internal/publish"
	"github.com/futbot/futbot/internal/ratelimit"
	"github.com/futbot/futbot/internal/retry"
	"github.com/futbot/futbot/internal/source"
	"github.com/futbot/futbot/internal/store"
	"github.com/futbot/futbot/internal/summarize"
)

// Status is the terminal state of one run.
type Status string

const (
	StatusCompleted      Status = "completed"
	StatusCompletedEmpty Status = "completed_empty"
	StatusFailed         Status = "failed"
)

// Report summarizes one run for logging and the CLI.
type Report struct {
	Status     Status
	Fetched    int
	Duplicates int
	Candidates int
	Admitted   int
	Published  int
	// PublishErr holds an item-scoped publish failure that did not fail the
	// run; the item stays admissible next run.
	PublishErr error
}

// Deps wires the collaborators into the orchestrator.
type Deps struct {
	Sources      []source.Source
	Fetchers     map[source.Kind]fetch.Fetcher
	Store        store.Store
	Keywords     *classify.Keywords
	Summarizer   *summarize.Adapter
	Renderer     images.Renderer // optional; nil publishes text-only
	Publisher    publish.Publisher
	Gate         *ratelimit.Gate
	Retry        retry.Config
	MaxItems     int
	MaxAge       time.Duration
	MaxSentences int
	Concurrency  int
}

type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes one pipeline pass. The returned error is non-nil only for
// run-fatal conditions (store integrity, credential problems); per-source
// and per-item failures are absorbed into the Report.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Report, error) {
	started := time.Now()
	report := Report{Status: StatusCompletedEmpty}
	defer func() {
		metrics.Global.RecordRun(time.Since(started))
		if report.Status != StatusFailed {
			metrics.Global.ClearError()
		}
	}()

	// Stage 1: fetch. Per-source failures are isolated inside fetch.All.
	items := fetch.All(ctx, p.deps.Fetchers, p.deps.Sources, fetch.Options{
		MaxAge:      p.deps.MaxAge,
		Concurrency: p.deps.Concurrency,
		Retry:       p.deps.Retry,
	}, now)
	report.Fetched = len(items)
	metrics.Global.AddItemsFetched(len(items))

	if len(items) == 0 {
		slog.Info("run finished: no items fetched")
		return report, nil
	}

	// Stage 2: dedup filter. A store read failure is an integrity risk, so
	// it aborts rather than risking a double post.
	fresh, dups, err := p.filterSeen(ctx, items)
	if err != nil {
		report.Status = StatusFailed
		metrics.Global.SetError(err.Error())
		return report, err
	}
	report.Duplicates = dups
	metrics.Global.AddDuplicatesFiltered(dups)

	if p.deps.MaxItems > 0 && len(fresh) > p.deps.MaxItems {
		fresh = fresh[:p.deps.MaxItems]
	}

	// Stage 3: classify.
	candidates := make([]ratelimit.Candidate, 0, len(fresh))
	for _, item := range fresh {
		candidates = append(candidates, ratelimit.Candidate{
			Item:           item,
			Classification: classify.Classify(item, p.deps.Keywords),
		})
	}
	report.Candidates = len(candidates)

	// Stage 4: admit. The window is re-derived from the store every run;
	// 24 hours of history covers both the spacing floor and the UTC-day cap.
	recent, err := p.deps.Store.RecentPosts(ctx, now.UTC().Add(-24*time.Hour))
	if err != nil {
		err = fmt.Errorf("load posting history: %w", err)
		report.Status = StatusFailed
		metrics.Global.SetError(err.Error())
		return report, err
	}
	window := ratelimit.WindowFrom(recent, now)

	admitted := p.deps.Gate.Admit(candidates, window, now)
	report.Admitted = len(admitted)
	metrics.Global.AddItemsAdmitted(len(admitted))

	if len(admitted) == 0 {
		slog.Info("run finished: no items admitted",
			"candidates", len(candidates), "posts_today", window.PostsToday)
		return report, nil
	}

	// Stages 5-7: summarize, render, publish, record.
	for _, cand := range admitted {
		if err := p.publishOne(ctx, cand, now); err != nil {
			if isRunFatal(err) {
				report.Status = StatusFailed
				metrics.Global.SetError(err.Error())
				return report, err
			}
			// Item-scoped failure: nothing was recorded, so the item stays
			// admissible next run.
			attrs := []any{"fingerprint", cand.Item.Fingerprint, "error", err}
			var pe *publish.Error
			if errors.As(err, &pe) && pe.RetryAfter > 0 {
				attrs = append(attrs, "retry_after", pe.RetryAfter)
			}
			slog.Warn("publish failed, deferring item to next run", attrs...)
			metrics.Global.IncrementPublishFailures()
			report.PublishErr = err
			continue
		}
		report.Published++
		metrics.Global.IncrementPostsPublished()
	}

	report.Status = StatusCompleted
	return report, nil
}

func (p *Pipeline) filterSeen(ctx context.Context, items []news.Item) ([]news.Item, int, error) {
	fresh := make([]news.Item, 0, len(items))
	seenInRun := map[string]bool{}
	dups := 0

	for _, item := range items {
		if seenInRun[item.Fingerprint] {
			dups++
			continue
		}
		seenInRun[item.Fingerprint] = true

		exists, err := p.deps.Store.Exists(ctx, item.Fingerprint)
		if err != nil {
			return nil, 0, fmt.Errorf("dedup check %s: %w", item.Fingerprint, err)
		}
		if exists {
			dups++
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh, dups, nil
}

func (p *Pipeline) publishOne(ctx context.Context, cand ratelimit.Candidate, now time.Time) error {
	item := cand.Item

	summary := p.deps.Summarizer.Summarize(item.Body, item.Language, p.deps.MaxSentences)
	summary.Fingerprint = item.Fingerprint
	text := post.Compose(item, cand.Classification.Category, summary)

	// Image rendering is best-effort: on failure after retries publish
	// text-only rather than dropping the slot.
	var image []byte
	if p.deps.Renderer != nil {
		err := retry.Do(ctx, p.deps.Retry, "render image", func() error {
			rendered, rerr := p.deps.Renderer.Render(ctx, item.Title, cand.Classification.Category)
			if rerr != nil {
				return rerr
			}
			image = rendered
			return nil
		}, func(error) bool { return true })
		if err != nil {
			slog.Warn("image render failed, publishing text-only",
				"fingerprint", item.Fingerprint, "error", err)
		}
	}

	var postID string
	err := retry.Do(ctx, p.deps.Retry, "publish", func() error {
		id, err := p.deps.Publisher.Publish(ctx, text, image)
		if err != nil {
			return err
		}
		postID = id
		return nil
	}, publish.Retryable)
	if err != nil {
		return err
	}

	rec := store.PostRecord{
		Fingerprint:    item.Fingerprint,
		PostedAt:       now.UTC(),
		PlatformPostID: postID,
		Category:       cand.Classification.Category,
	}
	if err := p.deps.Store.Record(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateRecord) {
			// A concurrent run recorded the same fingerprint first. The
			// content is posted under some record; do not double-post and do
			// not fail the run.
			slog.Warn("post already recorded by a concurrent run",
				"fingerprint", item.Fingerprint)
			return nil
		}
		return &storeWriteError{err: err}
	}

	slog.Info("published item",
		"fingerprint", item.Fingerprint,
		"category", cand.Classification.Category,
		"post_id", postID)
	return nil
}

// storeWriteError marks a failed Record write after a confirmed publish:
// run-fatal, because the store no longer reflects what was posted.
type storeWriteError struct {
	err error
}

func (e *storeWriteError) Error() string {
	return fmt.Sprintf("record post after publish: %v", e.err)
}

func (e *storeWriteError) Unwrap() error { return e.err }

func isRunFatal(err error) bool {
	var swe *storeWriteError
	if errors.As(err, &swe) {
		return true
	}
	var pe *publish.Error
	if errors.As(err, &pe) {
		// Credential and rejection failures need operator attention; silent
		// retries would keep failing.
		return pe.Kind == publish.KindAuth || pe.Kind == publish.KindRejected
	}
	return false
}
