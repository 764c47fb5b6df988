// Package store persists PostRecords, the durable proof that an item was
// published. It is the single source of truth for deduplication and for the
// rate limiter's view of posting history.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/futbot/futbot/internal/news"
)

// ErrDuplicateRecord is returned by Record when a PostRecord with the same
// fingerprint already exists. This is the enforcement point of the
// at-most-one-record-per-fingerprint invariant; callers racing a concurrent
// run treat it as success.
var ErrDuplicateRecord = errors.New("post record already exists for fingerprint")

// PostRecord is the append-only record of one successful publish.
type PostRecord struct {
	Fingerprint    string        `db:"fingerprint" json:"fingerprint"`
	PostedAt       time.Time     `db:"posted_at" json:"posted_at"`
	PlatformPostID string        `db:"platform_post_id" json:"platform_post_id"`
	Category       news.Category `db:"category" json:"category"`
}

// Store is the deduplication store contract.
type Store interface {
	// Exists reports whether a PostRecord for the fingerprint exists,
	// including records written earlier in the same run.
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Record appends a PostRecord. Fails with ErrDuplicateRecord when the
	// fingerprint is already recorded; any other error means the write may
	// not be durable and the run must abort.
	Record(ctx context.Context, rec PostRecord) error

	// RecentPosts returns records with posted_at >= since, ordered by
	// posted_at ascending.
	RecentPosts(ctx context.Context, since time.Time) ([]PostRecord, error)

	// Cleanup removes records with posted_at < olderThan and returns the
	// number removed. Irreversible.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	Close() error
}
