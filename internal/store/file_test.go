package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/futbot/futbot/internal/news"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posted.json")
	fs, err := NewFileStore(path)
	require.NoError(t, err)
	return fs, path
}

func record(fp string, postedAt time.Time) PostRecord {
	return PostRecord{
		Fingerprint:    fp,
		PostedAt:       postedAt,
		PlatformPostID: "post-" + fp,
		Category:       news.CategoryOfficial,
	}
}

func TestFileStoreExistsAndRecord(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok, err := fs.Exists(ctx, "abc")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fs.Record(ctx, record("abc", now)))

	ok, err = fs.Exists(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFileStoreDuplicateRecord(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, fs.Record(ctx, record("abc", now)))

	err := fs.Record(ctx, record("abc", now.Add(time.Minute)))
	require.ErrorIs(t, err, ErrDuplicateRecord)

	// The first record wins; the duplicate must not overwrite it.
	recent, err := fs.RecentPosts(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, now, recent[0].PostedAt)
}

func TestFileStoreRecentPostsOrdering(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, fs.Record(ctx, record("c", now.Add(-1*time.Hour))))
	require.NoError(t, fs.Record(ctx, record("a", now.Add(-3*time.Hour))))
	require.NoError(t, fs.Record(ctx, record("b", now.Add(-2*time.Hour))))
	require.NoError(t, fs.Record(ctx, record("old", now.Add(-48*time.Hour))))

	recent, err := fs.RecentPosts(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.Equal(t, "a", recent[0].Fingerprint)
	require.Equal(t, "b", recent[1].Fingerprint)
	require.Equal(t, "c", recent[2].Fingerprint)
}

func TestFileStoreCleanup(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, fs.Record(ctx, record("old1", now.AddDate(0, 0, -40))))
	require.NoError(t, fs.Record(ctx, record("old2", now.AddDate(0, 0, -35))))
	require.NoError(t, fs.Record(ctx, record("fresh", now.Add(-time.Hour))))

	removed, err := fs.Cleanup(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	ok, err := fs.Exists(ctx, "old1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = fs.Exists(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)

	// A second pass finds nothing to remove.
	removed, err = fs.Cleanup(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	fs, path := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, fs.Record(ctx, record("abc", now)))
	require.NoError(t, fs.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	ok, err := reopened.Exists(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	err = reopened.Record(ctx, record("abc", now.Add(time.Hour)))
	require.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	ok, err := fs.Exists(context.Background(), "anything")
	require.NoError(t, err)
	require.False(t, ok)
}
