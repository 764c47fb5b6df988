package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileStore keeps PostRecords in a JSON file. Suited for single-host runs
// and dry runs; the Postgres store is the production backend.
type FileStore struct {
	path  string
	mu    sync.RWMutex
	items map[string]PostRecord
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads (or initializes) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path:  path,
		items: make(map[string]PostRecord),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var records []PostRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("unmarshal store file: %w", err)
	}
	for _, rec := range records {
		fs.items[rec.Fingerprint] = rec
	}
	return nil
}

// save writes the full record set to a temp file and renames it over the
// store file, so a crash mid-write never leaves a half-written file visible.
func (fs *FileStore) save() error {
	records := make([]PostRecord, 0, len(fs.items))
	for _, rec := range fs.items {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PostedAt.Before(records[j].PostedAt)
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".posted-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (fs *FileStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.items[fingerprint]
	return ok, nil
}

func (fs *FileStore) Record(ctx context.Context, rec PostRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.items[rec.Fingerprint]; ok {
		return ErrDuplicateRecord
	}

	fs.items[rec.Fingerprint] = rec
	if err := fs.save(); err != nil {
		// The write did not land; undo so Exists stays consistent with disk.
		delete(fs.items, rec.Fingerprint)
		return err
	}
	return nil
}

func (fs *FileStore) RecentPosts(ctx context.Context, since time.Time) ([]PostRecord, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var records []PostRecord
	for _, rec := range fs.items {
		if !rec.PostedAt.Before(since) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PostedAt.Before(records[j].PostedAt)
	})
	return records, nil
}

func (fs *FileStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var removed []string
	for fp, rec := range fs.items {
		if rec.PostedAt.Before(olderThan) {
			removed = append(removed, fp)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	for _, fp := range removed {
		delete(fs.items, fp)
	}
	if err := fs.save(); err != nil {
		return 0, err
	}

	slog.Info("store cleanup removed records", "count", len(removed), "older_than", olderThan)
	return len(removed), nil
}

func (fs *FileStore) Close() error {
	return nil
}
