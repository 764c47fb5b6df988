package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists PostRecords in a post_records table with a unique
// fingerprint constraint. The constraint, not the Exists check, is what
// guarantees uniqueness across concurrent runs.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	ps := &PostgresStore{db: db}
	if err := ps.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS post_records (
		id SERIAL PRIMARY KEY,
		fingerprint VARCHAR(64) UNIQUE NOT NULL,
		posted_at TIMESTAMPTZ NOT NULL,
		platform_post_id TEXT NOT NULL,
		category VARCHAR(16) NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_post_records_posted_at ON post_records(posted_at);
	`
	_, err := ps.db.Exec(schema)
	return err
}

func (ps *PostgresStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("post_records").
		Where(sq.Eq{"fingerprint": fingerprint}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = ps.db.GetContext(ctx, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query post record: %w", err)
	}
	return true, nil
}

func (ps *PostgresStore) Record(ctx context.Context, rec PostRecord) error {
	query, args, err := psql.
		Insert("post_records").
		Columns("fingerprint", "posted_at", "platform_post_id", "category").
		Values(rec.Fingerprint, rec.PostedAt.UTC(), rec.PlatformPostID, string(rec.Category)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := ps.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("insert post record: %w", err)
	}
	return nil
}

func (ps *PostgresStore) RecentPosts(ctx context.Context, since time.Time) ([]PostRecord, error) {
	query, args, err := psql.
		Select("fingerprint", "posted_at", "platform_post_id", "category").
		From("post_records").
		Where(sq.GtOrEq{"posted_at": since.UTC()}).
		OrderBy("posted_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent query: %w", err)
	}

	var records []PostRecord
	if err := ps.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	return records, nil
}

func (ps *PostgresStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	query, args, err := psql.
		Delete("post_records").
		Where(sq.Lt{"posted_at": olderThan.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cleanup query: %w", err)
	}

	res, err := ps.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup post records: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows > 0 {
		slog.Info("store cleanup removed records", "count", rows, "older_than", olderThan)
	}
	return int(rows), nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
