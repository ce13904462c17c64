package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS assessment_progress (
		respondent_id TEXT NOT NULL,
		track         TEXT NOT NULL,
		snapshot      TEXT NOT NULL,
		saved_at      TEXT NOT NULL,
		PRIMARY KEY (respondent_id, track)
	)`

// SQLiteStore keeps snapshots in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the progress table on db when missing.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create progress table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key Key, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessment_progress (respondent_id, track, snapshot, saved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (respondent_id, track)
		 DO UPDATE SET snapshot = excluded.snapshot, saved_at = excluded.saved_at`,
		key.RespondentID,
		string(key.Track),
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM assessment_progress WHERE respondent_id = ? AND track = ?`,
		key.RespondentID,
		string(key.Track),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return []byte(data), nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM assessment_progress WHERE respondent_id = ? AND track = ?`,
		key.RespondentID,
		string(key.Track),
	)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
