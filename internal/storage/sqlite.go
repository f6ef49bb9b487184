package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/debemdeboas/the-journal/internal/db"
)

// SQLiteKV stores values in the kv table created by db.SQLite.
type SQLiteKV struct {
	db db.DB
}

func NewSQLiteKV(database db.DB) *SQLiteKV {
	return &SQLiteKV{db: database}
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Get().QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Get().ExecContext(ctx, `
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return err
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.Get().ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}
