// Package storage persists the post collection as a single serialized
// snapshot under a namespace key of a key-value medium.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/db"
	"github.com/rs/zerolog"
)

var storageLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	storageLogger = l
}

// ErrNotFound is returned by KV.Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// KV is the key-value medium the snapshot lives in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Open builds the KV backend named by cfg.Backend. The returned close
// function releases backend resources and is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (KV, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return NewMemoryKV(), noop, nil
	case "", "file":
		kv, err := NewFileKV(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case "sqlite":
		sqlite := db.NewSQLite(cfg.SQLitePath)
		if err := sqlite.InitDB(); err != nil {
			return nil, noop, fmt.Errorf("init sqlite %s: %w", cfg.SQLitePath, err)
		}
		return NewSQLiteKV(sqlite), sqlite.Close, nil
	case "s3":
		kv, err := NewS3KV(ctx, cfg.S3)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
