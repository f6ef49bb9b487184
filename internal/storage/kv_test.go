package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/db"
)

// fakeS3 keeps objects in a map keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut {
		return nil, errors.New("service unavailable")
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestSQLiteKV(t *testing.T) *SQLiteKV {
	t.Helper()

	sqlite := db.NewSQLite(":memory:")
	if err := sqlite.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return NewSQLiteKV(sqlite)
}

func newTestFileKV(t *testing.T) *FileKV {
	t.Helper()

	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file kv: %v", err)
	}
	return kv
}

func TestKVBackends(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) KV
	}{
		{name: "memory", new: func(t *testing.T) KV { return NewMemoryKV() }},
		{name: "file", new: func(t *testing.T) KV { return newTestFileKV(t) }},
		{name: "sqlite", new: func(t *testing.T) KV { return newTestSQLiteKV(t) }},
		{name: "s3", new: func(t *testing.T) KV { return &S3KV{client: newFakeS3(), bucket: "journal"} }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			kv := b.new(t)

			if _, err := kv.Get(ctx, "journal.posts"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Expected ErrNotFound for missing key, got %v", err)
			}

			if err := kv.Put(ctx, "journal.posts", []byte("v1")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, err := kv.Get(ctx, "journal.posts")
			if err != nil || string(got) != "v1" {
				t.Fatalf("Expected 'v1', got %q (err %v)", got, err)
			}

			if err := kv.Put(ctx, "journal.posts", []byte("v2")); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}
			got, _ = kv.Get(ctx, "journal.posts")
			if string(got) != "v2" {
				t.Errorf("Expected overwritten value 'v2', got %q", got)
			}

			if err := kv.Delete(ctx, "journal.posts"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := kv.Get(ctx, "journal.posts"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
			if err := kv.Delete(ctx, "journal.posts"); err != nil {
				t.Errorf("Expected deleting a missing key to succeed, got %v", err)
			}
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	value := []byte("abc")
	kv.Put(ctx, "k", value)
	value[0] = 'x'

	got, _ := kv.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Expected stored value to be independent of the caller's slice, got %q", got)
	}
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv := newTestFileKV(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := kv.Put(ctx, key, []byte("x")); err == nil {
			t.Errorf("Expected key %q to be rejected", key)
		}
	}
}

func TestS3KVPutError(t *testing.T) {
	kv := &S3KV{client: &fakeS3{objects: map[string][]byte{}, failPut: true}, bucket: "journal"}
	if err := kv.Put(context.Background(), "k", []byte("x")); err == nil {
		t.Error("Expected put error to be returned")
	}
}

func TestNewS3KVRequiresBucket(t *testing.T) {
	if _, err := NewS3KV(context.Background(), config.S3Config{Region: "auto"}); err == nil {
		t.Error("Expected error without a bucket")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		kv, closeFn, err := Open(ctx, config.StorageConfig{Backend: "memory"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := kv.(*MemoryKV); !ok {
			t.Errorf("Expected *MemoryKV, got %T", kv)
		}
	})

	t.Run("file", func(t *testing.T) {
		kv, closeFn, err := Open(ctx, config.StorageConfig{Backend: "file", Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := kv.(*FileKV); !ok {
			t.Errorf("Expected *FileKV, got %T", kv)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		kv, closeFn, err := Open(ctx, config.StorageConfig{Backend: "sqlite", SQLitePath: ":memory:"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, ok := kv.(*SQLiteKV); !ok {
			t.Errorf("Expected *SQLiteKV, got %T", kv)
		}
		if err := closeFn(); err != nil {
			t.Errorf("Expected close to succeed, got %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, closeFn, err := Open(ctx, config.StorageConfig{Backend: "etcd"})
		if err == nil {
			t.Error("Expected error for unknown backend")
		}
		if closeFn == nil {
			t.Error("Expected non-nil close function")
		}
	})
}
