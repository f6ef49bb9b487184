package storage

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/util/compression"
)

func testPosts(n int) []model.Post {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]model.Post, n)
	for i := range posts {
		created := base.Add(time.Duration(i) * time.Hour)
		posts[i] = model.Post{
			ID:         model.PostID("post-" + string(rune('a'+i))),
			Title:      "Post",
			Content:    "<p>body</p>",
			AuthorID:   "u1",
			AuthorName: "User One",
			Category:   "Engineering",
			Tags:       []string{"go"},
			Likes:      model.LikeSet{"u2"},
			Views:      i,
			Comments: []model.Comment{{
				ID: "c1", AuthorID: "u2", AuthorName: "User Two", Content: "nice", CreatedAt: created.Add(time.Minute),
			}},
			CreatedAt: created,
			UpdatedAt: created,
			ReadTime:  1,
		}
	}
	return posts
}

func flush(t *testing.T, s *SnapshotStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}

func TestSnapshotLoadEmpty(t *testing.T) {
	s := NewSnapshotStore(NewMemoryKV(), "journal.posts", nil)
	defer s.Close(context.Background())

	posts, ok := s.Load(context.Background())
	if ok || posts != nil {
		t.Errorf("Expected nothing loaded from empty storage, got %v (ok=%v)", posts, ok)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, name := range []string{"none", "gzip", "zstd"} {
		t.Run(name, func(t *testing.T) {
			c, err := compression.ByName(name)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			s := NewSnapshotStore(NewMemoryKV(), "journal.posts", c)
			defer s.Close(context.Background())

			want := testPosts(5)
			s.Save(want)
			flush(t, s)

			got, ok := s.Load(context.Background())
			if !ok {
				t.Fatal("Expected snapshot to load")
			}
			if len(got) != 5 {
				t.Fatalf("Expected 5 posts, got %d", len(got))
			}
			for i := range want {
				if got[i].ID != want[i].ID {
					t.Errorf("Expected id %s at %d, got %s", want[i].ID, i, got[i].ID)
				}
				if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
					t.Errorf("Expected CreatedAt %v, got %v", want[i].CreatedAt, got[i].CreatedAt)
				}
				if !got[i].Comments[0].CreatedAt.Equal(want[i].Comments[0].CreatedAt) {
					t.Errorf("Expected comment CreatedAt %v, got %v", want[i].Comments[0].CreatedAt, got[i].Comments[0].CreatedAt)
				}
				if !slices.Equal(got[i].Likes, want[i].Likes) {
					t.Errorf("Expected likes %v, got %v", want[i].Likes, got[i].Likes)
				}
				if got[i].Views != want[i].Views {
					t.Errorf("Expected views %d, got %d", want[i].Views, got[i].Views)
				}
			}
		})
	}
}

func TestSnapshotLoadTolerance(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		stored   string
		expectOK bool
		check    func(t *testing.T, posts []model.Post)
	}{
		{
			name:     "corrupt json",
			stored:   `[{"id": "p1", "title": `,
			expectOK: false,
		},
		{
			name:     "not an array",
			stored:   `{"id": "p1"}`,
			expectOK: false,
		},
		{
			name:     "empty array",
			stored:   `[]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				if len(posts) != 0 {
					t.Errorf("Expected no posts, got %d", len(posts))
				}
			},
		},
		{
			name: "epoch millisecond timestamps",
			stored: `[{"id":"p1","createdAt":1735689600000,"updatedAt":1735689600000,
				"comments":[{"id":"c1","content":"hi","createdAt":1735693200000}]}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
				if !posts[0].CreatedAt.Equal(want) {
					t.Errorf("Expected CreatedAt %v, got %v", want, posts[0].CreatedAt)
				}
				if !posts[0].Comments[0].CreatedAt.Equal(want.Add(time.Hour)) {
					t.Errorf("Expected comment CreatedAt %v, got %v", want.Add(time.Hour), posts[0].Comments[0].CreatedAt)
				}
			},
		},
		{
			name:     "iso timestamps without zone",
			stored:   `[{"id":"p1","createdAt":"2025-01-01T10:30:00","updatedAt":"2025-01-01 11:00:00"}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				want := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)
				if !posts[0].CreatedAt.Equal(want) {
					t.Errorf("Expected CreatedAt %v, got %v", want, posts[0].CreatedAt)
				}
			},
		},
		{
			name:     "repairs likes tags and views",
			stored:   `[{"id":"p1","likes":["u1","u1",""],"tags":["go","go"," "],"views":-3,"createdAt":"2025-02-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				p := posts[0]
				if !slices.Equal(p.Likes, model.LikeSet{"u1"}) {
					t.Errorf("Expected likes [u1], got %v", p.Likes)
				}
				if !slices.Equal(p.Tags, []string{"go"}) {
					t.Errorf("Expected tags [go], got %v", p.Tags)
				}
				if p.Views != 0 {
					t.Errorf("Expected views clamped to 0, got %d", p.Views)
				}
				if !p.UpdatedAt.Equal(p.CreatedAt) {
					t.Errorf("Expected UpdatedAt raised to CreatedAt, got %v", p.UpdatedAt)
				}
			},
		},
		{
			name:     "posts without id are skipped",
			stored:   `[{"title":"orphan"},{"id":"p2"}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				if len(posts) != 1 || posts[0].ID != "p2" {
					t.Errorf("Expected only p2, got %v", posts)
				}
			},
		},
		{
			name:     "duplicate ids keep the first record",
			stored:   `[{"id":"a","title":"one"},{"id":"b","title":"other"},{"id":"a","title":"two"}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				if len(posts) != 2 {
					t.Fatalf("Expected 2 posts, got %d", len(posts))
				}
				if posts[0].ID != "a" || posts[0].Title != "one" || posts[1].ID != "b" {
					t.Errorf("Expected [a:one b:other], got %v", posts)
				}
			},
		},
		{
			name: "read time is recomputed from content",
			stored: `[{"id":"p1","content":"<p>one two three</p>","readTime":0},
				{"id":"p2","content":"<p>x</p>","readTime":9},
				{"id":"p3","content":"","readTime":4}]`,
			expectOK: true,
			check: func(t *testing.T, posts []model.Post) {
				expected := []int{1, 1, 0}
				for i, p := range posts {
					if p.ReadTime != expected[i] {
						t.Errorf("Expected %s read time %d, got %d", p.ID, expected[i], p.ReadTime)
					}
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kv := NewMemoryKV()
			kv.Put(ctx, "journal.posts", []byte(tc.stored))

			s := NewSnapshotStore(kv, "journal.posts", nil)
			defer s.Close(ctx)

			posts, ok := s.Load(ctx)
			if ok != tc.expectOK {
				t.Fatalf("Expected ok=%v, got %v", tc.expectOK, ok)
			}
			if tc.check != nil {
				tc.check(t, posts)
			}
		})
	}
}

func TestSnapshotReadsUncompressedWithCompressor(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.Put(ctx, "journal.posts", []byte(`[{"id":"p1"}]`))

	s := NewSnapshotStore(kv, "journal.posts", compression.ZstdCompressor{})
	defer s.Close(ctx)

	posts, ok := s.Load(ctx)
	if !ok || len(posts) != 1 {
		t.Errorf("Expected plain JSON snapshot to load, got %v (ok=%v)", posts, ok)
	}
}

// gatedKV blocks every Put until release is closed and counts writes.
type gatedKV struct {
	*MemoryKV
	release chan struct{}
	started chan struct{}
	once    sync.Once
	puts    atomic.Int32
}

func (g *gatedKV) Put(ctx context.Context, key string, value []byte) error {
	g.once.Do(func() { close(g.started) })
	<-g.release
	g.puts.Add(1)
	return g.MemoryKV.Put(ctx, key, value)
}

func TestSnapshotCoalescesToLatest(t *testing.T) {
	kv := &gatedKV{
		MemoryKV: NewMemoryKV(),
		release:  make(chan struct{}),
		started:  make(chan struct{}),
	}
	s := NewSnapshotStore(kv, "journal.posts", nil)
	defer s.Close(context.Background())

	s.Save(testPosts(1))
	<-kv.started

	// The writer is blocked on the first snapshot; these collapse into one write.
	s.Save(testPosts(2))
	s.Save(testPosts(3))
	s.Save(testPosts(4))

	close(kv.release)
	flush(t, s)

	if n := kv.puts.Load(); n != 2 {
		t.Errorf("Expected 2 writes, got %d", n)
	}

	posts, ok := s.Load(context.Background())
	if !ok || len(posts) != 4 {
		t.Errorf("Expected latest snapshot with 4 posts, got %d (ok=%v)", len(posts), ok)
	}
}

func TestSnapshotFlushHonorsContext(t *testing.T) {
	kv := &gatedKV{
		MemoryKV: NewMemoryKV(),
		release:  make(chan struct{}),
		started:  make(chan struct{}),
	}
	s := NewSnapshotStore(kv, "journal.posts", nil)

	s.Save(testPosts(1))
	<-kv.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}

	close(kv.release)
	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Expected close to succeed, got %v", err)
	}
}

type failingKV struct {
	*MemoryKV
	puts atomic.Int32
}

func (f *failingKV) Put(context.Context, string, []byte) error {
	f.puts.Add(1)
	return errors.New("disk full")
}

func TestSnapshotSaveFailureIsNotFatal(t *testing.T) {
	kv := &failingKV{MemoryKV: NewMemoryKV()}
	s := NewSnapshotStore(kv, "journal.posts", nil)
	defer s.Close(context.Background())

	s.Save(testPosts(1))
	flush(t, s)

	if kv.puts.Load() != 1 {
		t.Errorf("Expected one attempted write, got %d", kv.puts.Load())
	}
	if _, ok := s.Load(context.Background()); ok {
		t.Error("Expected nothing stored after failed write")
	}
}

func TestSnapshotClose(t *testing.T) {
	kv := NewMemoryKV()
	s := NewSnapshotStore(kv, "journal.posts", nil)

	s.Save(testPosts(2))
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	posts, ok := s.Load(context.Background())
	if !ok || len(posts) != 2 {
		t.Fatalf("Expected pending save to be flushed on close, got %d (ok=%v)", len(posts), ok)
	}

	s.Save(testPosts(3))
	if err := s.Flush(context.Background()); err != nil {
		t.Errorf("Expected flush after close to succeed, got %v", err)
	}
	posts, _ = s.Load(context.Background())
	if len(posts) != 2 {
		t.Errorf("Expected saves after close to be dropped, got %d posts", len(posts))
	}

	if err := s.Close(context.Background()); err != nil {
		t.Errorf("Expected second close to be a no-op, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		input    string
		expected time.Time
		wantErr  bool
	}{
		{input: "2025-01-02T03:04:05Z", expected: want},
		{input: "2025-01-02T03:04:05.000Z", expected: want},
		{input: "2025-01-02T05:04:05+02:00", expected: want},
		{input: "2025-01-02 03:04:05+00:00", expected: want},
		{input: "2025-01-02 03:04:05", expected: want},
		{input: "1735787045000", expected: want},
		{input: "", expected: time.Time{}},
		{input: "yesterday", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimestamp(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTimestampMarshal(t *testing.T) {
	ts := Timestamp{time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))}
	data, err := ts.MarshalJSON()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(data) != `"2025-01-02T02:04:05Z"` {
		t.Errorf("Expected UTC RFC 3339 string, got %s", data)
	}

	zero, _ := Timestamp{}.MarshalJSON()
	if string(zero) != "null" {
		t.Errorf("Expected null for zero time, got %s", zero)
	}
}
