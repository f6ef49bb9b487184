package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/util"
	"github.com/debemdeboas/the-journal/internal/util/compression"
)

const writeTimeout = 30 * time.Second

type commentRecord struct {
	ID           model.CommentID `json:"id"`
	AuthorID     model.UserID    `json:"authorId"`
	AuthorName   string          `json:"authorName"`
	AuthorAvatar string          `json:"authorAvatar,omitempty"`
	Content      string          `json:"content"`
	CreatedAt    Timestamp       `json:"createdAt"`
	IsAnonymous  bool            `json:"isAnonymous"`
}

type postRecord struct {
	ID           model.PostID    `json:"id"`
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	Excerpt      string          `json:"excerpt"`
	AuthorID     model.UserID    `json:"authorId"`
	AuthorName   string          `json:"authorName"`
	AuthorAvatar string          `json:"authorAvatar,omitempty"`
	Category     string          `json:"category"`
	Tags         []string        `json:"tags"`
	Likes        []model.UserID  `json:"likes"`
	Views        int             `json:"views"`
	Comments     []commentRecord `json:"comments"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
	ReadTime     int             `json:"readTime"`
	Spotlight    bool            `json:"spotlight"`
}

func toRecord(p model.Post) postRecord {
	comments := make([]commentRecord, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = commentRecord{
			ID:           c.ID,
			AuthorID:     c.AuthorID,
			AuthorName:   c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
			Content:      c.Content,
			CreatedAt:    Timestamp{c.CreatedAt},
			IsAnonymous:  c.IsAnonymous,
		}
	}

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	likes := []model.UserID(p.Likes)
	if likes == nil {
		likes = []model.UserID{}
	}

	return postRecord{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Excerpt:      p.Excerpt,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		AuthorAvatar: p.AuthorAvatar,
		Category:     p.Category,
		Tags:         tags,
		Likes:        likes,
		Views:        p.Views,
		Comments:     comments,
		CreatedAt:    Timestamp{p.CreatedAt},
		UpdatedAt:    Timestamp{p.UpdatedAt},
		ReadTime:     p.ReadTime,
		Spotlight:    p.Spotlight,
	}
}

// toPost restores a record and repairs what older or hand-edited snapshots
// may get wrong: duplicate likes and tags, negative views, a stale read time,
// UpdatedAt before CreatedAt.
func (r postRecord) toPost() model.Post {
	comments := make([]model.Comment, len(r.Comments))
	for i, c := range r.Comments {
		comments[i] = model.Comment{
			ID:           c.ID,
			AuthorID:     c.AuthorID,
			AuthorName:   c.AuthorName,
			AuthorAvatar: c.AuthorAvatar,
			Content:      c.Content,
			CreatedAt:    c.CreatedAt.Time,
			IsAnonymous:  c.IsAnonymous,
		}
	}

	p := model.Post{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		Excerpt:      r.Excerpt,
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName,
		AuthorAvatar: r.AuthorAvatar,
		Category:     r.Category,
		Tags:         model.NormalizeTags(r.Tags),
		Likes:        model.NewLikeSet(r.Likes...),
		Views:        max(r.Views, 0),
		Comments:     comments,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		ReadTime:     util.ReadTime(r.Content),
		Spotlight:    r.Spotlight,
	}
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// SnapshotStore saves and loads the whole post collection under one key.
// Saves are handed to a single background writer which always writes the
// most recent pending snapshot; intermediate snapshots may be skipped.
type SnapshotStore struct {
	kv         KV
	key        string
	compressor compression.Compressor

	mu      sync.Mutex
	pending []byte
	queued  bool
	idle    chan struct{} // nil while idle, closed when the writer drains
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewSnapshotStore(kv KV, key string, compressor compression.Compressor) *SnapshotStore {
	if compressor == nil {
		compressor = compression.NoneCompressor{}
	}

	s := &SnapshotStore{
		kv:         kv,
		key:        key,
		compressor: compressor,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.run()
	return s
}

// Save encodes posts and schedules the write. Failures are logged.
func (s *SnapshotStore) Save(posts []model.Post) {
	data, err := s.encode(posts)
	if err != nil {
		storageLogger.Error().Err(err).Str("key", s.key).Msg("Error encoding snapshot")
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		storageLogger.Warn().Str("key", s.key).Msg("Snapshot store closed, dropping save")
		return
	}
	s.pending = data
	s.queued = true
	if s.idle == nil {
		s.idle = make(chan struct{})
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every scheduled save has been written or ctx is done.
func (s *SnapshotStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	if idle == nil {
		return nil
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending saves and stops the writer. Later saves are dropped.
func (s *SnapshotStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Flush(ctx)
	close(s.stop)

	select {
	case <-s.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *SnapshotStore) run() {
	defer close(s.done)

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *SnapshotStore) drain() {
	for {
		s.mu.Lock()
		if !s.queued {
			if s.idle != nil {
				close(s.idle)
				s.idle = nil
			}
			s.mu.Unlock()
			return
		}
		data := s.pending
		s.pending = nil
		s.queued = false
		s.mu.Unlock()

		s.write(data)
	}
}

func (s *SnapshotStore) write(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		storageLogger.Error().Err(err).Str("key", s.key).Msg("Error writing snapshot")
		return
	}
	storageLogger.Debug().
		Str("key", s.key).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("Snapshot written")
}

// Load reads the stored snapshot. It reports false when nothing is stored or
// the stored value cannot be decoded.
func (s *SnapshotStore) Load(ctx context.Context) ([]model.Post, bool) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		storageLogger.Error().Err(err).Str("key", s.key).Msg("Error reading snapshot")
		return nil, false
	}

	posts, err := s.decode(data)
	if err != nil {
		storageLogger.Warn().Err(err).Str("key", s.key).Msg("Ignoring undecodable snapshot")
		return nil, false
	}
	return posts, true
}

func (s *SnapshotStore) encode(posts []model.Post) ([]byte, error) {
	records := make([]postRecord, len(posts))
	for i, p := range posts {
		records[i] = toRecord(p)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return s.compressor.Compress(data)
}

func (s *SnapshotStore) decode(data []byte) ([]model.Post, error) {
	raw, err := s.compressor.Decompress(data)
	if err != nil {
		// Snapshots written before compression was enabled are plain JSON.
		if !looksLikeJSONArray(data) {
			return nil, fmt.Errorf("decompress snapshot: %w", err)
		}
		raw = data
	}

	var records []postRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	posts := make([]model.Post, 0, len(records))
	seen := make(map[model.PostID]bool, len(records))
	for _, r := range records {
		if r.ID == "" {
			storageLogger.Warn().Str("title", r.Title).Msg("Skipping stored post without id")
			continue
		}
		if seen[r.ID] {
			storageLogger.Warn().Str("id", string(r.ID)).Str("title", r.Title).Msg("Skipping stored post with duplicate id")
			continue
		}
		seen[r.ID] = true
		posts = append(posts, r.toPost())
	}
	return posts, nil
}

func looksLikeJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
