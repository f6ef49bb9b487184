// Package repository owns the in-memory post collection and every mutation of it.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/debemdeboas/the-journal/internal/cache"
	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/render"
	"github.com/debemdeboas/the-journal/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var repoLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

var (
	ErrUnauthorized = errors.New("sign in required")
	ErrForbidden    = errors.New("not allowed")
	ErrNotFound     = errors.New("post not found")
	ErrEmptyComment = errors.New("comment is empty")
)

// Snapshotter persists the whole collection. Save must not block on I/O.
type Snapshotter interface {
	Save(posts []model.Post)
	Load(ctx context.Context) ([]model.Post, bool)
}

type MarkdownRenderer interface {
	RenderString(md string) string
}

type ContentRepository struct {
	mu sync.RWMutex

	// Listing representation in collection order. Bodies over the threshold
	// are truncated here and kept whole in fullContent.
	posts       []model.Post
	fullContent *cache.Cache[model.PostID, string]

	store    Snapshotter
	renderer MarkdownRenderer
	notifier func(model.PostID)

	now   func() time.Time
	newID func() string

	initialViews         int
	fullContentThreshold int
	excerptLength        int
}

type Option func(*ContentRepository)

func WithClock(now func() time.Time) Option {
	return func(r *ContentRepository) { r.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(r *ContentRepository) { r.newID = newID }
}

func WithRenderer(renderer MarkdownRenderer) Option {
	return func(r *ContentRepository) { r.renderer = renderer }
}

func WithContentConfig(cfg config.ContentConfig) Option {
	return func(r *ContentRepository) {
		r.initialViews = max(cfg.InitialViews, 0)
		r.fullContentThreshold = cfg.FullContentThreshold
		r.excerptLength = cfg.ExcerptLength
		if r.renderer == nil {
			r.renderer = render.NewRenderer(cfg.SyntaxTheme, cfg.MarkdownRenderer)
		}
	}
}

// New returns an empty repository. store may be nil, in which case nothing is persisted.
func New(store Snapshotter, opts ...Option) *ContentRepository {
	r := &ContentRepository{
		posts:       []model.Post{},
		fullContent: cache.NewCache[model.PostID, string](),
		store:       store,
		now:         time.Now,
		newID:       uuid.NewString,

		fullContentThreshold: 4096,
		excerptLength:        160,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = render.NewRenderer("github", render.FlavorClassic)
	}
	return r
}

// SetChangeNotifier registers fn to be called with the id of every post that
// changes. View counts are not reported. fn runs with the repository locked
// and must not call back into it.
func (r *ContentRepository) SetChangeNotifier(fn func(model.PostID)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = fn
}

func (r *ContentRepository) notify(id model.PostID) {
	if r.notifier != nil {
		r.notifier(id)
	}
}

// Init loads the stored snapshot. A snapshot with fewer posts than seed is
// ignored and seed is stored in its place.
func (r *ContentRepository) Init(ctx context.Context, seed []model.Post) {
	var loaded []model.Post
	var ok bool
	if r.store != nil {
		loaded, ok = r.store.Load(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ok && len(loaded) >= len(seed) {
		repoLogger.Info().Int("posts", len(loaded)).Msg("Loaded stored snapshot")
		r.replaceLocked(loaded)
		return
	}

	repoLogger.Info().
		Bool("snapshot_found", ok).
		Int("stored", len(loaded)).
		Int("seed", len(seed)).
		Msg("Starting from seed posts")
	r.replaceLocked(seed)
	r.saveLocked()
}

func (r *ContentRepository) replaceLocked(posts []model.Post) {
	r.fullContent.Clear()
	r.posts = make([]model.Post, 0, len(posts))
	for i := range posts {
		r.posts = append(r.posts, r.splitContent(posts[i].Clone()))
	}
}

// splitContent moves an oversized body into the full-content cache and
// leaves a plain-text preview on the listing copy.
func (r *ContentRepository) splitContent(p model.Post) model.Post {
	if r.fullContentThreshold <= 0 || len(p.Content) <= r.fullContentThreshold {
		r.fullContent.Delete(p.ID)
		return p
	}
	r.fullContent.Set(p.ID, p.Content)
	p.Content = util.Excerpt(p.Content, r.fullContentThreshold)
	return p
}

func (r *ContentRepository) reunite(p model.Post) model.Post {
	p = p.Clone()
	if full, ok := r.fullContent.Get(p.ID); ok {
		p.Content = full
	}
	return p
}

func (r *ContentRepository) fullPostsLocked() []model.Post {
	out := make([]model.Post, len(r.posts))
	for i := range r.posts {
		out[i] = r.reunite(r.posts[i])
	}
	return out
}

func (r *ContentRepository) saveLocked() {
	if r.store == nil {
		return
	}
	r.store.Save(r.fullPostsLocked())
}

func (r *ContentRepository) indexLocked(id model.PostID) int {
	return slices.IndexFunc(r.posts, func(p model.Post) bool {
		return p.ID == id
	})
}

func (r *ContentRepository) unusedIDLocked() model.PostID {
	for {
		id := model.PostID(r.newID())
		if id != "" && r.indexLocked(id) < 0 {
			return id
		}
		repoLogger.Warn().Str("id", string(id)).Msg("Generated post id already in use, drawing again")
	}
}

func (r *ContentRepository) CreatePost(ctx context.Context, draft model.Draft, user *model.User) (model.PostID, error) {
	if user == nil {
		return "", ErrUnauthorized
	}

	content := draft.Content
	if strings.TrimSpace(content) == "" && strings.TrimSpace(draft.Markdown) != "" {
		content = r.renderer.RenderString(draft.Markdown)
	}

	excerpt := strings.TrimSpace(draft.Excerpt)
	if excerpt == "" {
		excerpt = util.Excerpt(content, r.excerptLength)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	post := model.Post{
		ID:           r.unusedIDLocked(),
		Title:        strings.TrimSpace(draft.Title),
		Content:      content,
		Excerpt:      excerpt,
		AuthorID:     user.ID,
		AuthorName:   user.Name,
		AuthorAvatar: user.Avatar,
		Category:     strings.TrimSpace(draft.Category),
		Tags:         model.NormalizeTags(draft.Tags),
		Likes:        model.LikeSet{},
		Views:        r.initialViews,
		Comments:     []model.Comment{},
		CreatedAt:    now,
		UpdatedAt:    now,
		ReadTime:     util.ReadTime(content),
		Spotlight:    draft.Spotlight,
	}

	r.posts = slices.Insert(r.posts, 0, r.splitContent(post))
	r.saveLocked()
	r.notify(post.ID)

	zerolog.Ctx(ctx).Info().Str("post_id", string(post.ID)).Str("author", string(user.ID)).Msg("Post created")
	return post.ID, nil
}

func (r *ContentRepository) UpdatePost(id model.PostID, update model.PostUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	post := r.reunite(r.posts[i])
	if update.Title != nil {
		post.Title = strings.TrimSpace(*update.Title)
	}
	if update.Content != nil {
		post.Content = *update.Content
		post.ReadTime = util.ReadTime(post.Content)
	}
	if update.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*update.Excerpt)
	}
	if update.Category != nil {
		post.Category = strings.TrimSpace(*update.Category)
	}
	if update.Tags != nil {
		post.Tags = model.NormalizeTags(*update.Tags)
	}
	if update.Spotlight != nil {
		post.Spotlight = *update.Spotlight
	}

	now := r.now()
	if now.Before(post.CreatedAt) {
		now = post.CreatedAt
	}
	post.UpdatedAt = now

	r.posts[i] = r.splitContent(post)
	r.saveLocked()
	r.notify(id)
	return nil
}

func (r *ContentRepository) DeletePost(id model.PostID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return
	}

	r.posts = slices.Delete(r.posts, i, i+1)
	r.fullContent.Delete(id)
	r.saveLocked()
	r.notify(id)
}

func (r *ContentRepository) ToggleLike(id model.PostID, user *model.User) error {
	if user == nil {
		return ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return nil
	}

	r.posts[i].Likes = r.posts[i].Likes.Toggle(user.ID)
	r.saveLocked()
	r.notify(id)
	return nil
}

// AddComment appends a comment. An unknown post id returns an empty id and no error.
func (r *ContentRepository) AddComment(id model.PostID, content string, user *model.User, isAnonymous bool) (model.CommentID, error) {
	if !isAnonymous && user == nil {
		return "", ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyComment
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return "", nil
	}

	comment := model.Comment{
		Content:   content,
		CreatedAt: r.now(),
	}
	if isAnonymous {
		comment.AuthorID = model.AnonymousUserID
		comment.AuthorName = "Anonymous"
		comment.IsAnonymous = true
	} else {
		comment.AuthorID = user.ID
		comment.AuthorName = user.Name
		comment.AuthorAvatar = user.Avatar
	}

	post := &r.posts[i]
	for {
		comment.ID = model.CommentID(r.newID())
		if comment.ID != "" && post.FindComment(comment.ID) < 0 {
			break
		}
	}

	post.Comments = append(slices.Clone(post.Comments), comment)
	r.saveLocked()
	r.notify(id)
	return comment.ID, nil
}

// DeleteComment removes a comment written by user. Admins may remove any
// comment; anonymous comments can only be removed by admins.
func (r *ContentRepository) DeleteComment(postID model.PostID, commentID model.CommentID, user *model.User) error {
	if user == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(postID)
	if i < 0 {
		return nil
	}
	post := &r.posts[i]

	j := post.FindComment(commentID)
	if j < 0 {
		return nil
	}

	c := post.Comments[j]
	ownComment := !c.IsAnonymous && c.AuthorID == user.ID
	if !ownComment && !user.IsAdmin() {
		return fmt.Errorf("delete comment %s: %w", commentID, ErrForbidden)
	}

	post.Comments = slices.Delete(slices.Clone(post.Comments), j, j+1)
	r.saveLocked()
	r.notify(postID)
	return nil
}

func (r *ContentRepository) IncrementViews(id model.PostID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return
	}

	r.posts[i].Views++
	r.saveLocked()
}

// Get returns the post with its full content.
func (r *ContentRepository) Get(id model.PostID) (model.Post, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return model.Post{}, false
	}
	return r.reunite(r.posts[i]), true
}

// Posts returns every post with its full content, in collection order.
func (r *ContentRepository) Posts() []model.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fullPostsLocked()
}

// List returns the listing representation, in collection order.
func (r *ContentRepository) List() []model.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Post, len(r.posts))
	for i := range r.posts {
		out[i] = r.posts[i].Clone()
	}
	return out
}

func (r *ContentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.posts)
}
