// Package model defines core data structures and types for the blog application.
package model

import (
	"slices"
	"strings"
	"time"
)

type PostID string

type CommentID string

type Post struct {
	ID PostID `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`

	// Author data is captured when the post is created and never re-synced.
	AuthorID     UserID `json:"authorId"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`

	Category string   `json:"category"`
	Tags     []string `json:"tags"`

	Likes    LikeSet   `json:"likes"`
	Views    int       `json:"views"`
	Comments []Comment `json:"comments"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Reading time in minutes, derived from Content.
	ReadTime  int  `json:"readTime"`
	Spotlight bool `json:"spotlight,omitempty"`
}

type Comment struct {
	ID CommentID `json:"id"`

	AuthorID     UserID `json:"authorId"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`

	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	IsAnonymous bool      `json:"isAnonymous"`
}

// Clone returns a deep copy so callers can't alias the repository's slices.
func (p *Post) Clone() Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return c
}

func (p *Post) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

func (p *Post) FindComment(id CommentID) int {
	return slices.IndexFunc(p.Comments, func(c Comment) bool {
		return c.ID == id
	})
}

// LikeSet is an insertion-ordered set of user ids.
type LikeSet []UserID

func NewLikeSet(ids ...UserID) LikeSet {
	s := make(LikeSet, 0, len(ids))
	for _, id := range ids {
		if id != "" && !s.Has(id) {
			s = append(s, id)
		}
	}
	return s
}

func (s LikeSet) Has(id UserID) bool {
	return slices.Contains(s, id)
}

// Toggle adds id when absent and removes it when present.
func (s LikeSet) Toggle(id UserID) LikeSet {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return append(slices.Clone(s), id)
}

// Draft holds the caller-supplied fields of a new post.
// Markdown is rendered into Content when Content is empty.
type Draft struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Markdown  string   `json:"markdown,omitempty"`
	Excerpt   string   `json:"excerpt"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Spotlight bool     `json:"spotlight,omitempty"`
}

// PostUpdate is a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	Excerpt   *string   `json:"excerpt,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Spotlight *bool     `json:"spotlight,omitempty"`
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Excerpt == nil &&
		u.Category == nil && u.Tags == nil && u.Spotlight == nil
}

// NormalizeTags trims tags, drops empty ones and removes duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
