// Package query derives filtered and sorted views of a post collection.
// Functions never modify their input.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/debemdeboas/the-journal/internal/model"
)

type SortBy string

const (
	SortRecent SortBy = "recent"
	SortOldest SortBy = "oldest"
	SortLikes  SortBy = "likes"
	SortViews  SortBy = "views"
)

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

func ParseSortBy(s string) (SortBy, error) {
	switch v := SortBy(strings.ToLower(strings.TrimSpace(s))); v {
	case SortRecent, SortOldest, SortLikes, SortViews:
		return v, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

func ParseOrder(s string) (Order, error) {
	switch v := Order(strings.ToLower(strings.TrimSpace(s))); v {
	case OrderAsc, OrderDesc:
		return v, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}

// Search matches q case-insensitively against title, excerpt, content,
// category, author name and tags. A blank query matches everything.
func Search(posts []model.Post, q string) []model.Post {
	if strings.TrimSpace(q) == "" {
		return slices.Clone(posts)
	}
	q = strings.ToLower(q)

	return filter(posts, func(p *model.Post) bool {
		for _, field := range []string{p.Title, p.Excerpt, p.Content, p.Category, p.AuthorName} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return slices.ContainsFunc(p.Tags, func(tag string) bool {
			return strings.Contains(strings.ToLower(tag), q)
		})
	})
}

func FilterByCategory(posts []model.Post, category string) []model.Post {
	return filter(posts, func(p *model.Post) bool { return p.Category == category })
}

func FilterByTag(posts []model.Post, tag string) []model.Post {
	return filter(posts, func(p *model.Post) bool { return p.HasTag(tag) })
}

func FilterByAuthor(posts []model.Post, authorID model.UserID) []model.Post {
	return filter(posts, func(p *model.Post) bool { return p.AuthorID == authorID })
}

func filter(posts []model.Post, keep func(*model.Post) bool) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for i := range posts {
		if keep(&posts[i]) {
			out = append(out, posts[i])
		}
	}
	return out
}

// Sort orders a copy of posts. Each key has a natural ascending order:
// recent by creation time, oldest the reverse of recent, likes and views by
// count. OrderDesc inverts it. Ties keep their input order.
func Sort(posts []model.Post, sortBy SortBy, order Order) []model.Post {
	out := slices.Clone(posts)

	var compare func(a, b model.Post) int
	switch sortBy {
	case SortOldest:
		compare = func(a, b model.Post) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortLikes:
		compare = func(a, b model.Post) int { return cmp.Compare(len(a.Likes), len(b.Likes)) }
	case SortViews:
		compare = func(a, b model.Post) int { return cmp.Compare(a.Views, b.Views) }
	default:
		compare = func(a, b model.Post) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}

	if order == OrderDesc {
		natural := compare
		compare = func(a, b model.Post) int { return natural(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// SpotlightCandidates returns the first limit posts of Sort(posts, sortBy, order).
// A non-positive limit returns every post.
func SpotlightCandidates(posts []model.Post, sortBy SortBy, order Order, limit int) []model.Post {
	sorted := Sort(posts, sortBy, order)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Spotlighted keeps the posts flagged for the spotlight.
func Spotlighted(posts []model.Post) []model.Post {
	return filter(posts, func(p *model.Post) bool { return p.Spotlight })
}

func AllCategories(posts []model.Post) []string {
	var categories []string
	for i := range posts {
		if c := posts[i].Category; c != "" {
			categories = append(categories, c)
		}
	}
	return sortedUnique(categories)
}

func AllTags(posts []model.Post) []string {
	var tags []string
	for i := range posts {
		for _, t := range posts[i].Tags {
			if t != "" {
				tags = append(tags, t)
			}
		}
	}
	return sortedUnique(tags)
}

func sortedUnique(values []string) []string {
	slices.Sort(values)
	values = slices.Compact(values)
	if values == nil {
		return []string{}
	}
	return values
}
