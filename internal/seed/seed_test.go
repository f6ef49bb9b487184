package seed

import (
	"testing"

	"github.com/debemdeboas/the-journal/internal/model"
)

func TestPosts(t *testing.T) {
	posts := Posts()

	if len(posts) != 5 {
		t.Fatalf("Expected 5 seed posts, got %d", len(posts))
	}

	ids := make(map[model.PostID]bool)
	for i, p := range posts {
		if p.ID == "" || ids[p.ID] {
			t.Errorf("Expected unique non-empty id, got %q", p.ID)
		}
		ids[p.ID] = true

		if p.ReadTime < 1 {
			t.Errorf("Expected read time for %s, got %d", p.ID, p.ReadTime)
		}
		if p.UpdatedAt.Before(p.CreatedAt) {
			t.Errorf("Expected UpdatedAt >= CreatedAt for %s", p.ID)
		}
		if i > 0 && p.CreatedAt.After(posts[i-1].CreatedAt) {
			t.Errorf("Expected seed posts newest first, %s is newer than %s", p.ID, posts[i-1].ID)
		}
		if p.Comments == nil || p.Likes == nil {
			t.Errorf("Expected non-nil likes and comments for %s", p.ID)
		}
	}
}

func TestPostsReturnsCopies(t *testing.T) {
	a := Posts()
	a[0].Title = "changed"
	a[0].Tags[0] = "changed"

	b := Posts()
	if b[0].Title == "changed" || b[0].Tags[0] == "changed" {
		t.Error("Expected each call to return an independent seed set")
	}
}

func TestSeedTagDistribution(t *testing.T) {
	count := 0
	for _, p := range Posts() {
		if p.HasTag("go") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("Expected tag 'go' on exactly 2 seed posts, got %d", count)
	}
}
