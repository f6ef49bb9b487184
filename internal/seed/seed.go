// Package seed holds the sample posts a fresh journal starts with.
package seed

import (
	"time"

	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/util"
)

func day(month time.Month, d, hour int) time.Time {
	return time.Date(2025, month, d, hour, 0, 0, 0, time.UTC)
}

// Posts returns a fresh copy of the seed set, newest first.
func Posts() []model.Post {
	posts := []model.Post{
		{
			ID:         "seed-welcome",
			Title:      "Welcome to The Journal",
			Content:    "<p>This is a place for long-form notes, half-finished ideas and the occasional essay.</p><p>Posts can be liked, commented on and filtered by category or tag. Sign in to write your own.</p>",
			Excerpt:    "A place for long-form notes, half-finished ideas and the occasional essay.",
			AuthorID:   "admin",
			AuthorName: "Admin",
			Category:   "Announcements",
			Tags:       []string{"welcome", "meta"},
			Likes:      model.LikeSet{"reader-1", "reader-2"},
			Views:      128,
			Comments: []model.Comment{
				{
					ID:         "seed-welcome-c1",
					AuthorID:   "reader-1",
					AuthorName: "Reader One",
					Content:    "Glad to see this up and running.",
					CreatedAt:  day(time.March, 14, 10),
				},
			},
			CreatedAt: day(time.March, 14, 9),
			UpdatedAt: day(time.March, 14, 9),
			Spotlight: true,
		},
		{
			ID:         "seed-writing-tests",
			Title:      "Writing tests that last",
			Content:    "<p>Tests outlive the code they were written for more often than we admit.</p><p>Table-driven tests keep the cases visible. Subtests keep failures readable. Fakes beat mocks when the interface is small.</p>",
			Excerpt:    "Table-driven tests, readable failures and small fakes.",
			AuthorID:   "admin",
			AuthorName: "Admin",
			Category:   "Engineering",
			Tags:       []string{"go", "testing"},
			Likes:      model.LikeSet{"reader-2"},
			Views:      64,
			Comments:   []model.Comment{},
			CreatedAt:  day(time.March, 2, 18),
			UpdatedAt:  day(time.March, 3, 8),
		},
		{
			ID:         "seed-notes-reading",
			Title:      "Notes on reading slowly",
			Content:    "<p>I read fewer books this year and remember more of them.</p><ul><li>One book at a time.</li><li>Notes in the margins.</li><li>A short summary when finished.</li></ul>",
			Excerpt:    "Fewer books, more of them remembered.",
			AuthorID:   "reader-1",
			AuthorName: "Reader One",
			Category:   "Books",
			Tags:       []string{"reading", "habits"},
			Likes:      model.LikeSet{},
			Views:      23,
			Comments: []model.Comment{
				{
					ID:          "seed-notes-reading-c1",
					AuthorID:    model.AnonymousUserID,
					AuthorName:  "Anonymous",
					Content:     "The summary habit changed how I read too.",
					CreatedAt:   day(time.February, 21, 12),
					IsAnonymous: true,
				},
			},
			CreatedAt: day(time.February, 20, 20),
			UpdatedAt: day(time.February, 20, 20),
		},
		{
			ID:         "seed-concurrency",
			Title:      "Concurrency patterns in Go",
			Content:    "<h2>Pipelines</h2><p>Stages connected by channels, each owning its goroutines.</p><h2>Fan-out</h2><p>Several workers reading from one channel until it is closed.</p><pre><code>for job := range jobs {\n\tresults &lt;- work(job)\n}</code></pre>",
			Excerpt:    "Pipelines, fan-out and knowing who closes the channel.",
			AuthorID:   "admin",
			AuthorName: "Admin",
			Category:   "Engineering",
			Tags:       []string{"go", "concurrency"},
			Likes:      model.LikeSet{"reader-1", "reader-2", "reader-3"},
			Views:      211,
			Comments:   []model.Comment{},
			CreatedAt:  day(time.February, 9, 14),
			UpdatedAt:  day(time.February, 9, 14),
			Spotlight:  true,
		},
		{
			ID:         "seed-no-notifications",
			Title:      "A week without notifications",
			Content:    "<p>I turned off every notification on my phone for a week.</p><p>The first two days were uncomfortable. By the end of the week I was checking messages twice a day and missing nothing important.</p>",
			Excerpt:    "Seven days of checking messages on my own schedule.",
			AuthorID:   "reader-2",
			AuthorName: "Reader Two",
			Category:   "Life",
			Tags:       []string{"focus", "habits"},
			Likes:      model.LikeSet{"admin"},
			Views:      47,
			Comments:   []model.Comment{},
			CreatedAt:  day(time.January, 27, 7),
			UpdatedAt:  day(time.January, 27, 7),
		},
	}

	for i := range posts {
		posts[i].ReadTime = util.ReadTime(posts[i].Content)
	}
	return posts
}
