package api

import (
	"net/http"
	"strings"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/query"
	"github.com/rs/zerolog"
)

type listResponse struct {
	Posts []model.Post `json:"posts"`
	Total int          `json:"total"`
}

type createResponse struct {
	ID model.PostID `json:"id"`
}

type likeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// listing swaps each post for its listing representation, keeping the order of posts.
func (h *Handler) listing(posts []model.Post) []model.Post {
	byID := make(map[model.PostID]model.Post, len(posts))
	for _, p := range h.repo.List() {
		byID[p.ID] = p
	}

	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if lp, ok := byID[p.ID]; ok {
			out = append(out, lp)
		}
	}
	return out
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request) {
	sortBy, order, err := h.sortParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := r.URL.Query()
	posts := query.Search(h.repo.Posts(), params.Get("q"))
	if c := params.Get("category"); c != "" {
		posts = query.FilterByCategory(posts, c)
	}
	if t := params.Get("tag"); t != "" {
		posts = query.FilterByTag(posts, t)
	}
	if a := params.Get("author"); a != "" {
		posts = query.FilterByAuthor(posts, model.UserID(a))
	}
	posts = h.listing(query.Sort(posts, sortBy, order))

	writeJSON(w, http.StatusOK, listResponse{Posts: posts, Total: len(posts)})
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.EnforceUser(w, r)
	if err != nil {
		return
	}

	var draft model.Draft
	if !decodeBody(w, r, &draft) {
		return
	}
	if strings.TrimSpace(draft.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(draft.Content) == "" && strings.TrimSpace(draft.Markdown) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	id, err := h.repo.CreatePost(r.Context(), draft, user)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

// getPost counts a view and returns the post with its full content.
func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	id := postID(r)
	h.repo.IncrementViews(id)

	post, ok := h.repo.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// authorize returns the post when user wrote it or is an admin, writing the
// error response otherwise.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, user *model.User) (model.Post, bool) {
	post, ok := h.repo.Get(postID(r))
	if !ok {
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
		return model.Post{}, false
	}
	if post.AuthorID != user.ID && !user.IsAdmin() {
		zerolog.Ctx(r.Context()).Warn().
			Str("post_id", string(post.ID)).
			Str("user_id", string(user.ID)).
			Msg("Refused change to another author's post")
		writeError(w, http.StatusForbidden, config.ErrForbidden)
		return model.Post{}, false
	}
	return post, true
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.EnforceUser(w, r)
	if err != nil {
		return
	}

	var update model.PostUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	if update.IsEmpty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	post, ok := h.authorize(w, r, user)
	if !ok {
		return
	}
	if err := h.repo.UpdatePost(post.ID, update); err != nil {
		writeRepoError(w, r, err)
		return
	}

	updated, _ := h.repo.Get(post.ID)
	writeJSON(w, http.StatusOK, updated)
}

// deletePost is idempotent: deleting an unknown post succeeds.
func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.EnforceUser(w, r)
	if err != nil {
		return
	}

	if _, exists := h.repo.Get(postID(r)); exists {
		post, ok := h.authorize(w, r, user)
		if !ok {
			return
		}
		h.repo.DeletePost(post.ID)
		zerolog.Ctx(r.Context()).Info().Str("post_id", string(post.ID)).Msg("Post deleted")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.EnforceUser(w, r)
	if err != nil {
		return
	}

	id := postID(r)
	if err := h.repo.ToggleLike(id, user); err != nil {
		writeRepoError(w, r, err)
		return
	}

	post, ok := h.repo.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Liked: post.Likes.Has(user.ID), Likes: len(post.Likes)})
}

func (h *Handler) postEvents(w http.ResponseWriter, r *http.Request) {
	id := postID(r)
	if _, ok := h.repo.Get(id); !ok {
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
		return
	}
	h.events.ServeStream(w, r, id)
}
