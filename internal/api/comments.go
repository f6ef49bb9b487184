package api

import (
	"net/http"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
)

type commentRequest struct {
	Content   string `json:"content"`
	Anonymous bool   `json:"anonymous"`
}

type commentResponse struct {
	ID model.CommentID `json:"id"`
}

// addComment accepts anonymous comments without a session.
func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var user *model.User
	if !req.Anonymous {
		u, err := h.auth.EnforceUser(w, r)
		if err != nil {
			return
		}
		user = u
	}

	id, err := h.repo.AddComment(postID(r), req.Content, user, req.Anonymous)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if id == "" {
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, commentResponse{ID: id})
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.EnforceUser(w, r)
	if err != nil {
		return
	}

	commentID := model.CommentID(r.PathValue("commentId"))
	if err := h.repo.DeleteComment(postID(r), commentID, user); err != nil {
		writeRepoError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
