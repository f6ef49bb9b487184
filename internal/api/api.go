// Package api exposes the content repository as JSON over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/debemdeboas/the-journal/internal/auth"
	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/query"
	"github.com/debemdeboas/the-journal/internal/repository"
	"github.com/debemdeboas/the-journal/internal/routes"
	"github.com/debemdeboas/the-journal/internal/sse"
	"github.com/rs/zerolog"
)

var apiLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

const maxBodyBytes = 1 << 20

type Handler struct {
	repo    *repository.ContentRepository
	auth    auth.AuthProvider
	events  *sse.SSEClients
	content config.ContentConfig

	defaultSort  query.SortBy
	defaultOrder query.Order
}

// NewHandler returns the API handler. Unparseable default sort settings fall
// back to newest first.
func NewHandler(repo *repository.ContentRepository, provider auth.AuthProvider, events *sse.SSEClients, content config.ContentConfig) *Handler {
	h := &Handler{
		repo:         repo,
		auth:         provider,
		events:       events,
		content:      content,
		defaultSort:  query.SortRecent,
		defaultOrder: query.OrderDesc,
	}
	if s, err := query.ParseSortBy(content.DefaultSort); err == nil {
		h.defaultSort = s
	}
	if o, err := query.ParseOrder(content.DefaultOrder); err == nil {
		h.defaultOrder = o
	}
	return h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	get := func(path string, fn http.HandlerFunc) { mux.HandleFunc(routes.Method(http.MethodGet, path), fn) }

	get(routes.APIPosts, h.listPosts)
	mux.HandleFunc(routes.Method(http.MethodPost, routes.APIPosts), h.createPost)
	get(routes.APIPost, h.getPost)
	mux.HandleFunc(routes.Method(http.MethodPatch, routes.APIPost), h.updatePost)
	mux.HandleFunc(routes.Method(http.MethodDelete, routes.APIPost), h.deletePost)
	mux.HandleFunc(routes.Method(http.MethodPost, routes.APIPostLike), h.toggleLike)
	mux.HandleFunc(routes.Method(http.MethodPost, routes.APIPostComments), h.addComment)
	mux.HandleFunc(routes.Method(http.MethodDelete, routes.APIPostComment), h.deleteComment)
	get(routes.APIPostEvents, h.postEvents)

	get(routes.APISpotlight, h.spotlight)
	get(routes.APICategories, h.categories)
	get(routes.APITags, h.tags)

	get(routes.APISyntaxThemes, syntaxThemes)
	get(routes.SyntaxCSS, h.syntaxCSS)
	get(routes.RobotsPath, robots)
	get(routes.HealthPath, h.health)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeRepoError maps repository errors onto status codes.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrUnauthorized):
		auth.WriteUnauthorized(w)
	case errors.Is(err, repository.ErrForbidden):
		writeError(w, http.StatusForbidden, config.ErrForbidden)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, config.ErrPostNotFound)
	case errors.Is(err, repository.ErrEmptyComment):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, config.ErrInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Invalid request body")
		writeError(w, http.StatusBadRequest, config.ErrInvalidBody)
		return false
	}
	return true
}

func postID(r *http.Request) model.PostID {
	return model.PostID(r.PathValue("id"))
}

// sortParams reads sort and order, using the configured defaults when absent.
func (h *Handler) sortParams(r *http.Request) (query.SortBy, query.Order, error) {
	sortBy, order := h.defaultSort, h.defaultOrder

	q := r.URL.Query()
	if s := q.Get("sort"); s != "" {
		parsed, err := query.ParseSortBy(s)
		if err != nil {
			return "", "", err
		}
		sortBy = parsed
	}
	if o := q.Get("order"); o != "" {
		parsed, err := query.ParseOrder(o)
		if err != nil {
			return "", "", err
		}
		order = parsed
	}
	return sortBy, order, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
