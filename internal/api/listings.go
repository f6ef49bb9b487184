package api

import (
	"net/http"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/query"
	"github.com/debemdeboas/the-journal/internal/render"
	"github.com/debemdeboas/the-journal/internal/util"
)

// spotlight returns the top posts by the requested sort. With flagged=true
// only posts marked for the spotlight are considered.
func (h *Handler) spotlight(w http.ResponseWriter, r *http.Request) {
	sortBy, order, err := h.sortParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", h.content.SpotlightLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts := h.repo.Posts()
	if boolParam(r, "flagged") {
		posts = query.Spotlighted(posts)
	}

	writeJSON(w, http.StatusOK, h.listing(query.SpotlightCandidates(posts, sortBy, order, limit)))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.AllCategories(h.repo.List()))
}

func (h *Handler) tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.AllTags(h.repo.List()))
}

// syntaxTheme picks ?theme=, then the syntax theme cookie, then the configured theme.
func (h *Handler) syntaxTheme(r *http.Request) string {
	if theme := r.URL.Query().Get("theme"); theme != "" {
		return theme
	}
	if cookie, err := r.Cookie(config.CookieSyntaxTheme); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return h.content.SyntaxTheme
}

func syntaxThemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.SyntaxThemes())
}

func (h *Handler) syntaxCSS(w http.ResponseWriter, r *http.Request) {
	theme := h.syntaxTheme(r)

	css := render.SyntaxCSS(theme)
	etag := `"` + util.ContentHashString(css) + `"`

	w.Header().Set(config.HCacheControl, "public, max-age=3600")
	w.Header().Set(config.HETag, etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Write([]byte(css))
}

func robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypeText)
	w.Write([]byte("User-agent: *\nDisallow:"))
}

type healthResponse struct {
	Status string `json:"status"`
	Posts  int    `json:"posts"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Posts: h.repo.Len()})
}

