package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/rs/zerolog"
)

// KeepAliveInterval is how often an idle stream receives a comment line.
var KeepAliveInterval = 30 * time.Second

// ServeStream streams events for postID until the request is cancelled.
func (s *SSEClients) ServeStream(w http.ResponseWriter, r *http.Request, postID model.PostID) {
	l := zerolog.Ctx(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", postID)
	flusher.Flush()

	client := NewClient(postID)
	s.Add(client)
	l.Debug().Str("post_id", string(postID)).Msg("SSE client connected")

	defer func() {
		s.Delete(client)
		l.Debug().Str("post_id", string(postID)).Msg("SSE client disconnected")
	}()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case msg := <-client.Msg:
			fmt.Fprintf(w, "event: post\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
