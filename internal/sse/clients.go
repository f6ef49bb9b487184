// Package sse fans post change notifications out to Server-Sent Events clients.
package sse

import (
	"sync"

	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/rs/zerolog"
)

var sseLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	sseLogger = l
}

const clientBuffer = 8

type Client struct {
	Msg    chan string
	PostID model.PostID
}

func NewClient(postID model.PostID) *Client {
	return &Client{
		Msg:    make(chan string, clientBuffer),
		PostID: postID,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// Delete unregisters client and closes its channel. Deleting twice is a no-op.
func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.clients[client] {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client watching postID. Clients whose buffer
// is full miss the message.
func (s *SSEClients) Broadcast(postID model.PostID, msg string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for client := range s.clients {
		if client.PostID != postID {
			continue
		}
		select {
		case client.Msg <- msg:
		default:
			sseLogger.Debug().Str("post_id", string(postID)).Msg("Dropping event for slow client")
		}
	}
}
