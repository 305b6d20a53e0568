// README: Websocket driver sessions; preferred delivery channel when connected.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"ridebooking/internal/types"
)

var ErrNoSession = errors.New("no websocket session")

// session serializes writes to one connection.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// WSRegistry holds the currently connected driver sessions.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[types.ID]*session
}

func NewWSRegistry() *WSRegistry {
	return &WSRegistry{sessions: make(map[types.ID]*session)}
}

func (r *WSRegistry) Add(driverID types.ID, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[driverID] = &session{conn: conn}
}

func (r *WSRegistry) Remove(driverID types.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, driverID)
}

type wsMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (r *WSRegistry) Notify(ctx context.Context, driverID types.ID, token, title, body string) error {
	r.mu.RLock()
	s, ok := r.sessions[driverID]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return s.send(wsMessage{Title: title, Body: body})
}
