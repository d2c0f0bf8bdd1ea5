package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by the CORS layer
	},
}

// Message types sent to clients.
const (
	TypeSnapshot      = "snapshot"
	TypeFrame         = "frame"
	TypeSessionClosed = "session_closed"
	TypeError         = "error"
)

// WSMessage is the envelope of every message sent to a client.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub fans session frames out to the websocket clients watching them.
type Hub struct {
	log        *zap.Logger
	rooms      map[string]map[*Client]bool // session id -> clients
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log.Named("ws"),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.session]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[c.session] = room
			}
			room[c] = true
			h.mu.Unlock()
			h.log.Debug("client joined", zap.String("session", c.session), zap.Int("room_size", len(room)))
		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.session]; ok && room[c] {
				delete(room, c)
				close(c.send)
				if len(room) == 0 {
					delete(h.rooms, c.session)
				}
			}
			h.mu.Unlock()
			h.log.Debug("client left", zap.String("session", c.session))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// Serve upgrades the request and streams the session to it, starting with
// the given snapshot.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, snap game.Snapshot) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	c := &Client{hub: h, conn: conn, session: snap.ID, send: make(chan []byte, 256)}
	if data, err := encode(TypeSnapshot, snap); err == nil {
		c.send <- data
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// Broadcast sends an encoded message to every client of a session. Slow
// clients drop messages rather than stall the frame loop.
func (h *Hub) Broadcast(session string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[session] {
		select {
		case c.send <- data:
		default:
			h.log.Debug("client send buffer full, dropping message", zap.String("session", session))
		}
	}
}

// PublishFrame lets the hub serve as the session manager's publisher when
// frames are not relayed through Redis.
func (h *Hub) PublishFrame(_ context.Context, f *game.Frame) error {
	data, err := encode(TypeFrame, f)
	if err != nil {
		return err
	}
	h.Broadcast(f.Session, data)
	return nil
}

// SessionClosed tells the session's clients it has ended.
func (h *Hub) SessionClosed(session string) {
	if data, err := encode(TypeSessionClosed, map[string]string{"session": session}); err == nil {
		h.Broadcast(session, data)
	}
}

// RoomSize returns the number of clients watching a session.
func (h *Hub) RoomSize(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[session])
}

func encode(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: typ, Data: data})
}
