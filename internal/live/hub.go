// Package live pushes events to currently connected sessions. A user may
// hold any number of open sessions; Publish delivers to all of them.
// Delivery is fire-and-forget: nothing is queued for absent or slow
// consumers, the durable notification log covers those.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome enumerates what happened to a published event.
type Outcome int

const (
	DeliveredLive Outcome = iota
	NoActiveSession
)

func (o Outcome) String() string {
	switch o {
	case DeliveredLive:
		return "delivered-live"
	case NoActiveSession:
		return "no-active-session"
	default:
		return "unknown"
	}
}

// Message is the wire envelope sent over the socket.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NewPostEvent is the payload of the new_post event.
type NewPostEvent struct {
	PostID    int64     `json:"postId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "bloggy_live_sessions",
	Help: "number of currently connected live sessions",
})

type session struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks open sessions grouped by user.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[int64]map[*session]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is token-authenticated, not cookie-authenticated, so
			// cross-origin upgrades carry no ambient credentials.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[int64]map[*session]struct{}),
	}
}

// ServeWS upgrades the request and joins the user's delivery group until
// the peer disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	s := &session{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.register(s)
	go s.writePump()
	go h.readPump(s)

	return nil
}

// Publish sends the message to every open session of the user and reports
// whether at least one delivery happened. A session too slow to drain its
// buffer is dropped rather than awaited.
func (h *Hub) Publish(userID int64, message Message) Outcome {
	payload, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to encode live message", "error", err)
		return NoActiveSession
	}

	h.mu.RLock()
	group := make([]*session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		group = append(group, s)
	}
	h.mu.RUnlock()

	delivered := false
	for _, s := range group {
		select {
		case s.send <- payload:
			delivered = true
		default:
			h.log.Warn("dropping slow live session", "user_id", userID)
			h.unregister(s)
			s.conn.Close()
		}
	}

	if !delivered {
		return NoActiveSession
	}
	return DeliveredLive
}

// SessionCount reports open sessions for the user.
func (h *Hub) SessionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.sessions[s.userID]
	if !ok {
		group = make(map[*session]struct{})
		h.sessions[s.userID] = group
	}
	group[s] = struct{}{}
	liveSessions.Inc()
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.sessions[s.userID]
	if !ok {
		return
	}
	if _, ok := group[s]; !ok {
		return
	}

	delete(group, s)
	if len(group) == 0 {
		delete(h.sessions, s.userID)
	}
	liveSessions.Dec()
}

// readPump discards inbound frames; the channel is one-way. Its job is to
// notice the peer going away and release the session.
func (h *Hub) readPump(s *session) {
	defer func() {
		h.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("live session read error", "user_id", s.userID, "error", err)
			}
			return
		}
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
