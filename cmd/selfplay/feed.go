package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const feedPingInterval = 30 * time.Second

type feedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type feedGame struct {
	GameID     string  `json:"game_id"`
	WorkerID   int     `json:"worker_id"`
	Winner     string  `json:"winner"`
	Moves      int     `json:"moves"`
	BlackScore float64 `json:"black_score"`
	WhiteScore float64 `json:"white_score"`
	Notation   string  `json:"notation"`
}

type feedStats struct {
	Games       int64   `json:"games"`
	Moves       int64   `json:"moves"`
	MovesPerSec float64 `json:"moves_per_sec"`
	UptimeSec   float64 `json:"uptime_sec"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// feedHub fans finished games and periodic stats out to WebSocket clients.
// A slow client drops messages rather than stalling the workers.
type feedHub struct {
	mu        sync.Mutex
	clients   map[*feedClient]struct{}
	broadcast chan []byte
	upgrader  websocket.Upgrader
	closed    bool
}

func newFeedHub() *feedHub {
	return &feedHub{
		clients:   make(map[*feedClient]struct{}),
		broadcast: make(chan []byte, 64),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *feedHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			h.closed = true
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case data := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *feedHub) publish(kind string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(feedMessage{Type: kind, Payload: raw})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

func (h *feedHub) PublishGame(g feedGame)   { h.publish("game", g) }
func (h *feedHub) PublishStats(s feedStats) { h.publish("stats", s) }

func (h *feedHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register reports false once Run has returned.
func (h *feedHub) register(c *feedClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *feedHub) unregister(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *feedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &feedClient{conn: conn, send: make(chan []byte, 16)}
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed stopped"))
		conn.Close()
		return
	}

	go func() {
		defer conn.Close()
		_ = writeWithHeartbeat(conn, c.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(feedMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < feedPingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
