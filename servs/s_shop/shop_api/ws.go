package shop_api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"

	"github.com/zggff/shopbot/bot"
)

const (
	EventReply  = "reply"
	EventReload = "reload"
	EventError  = "error"

	writeWait = 5 * time.Second

	MetricConnects    = "connects"
	MetricDisconnects = "disconnects"
	MetricDropped     = "dropped"
	MetricClients     = "clients"
)

// Counter receives hub counters. Clients is a gauge and goes through Set.
type Counter interface {
	Inc(name string)
	Set(name string, value int64)
}

type nopCounter struct{}

func (nopCounter) Inc(string)        {}
func (nopCounter) Set(string, int64) {}

// Event is one frame sent to a websocket client. Clients send bare
// bot.Update frames.
type Event struct {
	Type    string     `json:"type"`
	Reply   *bot.Reply `json:"reply,omitempty"`
	Version uint64     `json:"version,omitempty"`
	Error   string     `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(ev)
}

// Hub tracks open websocket chats so that reloads can be announced.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsConn]struct{}
	counter Counter
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithCounter reports connects, disconnects, dropped clients and the
// current client count to c.
func WithCounter(c Counter) HubOption {
	return func(h *Hub) {
		if c != nil {
			h.counter = c
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{clients: make(map[*wsConn]struct{}), counter: nopCounter{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends ev to every client; failed clients are dropped.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.send(ev); err != nil {
			if h.remove(c) {
				h.counter.Inc(MetricDropped)
			}
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) add(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.counter.Inc(MetricConnects)
	h.counter.Set(MetricClients, int64(len(h.clients)))
}

// remove reports whether c was still registered.
func (h *Hub) remove(c *wsConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	h.counter.Inc(MetricDisconnects)
	h.counter.Set(MetricClients, int64(len(h.clients)))
	return true
}

// HandleWS runs one chat: every text frame is decoded as a bot.Update and
// answered with a reply event.
func (h *Hub) HandleWS(shop IShop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := hlog.FromRequest(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		c := &wsConn{conn: conn}
		h.add(c)
		defer func() {
			h.remove(c)
			_ = conn.Close()
		}()
		log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

		ctx := r.Context()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Msg("websocket read failed")
				}
				return
			}
			var u bot.Update
			if err := json.Unmarshal(data, &u); err != nil {
				if err := c.send(Event{Type: EventError, Error: "invalid update: " + err.Error()}); err != nil {
					return
				}
				continue
			}
			reply, ok := shop.Handle(ctx, u)
			if !ok {
				continue
			}
			if err := c.send(Event{Type: EventReply, Reply: &reply}); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
