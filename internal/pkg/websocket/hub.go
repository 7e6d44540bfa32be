package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification is a notice pushed to live subscribers
type Notification struct {
	Type string `json:"type"`

	// NoticeID is the persisted notice
	NoticeID int64 `json:"noticeId"`

	// CampusID is 0 for notices addressed to every campus
	CampusID int64 `json:"campusId"`

	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Audience  string     `json:"audience"`
	PublishAt time.Time  `json:"publishAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Hub maintains the set of active clients and fans notices out to them
type Hub struct {
	// Registered clients organized by subscribed campus; 0 holds all-campus subscribers
	clients map[int64]map[*Client]bool

	broadcast  chan *Notification
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// done is closed when Run returns
	done chan struct{}

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Notification, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case n := <-h.broadcast:
			h.broadcastNotification(n)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.campusID]; !ok {
		h.clients[client.campusID] = make(map[*Client]bool)
	}
	h.clients[client.campusID][client] = true

	h.logger.Info().
		Int64("campusID", client.campusID).
		Str("audience", client.audience).
		Str("addr", client.remoteAddr()).
		Msg("Notice subscriber registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client; h.mu must be held for writing
func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.campusID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.campusID)
	}

	h.logger.Info().
		Int64("campusID", client.campusID).
		Str("addr", client.remoteAddr()).
		Msg("Notice subscriber unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.removeLocked(client)
		}
	}
}

// broadcastNotification delivers to the notice's campus plus all-campus subscribers,
// or to everyone when the notice is global. Slow clients are dropped.
func (h *Hub) broadcastNotification(n *Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error().Err(err).Int64("noticeID", n.NoticeID).Msg("Failed to marshal notice for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []map[*Client]bool
	if n.CampusID == 0 {
		for _, set := range h.clients {
			targets = append(targets, set)
		}
	} else {
		targets = append(targets, h.clients[n.CampusID])
		targets = append(targets, h.clients[0])
	}

	delivered := 0
	for _, set := range targets {
		for client := range set {
			if !client.accepts(n.Audience) {
				continue
			}
			select {
			case client.send <- data:
				delivered++
			default:
				h.removeLocked(client)
			}
		}
	}

	h.logger.Debug().
		Int64("noticeID", n.NoticeID).
		Int64("campusID", n.CampusID).
		Int("delivered", delivered).
		Msg("Notice broadcast")
}

// Publish queues a notification for delivery without blocking the caller
func (h *Hub) Publish(n *Notification) {
	if n.Type == "" {
		n.Type = "notice.published"
	}
	select {
	case h.broadcast <- n:
	default:
		h.logger.Warn().Int64("noticeID", n.NoticeID).Msg("Notice broadcast queue full, dropping live update")
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}
