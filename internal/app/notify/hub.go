package notify

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"usersettings/internal/pkg/logx"
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("notify: hub is shut down")

// Hub fans events out to the connections of each user.
type Hub struct {
	// conns maps a user ID to the set of its open connections.
	conns map[string]map[*Conn]struct{}

	// mu protects conns and closed. Closing a send channel only happens under the write lock,
	// so Publish (read lock) never sends on a closed channel.
	mu sync.RWMutex

	closed bool

	logger zerolog.Logger
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]map[*Conn]struct{}),
		logger: logx.Component("notify_hub"),
	}
}

// Register adds c to the connections of its user.
func (h *Hub) Register(c *Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	set, ok := h.conns[c.userID]
	if !ok {
		set = make(map[*Conn]struct{})
		h.conns[c.userID] = set
	}
	set[c] = struct{}{}

	h.logger.Debug().Str("user_id", c.userID).Int("connections", len(set)).Msg("Connection registered")
	return nil
}

// Unregister removes c and closes its send queue. Safe to call more than once.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, c.userID)
	}
	c.closeSend()

	h.logger.Debug().Str("user_id", c.userID).Msg("Connection unregistered")
}

// Publish queues ev on every connection of userID and returns how many accepted it.
// Connections whose queue is full miss the event.
func (h *Hub) Publish(userID string, ev Event) int {
	message, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(ev.Type)).Msg("Failed to marshal event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.conns[userID] {
		if c.enqueue(message) {
			delivered++
		}
	}

	h.logger.Debug().
		Str("user_id", userID).
		Str("event_type", string(ev.Type)).
		Int("delivered", delivered).
		Msg("Event published")

	return delivered
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns[userID])
}

// Shutdown closes every send queue, which makes each WritePump send a close frame and exit.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	total := 0
	for _, set := range h.conns {
		for c := range set {
			c.closeSend()
			total++
		}
	}
	h.conns = make(map[string]map[*Conn]struct{})

	h.logger.Info().Int("connections", total).Msg("Hub shutdown complete.")
}
