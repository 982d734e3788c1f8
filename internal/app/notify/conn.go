package notify

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"usersettings/internal/pkg/logx"
)

const (
	// timeout for writing one frame.
	writeWait = 10 * time.Second

	// time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// ping interval, shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// the stream is server-to-client; inbound frames are control frames or small acks.
	maxMessageSize = 1024

	sendQueueSize = 16
)

// Conn is one WebSocket connection subscribed to a user's changes.
type Conn struct {
	hub    *Hub
	ws     *websocket.Conn
	userID string

	// queued outbound messages, closed by the hub.
	send      chan []byte
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewConn wraps ws for userID. Register it with the hub before starting the pumps.
func NewConn(hub *Hub, ws *websocket.Conn, userID string) *Conn {
	return &Conn{
		hub:    hub,
		ws:     ws,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Component("notify_conn").With().Str("user_id", userID).Logger(),
	}
}

func (c *Conn) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Send queue full, dropping event")
		return false
	}
}

func (c *Conn) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump keeps the read side alive for pongs and close frames.
// It returns when the peer disconnects, then unregisters the connection.
func (c *Conn) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		if err := c.ws.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error")
		}
	}()

	c.ws.SetReadLimit(maxMessageSize)

	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected close")
			}
			return
		}
	}
}

// WritePump drains the send queue to the socket and pings the peer.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.ws.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
