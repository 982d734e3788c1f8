package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"usersettings/internal/app/notify"
	"usersettings/internal/app/settings"
)

// ErrNoToken is returned by Watch when the client has no bearer token.
var ErrNoToken = errors.New("remote: watch requires a token")

// Watch streams settings changes pushed by the service and calls fn for each one.
// It blocks until ctx is done (returning nil) or the stream fails.
func (c *Client) Watch(ctx context.Context, fn func(settings.UserSettings)) error {
	token := c.Token()
	if token == "" {
		return ErrNoToken
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.watchURL(token), nil)
	if err != nil {
		return fmt.Errorf("dial settings stream: %w", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-stop:
			_ = conn.Close()
		}
	}()

	c.logger.Info().Msg("Settings stream connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read settings stream: %w", err)
		}

		var event notify.InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring malformed stream event")
			continue
		}

		if event.Type != notify.TypeSettingsUpdated {
			c.logger.Debug().Str("event_type", string(event.Type)).Msg("Ignoring stream event")
			continue
		}

		var updated settings.UserSettings
		if err := json.Unmarshal(event.Payload, &updated); err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring malformed settings payload")
			continue
		}

		fn(updated.WithoutCredentials())
	}
}

func (c *Client) watchURL(token string) string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = u.Path + notify.PathStream
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String()
}
