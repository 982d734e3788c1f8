/*
Package notify pushes settings changes to the WebSocket connections of a user.

The Hub tracks every open connection per user ID; handlers publish an Event after
each successful settings update or avatar upload and every connection of that
user receives it.
*/
package notify

import (
	"encoding/json"
	"time"

	"usersettings/internal/app/settings"
)

// PathStream is the WebSocket endpoint serving the change stream.
const PathStream = "/ws/settings"

// EventType names the kind of an Event.
type EventType string

const (
	// TypeSettingsUpdated carries the persisted UserSettings after a change.
	TypeSettingsUpdated EventType = "SETTINGS_UPDATED"
)

// Event is one outbound stream message.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// InboundEvent is the decoding counterpart of Event used by stream consumers.
type InboundEvent struct {
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewSettingsEvent builds a TypeSettingsUpdated event. Credential fields are never sent.
func NewSettingsEvent(s settings.UserSettings) Event {
	return Event{
		Type:      TypeSettingsUpdated,
		Payload:   s.WithoutCredentials(),
		Timestamp: time.Now().UnixMilli(),
	}
}
