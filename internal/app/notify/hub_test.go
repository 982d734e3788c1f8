package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersettings/internal/app/settings"
)

// conns in these tests have no socket; only the queue side is exercised.
func newTestConn(h *Hub, userID string) *Conn {
	return NewConn(h, nil, userID)
}

func TestHub_PublishReachesOnlyThatUser(t *testing.T) {
	h := NewHub()
	a1 := newTestConn(h, "alice")
	a2 := newTestConn(h, "alice")
	b := newTestConn(h, "bob")
	for _, c := range []*Conn{a1, a2, b} {
		require.NoError(t, h.Register(c))
	}

	delivered := h.Publish("alice", NewSettingsEvent(settings.UserSettings{Name: "Alice", Password: "secret"}))

	assert.Equal(t, 2, delivered)
	assert.Len(t, a1.send, 1)
	assert.Len(t, a2.send, 1)
	assert.Len(t, b.send, 0)

	var ev InboundEvent
	require.NoError(t, json.Unmarshal(<-a1.send, &ev))
	assert.Equal(t, TypeSettingsUpdated, ev.Type)

	var payload settings.UserSettings
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "Alice", payload.Name)
	assert.Empty(t, payload.Password, "credentials are never streamed")
}

func TestHub_UnregisterClosesQueue(t *testing.T) {
	h := NewHub()
	c := newTestConn(h, "alice")
	require.NoError(t, h.Register(c))

	h.Unregister(c)
	h.Unregister(c)

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Zero(t, h.Connections("alice"))
	assert.Zero(t, h.Publish("alice", NewSettingsEvent(settings.UserSettings{})))
}

func TestHub_FullQueueDropsEvent(t *testing.T) {
	h := NewHub()
	c := newTestConn(h, "alice")
	require.NoError(t, h.Register(c))

	for i := 0; i < sendQueueSize; i++ {
		require.Equal(t, 1, h.Publish("alice", NewSettingsEvent(settings.UserSettings{})))
	}

	assert.Equal(t, 0, h.Publish("alice", NewSettingsEvent(settings.UserSettings{})))
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub()
	c := newTestConn(h, "alice")
	require.NoError(t, h.Register(c))

	h.Shutdown()
	h.Shutdown()

	_, ok := <-c.send
	assert.False(t, ok)
	assert.ErrorIs(t, h.Register(newTestConn(h, "bob")), ErrHubClosed)
	assert.Zero(t, h.Connections("alice"))

	// unregistering after shutdown must not close the queue twice
	h.Unregister(c)
}
