package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// memClient collects everything the hub sends it.
type memClient struct {
	received [][]byte
	closed   bool
}

func (c *memClient) Send(message []byte) bool {
	c.received = append(c.received, message)
	return true
}

func (c *memClient) Close() { c.closed = true }

func (c *memClient) events(t *testing.T) []Envelope {
	t.Helper()
	var out []Envelope
	for _, raw := range c.received {
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		out = append(out, env)
	}
	return out
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := NewHub()
	h.Register("c1", &memClient{})

	require.True(t, h.Join("c1", "room"))
	require.False(t, h.Join("c1", "room"))
	require.Equal(t, 1, h.RoomSize("room"))
}

func TestHub_JoinUnknownConnection(t *testing.T) {
	h := NewHub()
	require.False(t, h.Join("ghost", "room"))
	require.Equal(t, 0, h.RoomSize("room"))
}

func TestHub_BroadcastToRoomScopesDelivery(t *testing.T) {
	h := NewHub()
	a, b, outsider := &memClient{}, &memClient{}, &memClient{}
	h.Register("a", a)
	h.Register("b", b)
	h.Register("x", outsider)
	h.Join("a", "room")
	h.Join("b", "room")

	h.BroadcastToRoom("room", "", "ev", map[string]string{"k": "v"})

	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
	require.Empty(t, outsider.received, "non-members must not observe room traffic")

	envs := a.events(t)
	require.Equal(t, "ev", envs[0].Event)
}

func TestHub_BroadcastToRoomSkipsSender(t *testing.T) {
	h := NewHub()
	a, b := &memClient{}, &memClient{}
	h.Register("a", a)
	h.Register("b", b)
	h.Join("a", "room")
	h.Join("b", "room")

	h.BroadcastToRoom("room", "a", "ev", nil)

	require.Empty(t, a.received)
	require.Len(t, b.received, 1)
}

func TestHub_Unicast(t *testing.T) {
	h := NewHub()
	a := &memClient{}
	h.Register("a", a)

	require.True(t, h.Unicast("a", "ev", nil))
	require.False(t, h.Unicast("gone", "ev", nil))
	require.Len(t, a.received, 1)
}

func TestHub_BroadcastGlobal(t *testing.T) {
	h := NewHub()
	a, b := &memClient{}, &memClient{}
	h.Register("a", a)
	h.Register("b", b)

	h.BroadcastGlobal("ev", nil)

	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
}

func TestHub_UnregisterDropsAllRooms(t *testing.T) {
	h := NewHub()
	a, b := &memClient{}, &memClient{}
	h.Register("a", a)
	h.Register("b", b)
	h.Join("a", "r1")
	h.Join("a", "r2")
	h.Join("b", "r1")

	h.Unregister("a")

	require.Equal(t, 1, h.RoomSize("r1"))
	require.Equal(t, 0, h.RoomSize("r2"))

	h.BroadcastToRoom("r1", "", "ev", nil)
	require.Empty(t, a.received)
	require.Len(t, b.received, 1)
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	h := NewHub()
	h.Register("a", &memClient{})
	h.Join("a", "room")

	h.Leave("a", "room")
	h.Leave("a", "room")
	require.Equal(t, 0, h.RoomSize("room"))

	// Rejoin after leave behaves like a first join
	require.True(t, h.Join("a", "room"))
}
