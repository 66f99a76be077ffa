package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// drain reads everything currently buffered on a client's send channel
func drain(t *testing.T, c *Client) []envelope {
	t.Helper()

	var events []envelope
	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return events
			}
			var env envelope
			require.NoError(t, json.Unmarshal(data, &env))
			events = append(events, env)
		default:
			return events
		}
	}
}

func statusEvents(t *testing.T, events []envelope) []StatusPayload {
	t.Helper()

	var statuses []StatusPayload
	for _, env := range events {
		if env.Type != EventUserStatusChange {
			continue
		}
		var p StatusPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		statuses = append(statuses, p)
	}
	return statuses
}

func newTestClient(hub *Hub, connID, userID string) *Client {
	return NewClient(connID, userID, userID, nil, hub)
}

func TestRegistryAddRemove(t *testing.T) {
	hub := NewHub()

	assert.Empty(t, hub.ConnectionsOf("u1"), "unknown user yields the empty set")

	c1 := newTestClient(hub, "conn-1", "u1")
	hub.AddClient(c1)
	assert.ElementsMatch(t, []string{"conn-1"}, hub.ConnectionsOf("u1"))

	// Adding an already-present pair is a no-op
	hub.AddClient(c1)
	assert.ElementsMatch(t, []string{"conn-1"}, hub.ConnectionsOf("u1"))

	c2 := newTestClient(hub, "conn-2", "u1")
	hub.AddClient(c2)
	assert.ElementsMatch(t, []string{"conn-1", "conn-2"}, hub.ConnectionsOf("u1"))

	hub.RemoveClient(c1)
	assert.ElementsMatch(t, []string{"conn-2"}, hub.ConnectionsOf("u1"))

	// Removing an unknown pair is a no-op
	hub.RemoveClient(c1)
	assert.ElementsMatch(t, []string{"conn-2"}, hub.ConnectionsOf("u1"))
}

func TestPresenceGatedOnOccupancyEdges(t *testing.T) {
	hub := NewHub()

	watcher := newTestClient(hub, "w-1", "watcher")
	hub.AddClient(watcher)
	drain(t, watcher)

	c1 := newTestClient(hub, "conn-1", "u1")
	c2 := newTestClient(hub, "conn-2", "u1")

	hub.AddClient(c1)
	statuses := statusEvents(t, drain(t, watcher))
	require.Len(t, statuses, 1)
	assert.Equal(t, "u1", statuses[0].UserID)
	assert.Equal(t, StatusOnline, statuses[0].Status)
	assert.True(t, hub.IsUserOnline("u1"))

	// Second device: no re-announcement
	hub.AddClient(c2)
	assert.Empty(t, statusEvents(t, drain(t, watcher)))

	// Closing one of two connections must NOT broadcast offline
	hub.RemoveClient(c1)
	assert.Empty(t, statusEvents(t, drain(t, watcher)))
	assert.True(t, hub.IsUserOnline("u1"))

	// Closing the last one broadcasts offline exactly once
	hub.RemoveClient(c2)
	statuses = statusEvents(t, drain(t, watcher))
	require.Len(t, statuses, 1)
	assert.Equal(t, StatusOffline, statuses[0].Status)
	assert.False(t, hub.IsUserOnline("u1"))
}

func TestOnOfflineCallback(t *testing.T) {
	hub := NewHub()

	var gone []string
	hub.OnOffline = func(userID string) { gone = append(gone, userID) }

	c1 := newTestClient(hub, "conn-1", "u1")
	c2 := newTestClient(hub, "conn-2", "u1")
	hub.AddClient(c1)
	hub.AddClient(c2)

	hub.RemoveClient(c1)
	assert.Empty(t, gone)

	hub.RemoveClient(c2)
	assert.Equal(t, []string{"u1"}, gone)
}

func TestRoomFanOut(t *testing.T) {
	hub := NewHub()

	a := newTestClient(hub, "a-1", "alice")
	b1 := newTestClient(hub, "b-1", "bob")
	b2 := newTestClient(hub, "b-2", "bob")
	outsider := newTestClient(hub, "c-1", "carol")
	for _, c := range []*Client{a, b1, b2, outsider} {
		hub.AddClient(c)
	}
	for _, c := range []*Client{a, b1, b2, outsider} {
		drain(t, c)
	}

	room := DirectRoomID("alice", "bob")
	hub.JoinRoom(a, room)
	hub.JoinRoom(b1, room)
	hub.JoinRoom(b2, room)

	hub.SendToRoom(room, WSMessage{Type: EventNewMessage, Payload: "hi", Timestamp: time.Now()})

	// Both participants receive the event on every subscribed
	// connection; the outsider receives nothing
	for _, c := range []*Client{a, b1, b2} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, EventNewMessage, events[0].Type)
	}
	assert.Empty(t, drain(t, outsider))
}

func TestDisconnectLeavesRooms(t *testing.T) {
	hub := NewHub()

	a := newTestClient(hub, "a-1", "alice")
	b := newTestClient(hub, "b-1", "bob")
	hub.AddClient(a)
	hub.AddClient(b)

	room := DirectRoomID("alice", "bob")
	hub.JoinRoom(a, room)
	hub.JoinRoom(b, room)
	drain(t, a)
	drain(t, b)

	hub.RemoveClient(b)
	drain(t, a)

	hub.SendToRoom(room, WSMessage{Type: EventNewMessage, Payload: "hi", Timestamp: time.Now()})
	assert.Len(t, drain(t, a), 1)
	// b's channel was closed on removal; no event was delivered to it
	assert.Empty(t, drain(t, b))
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()

	b1 := newTestClient(hub, "b-1", "bob")
	b2 := newTestClient(hub, "b-2", "bob")
	hub.AddClient(b1)
	hub.AddClient(b2)
	drain(t, b1)
	drain(t, b2)

	hub.SendToUser("bob", WSMessage{Type: EventMessagesRead, Payload: "x", Timestamp: time.Now()})

	assert.Len(t, drain(t, b1), 1)
	assert.Len(t, drain(t, b2), 1)

	// Unknown user: nothing happens
	hub.SendToUser("nobody", WSMessage{Type: EventMessagesRead, Timestamp: time.Now()})
}

func TestOnlineUsers(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.OnlineCount())

	u1 := newTestClient(hub, "c-1", "u1")
	u2a := newTestClient(hub, "c-2", "u2")
	u2b := newTestClient(hub, "c-3", "u2")
	hub.AddClient(u1)
	hub.AddClient(u2a)
	hub.AddClient(u2b)

	assert.ElementsMatch(t, []string{"u1", "u2"}, hub.OnlineUsers())
	assert.Equal(t, 2, hub.OnlineCount())

	hub.RemoveClient(u2a)
	assert.ElementsMatch(t, []string{"u1", "u2"}, hub.OnlineUsers())

	hub.RemoveClient(u2b)
	assert.ElementsMatch(t, []string{"u1"}, hub.OnlineUsers())
}
