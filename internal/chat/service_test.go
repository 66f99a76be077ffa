package chat

import (
	"context"
	"encoding/json"
	"testing"

	"temanin/server/internal/models"
	"temanin/server/internal/store"
	ws "temanin/server/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    ws.EventType    `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// drain reads everything currently buffered on a client's send channel,
// dropping presence noise
func drain(t *testing.T, c *ws.Client) []envelope {
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
			if env.Type == ws.EventUserStatusChange {
				continue
			}
			events = append(events, env)
		default:
			return events
		}
	}
}

type fixture struct {
	mem *store.Memory
	hub *ws.Hub
	svc *Service
}

func newFixture() fixture {
	mem := store.NewMemory()
	hub := ws.NewHub()
	svc := NewService(mem, mem, mem, hub)
	hub.SetHandler(svc)
	return fixture{mem: mem, hub: hub, svc: svc}
}

func (f fixture) connect(t *testing.T, connID string, user models.User) *ws.Client {
	t.Helper()
	c := ws.NewClient(connID, user.ID, user.Username, nil, f.hub)
	f.hub.AddClient(c)
	drain(t, c)
	return c
}

func TestSendDirectPersistsThenDelivers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	bob := f.mem.AddUser("bob")

	ca := f.connect(t, "a-1", alice)
	cb := f.connect(t, "b-1", bob)

	room := ws.DirectRoomID(alice.ID, bob.ID)
	f.hub.JoinRoom(ca, room)
	f.hub.JoinRoom(cb, room)
	drain(t, ca)
	drain(t, cb)

	sent, err := f.svc.SendDirect(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)
	assert.False(t, sent.Read)

	// Durable before delivery
	history, err := f.mem.Conversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)

	// Both room members receive new_message, including the sender's
	// own connection
	for _, c := range []*ws.Client{ca, cb} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, ws.EventNewMessage, events[0].Type)

		var msg models.Message
		require.NoError(t, json.Unmarshal(events[0].Payload, &msg))
		assert.Equal(t, sent.ID, msg.ID)
		assert.Equal(t, alice.ID, msg.SenderID)
		assert.Equal(t, bob.ID, msg.RecipientID)
		assert.Equal(t, "hi", msg.Content)
	}
}

func TestOfflineRecipientReadsLater(t *testing.T) {
	// A sends "hi" while B has no open connection; B later connects and
	// joins the room, which flips the read flag and notifies A's live
	// connections.
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	bob := f.mem.AddUser("bob")

	ca := f.connect(t, "a-1", alice)
	f.hub.JoinRoom(ca, ws.DirectRoomID(alice.ID, bob.ID))

	_, err := f.svc.SendDirect(ctx, alice.ID, bob.ID, "hi")
	require.NoError(t, err)
	drain(t, ca)

	// Still unread until B fetches
	history, err := f.mem.Conversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Read)

	cb := f.connect(t, "b-1", bob)
	f.svc.HandleJoin(cb, ws.Target{Kind: ws.TargetDirect, ID: alice.ID})

	history, err = f.mem.Conversation(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, history[0].Read)

	events := drain(t, ca)
	require.Len(t, events, 1)
	assert.Equal(t, ws.EventMessagesRead, events[0].Type)

	var p ws.MessagesReadPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &p))
	assert.Equal(t, bob.ID, p.ReaderID)
	assert.Equal(t, alice.ID, p.ConversationWith)
	assert.Equal(t, int64(1), p.Count)
}

func TestReadReceiptsReachEveryConnection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	bob := f.mem.AddUser("bob")

	// Three unread messages from B to A
	for _, content := range []string{"one", "two", "three"} {
		_, err := f.svc.SendDirect(ctx, bob.ID, alice.ID, content)
		require.NoError(t, err)
	}

	b1 := f.connect(t, "b-1", bob)
	b2 := f.connect(t, "b-2", bob)

	count, err := f.svc.SyncReadReceipts(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Exactly one messages_read with count 3 on each of B's connections
	for _, c := range []*ws.Client{b1, b2} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, ws.EventMessagesRead, events[0].Type)

		var p ws.MessagesReadPayload
		require.NoError(t, json.Unmarshal(events[0].Payload, &p))
		assert.Equal(t, int64(3), p.Count)
	}

	// A second sync finds nothing unread and stays silent
	count, err = f.svc.SyncReadReceipts(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, drain(t, b1))
	assert.Empty(t, drain(t, b2))
}

func TestSendGroupFansOutToMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	bob := f.mem.AddUser("bob")
	carol := f.mem.AddUser("carol")

	group, err := f.mem.CreateGroup(ctx, "trio", "", alice.ID, []string{bob.ID, carol.ID})
	require.NoError(t, err)

	cb := f.connect(t, "b-1", bob)
	cc := f.connect(t, "c-1", carol)
	f.svc.HandleJoin(cb, ws.Target{Kind: ws.TargetGroup, ID: group.ID})
	f.svc.HandleJoin(cc, ws.Target{Kind: ws.TargetGroup, ID: group.ID})

	sent, err := f.svc.SendGroup(ctx, alice.ID, group.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "alice", sent.Sender.Username)

	for _, c := range []*ws.Client{cb, cc} {
		events := drain(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, ws.EventGroupMessage, events[0].Type)

		var p ws.GroupMessagePayload
		require.NoError(t, json.Unmarshal(events[0].Payload, &p))
		assert.Equal(t, group.ID, p.GroupID)
		assert.Equal(t, "hello", p.Message.Content)
		assert.Equal(t, alice.ID, p.Message.Sender.ID)
	}
}

func TestSendGroupForbiddenForNonMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	dave := f.mem.AddUser("dave")

	group, err := f.mem.CreateGroup(ctx, "club", "", alice.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.SendGroup(ctx, dave.ID, group.ID, "let me in")
	assert.ErrorIs(t, err, ErrForbidden)

	// Nothing was persisted
	messages, err := f.mem.GroupMessages(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestHandleJoinGroupRequiresMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	dave := f.mem.AddUser("dave")

	group, err := f.mem.CreateGroup(ctx, "club", "", alice.ID, nil)
	require.NoError(t, err)

	cd := f.connect(t, "d-1", dave)
	f.svc.HandleJoin(cd, ws.Target{Kind: ws.TargetGroup, ID: group.ID})

	// The non-member was not subscribed: a group send reaches nobody
	ca := f.connect(t, "a-1", alice)
	f.svc.HandleJoin(ca, ws.Target{Kind: ws.TargetGroup, ID: group.ID})
	_, err = f.svc.SendGroup(ctx, alice.ID, group.ID, "private")
	require.NoError(t, err)

	assert.Empty(t, drain(t, cd))
	assert.Len(t, drain(t, ca), 1)
}

func TestHandleSendForbiddenEmitsError(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	dave := f.mem.AddUser("dave")

	group, err := f.mem.CreateGroup(ctx, "club", "", alice.ID, nil)
	require.NoError(t, err)

	cd := f.connect(t, "d-1", dave)
	f.svc.HandleSend(cd, ws.Target{Kind: ws.TargetGroup, ID: group.ID}, "hi")

	events := drain(t, cd)
	require.Len(t, events, 1)
	assert.Equal(t, ws.EventError, events[0].Type)

	messages, err := f.mem.GroupMessages(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestHistorySyncsReadReceipts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := f.mem.AddUser("alice")
	bob := f.mem.AddUser("bob")

	_, err := f.svc.SendDirect(ctx, bob.ID, alice.ID, "ping")
	require.NoError(t, err)

	history, err := f.svc.History(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Read, "fetching history takes the read path")
}
