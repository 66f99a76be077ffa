package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPayloadTarget(t *testing.T) {
	tests := []struct {
		name    string
		payload JoinPayload
		want    Target
		ok      bool
	}{
		{
			name:    "direct counterpart",
			payload: JoinPayload{OtherUserID: "u2"},
			want:    Target{Kind: TargetDirect, ID: "u2"},
			ok:      true,
		},
		{
			name:    "group",
			payload: JoinPayload{GroupID: "g1"},
			want:    Target{Kind: TargetGroup, ID: "g1"},
			ok:      true,
		},
		{
			name:    "neither field set",
			payload: JoinPayload{},
			ok:      false,
		},
		{
			name:    "both fields set",
			payload: JoinPayload{OtherUserID: "u2", GroupID: "g1"},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := tt.payload.Target()
			if ok != tt.ok {
				t.Fatalf("Target() ok = %v, want %v", ok, tt.ok)
			}
			if ok && target != tt.want {
				t.Errorf("Target() = %+v, want %+v", target, tt.want)
			}
		})
	}
}

func TestSendMessagePayloadTarget(t *testing.T) {
	tests := []struct {
		name    string
		payload SendMessagePayload
		want    Target
		ok      bool
	}{
		{
			name:    "direct",
			payload: SendMessagePayload{To: "u2", Content: "hi"},
			want:    Target{Kind: TargetDirect, ID: "u2"},
			ok:      true,
		},
		{
			name:    "group",
			payload: SendMessagePayload{To: "g1", Content: "hi", IsGroup: true},
			want:    Target{Kind: TargetGroup, ID: "g1"},
			ok:      true,
		},
		{
			name:    "missing target",
			payload: SendMessagePayload{Content: "hi"},
			ok:      false,
		},
		{
			name:    "missing content",
			payload: SendMessagePayload{To: "u2"},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, ok := tt.payload.Target()
			if ok != tt.ok {
				t.Fatalf("Target() ok = %v, want %v", ok, tt.ok)
			}
			if ok && target != tt.want {
				t.Errorf("Target() = %+v, want %+v", target, tt.want)
			}
		})
	}
}

type recordingHandler struct {
	joins    []Target
	sends    []Target
	contents []string
}

func (r *recordingHandler) HandleJoin(_ *Client, target Target) {
	r.joins = append(r.joins, target)
}

func (r *recordingHandler) HandleSend(_ *Client, target Target, content string) {
	r.sends = append(r.sends, target)
	r.contents = append(r.contents, content)
}

func TestHandleIncomingMessageDropsMalformed(t *testing.T) {
	hub := NewHub()
	rec := &recordingHandler{}
	hub.SetHandler(rec)

	c := newTestClient(hub, "c-1", "u1")
	hub.AddClient(c)
	drain(t, c)

	malformed := []string{
		`{"type":"join","payload":"not an object"}`,
		`{"type":"join","payload":{}}`,
		`{"type":"join","payload":{"otherUserId":"u2","groupId":"g1"}}`,
		`{"type":"send_message","payload":[1,2,3]}`,
		`{"type":"send_message","payload":{"content":"hi"}}`,
		`{"type":"send_message","payload":{"to":"u2","content":""}}`,
		`{"type":"typing","payload":{}}`,
	}
	for _, raw := range malformed {
		var msg IncomingMessage
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		c.handleIncomingMessage(msg)
	}

	// Nothing reached the handler and nothing came back on the wire
	assert.Empty(t, rec.joins)
	assert.Empty(t, rec.sends)
	assert.Empty(t, drain(t, c))
}

func TestHandleIncomingMessageDispatches(t *testing.T) {
	hub := NewHub()
	rec := &recordingHandler{}
	hub.SetHandler(rec)

	c := newTestClient(hub, "c-1", "u1")
	hub.AddClient(c)

	for _, raw := range []string{
		`{"type":"join","payload":{"otherUserId":"u2"}}`,
		`{"type":"send_message","payload":{"to":"g1","content":"hi","isGroup":true}}`,
	} {
		var msg IncomingMessage
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		c.handleIncomingMessage(msg)
	}

	assert.Equal(t, []Target{{Kind: TargetDirect, ID: "u2"}}, rec.joins)
	assert.Equal(t, []Target{{Kind: TargetGroup, ID: "g1"}}, rec.sends)
	assert.Equal(t, []string{"hi"}, rec.contents)
}
