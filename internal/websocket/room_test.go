package websocket

import "testing"

func TestDirectRoomID(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{
			name: "already ordered",
			a:    "alice",
			b:    "bob",
			want: "alice-bob",
		},
		{
			name: "reversed order converges",
			a:    "bob",
			b:    "alice",
			want: "alice-bob",
		},
		{
			name: "same user both sides",
			a:    "alice",
			b:    "alice",
			want: "alice-alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DirectRoomID(tt.a, tt.b); got != tt.want {
				t.Errorf("DirectRoomID(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDirectRoomIDOrderIndependent(t *testing.T) {
	if DirectRoomID("u1", "u2") != DirectRoomID("u2", "u1") {
		t.Error("DirectRoomID should not depend on argument order")
	}
}

func TestGroupRoomIDNamespace(t *testing.T) {
	// A group id that looks like a direct room must not collide with it
	direct := DirectRoomID("a", "b")
	if GroupRoomID(direct) == direct {
		t.Error("GroupRoomID should namespace group rooms away from direct rooms")
	}
	if GroupRoomID("g1") != "group:g1" {
		t.Errorf("GroupRoomID(\"g1\") = %q, want %q", GroupRoomID("g1"), "group:g1")
	}
}
