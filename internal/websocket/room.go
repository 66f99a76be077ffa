package websocket

// DirectRoomID computes the canonical room identifier for a direct
// conversation. The two participant ids are sorted before joining so both
// parties converge on the same room regardless of who initiates.
func DirectRoomID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}

// GroupRoomID computes the room identifier for a group conversation. The
// namespace prefix keeps group rooms from colliding with direct rooms.
func GroupRoomID(groupID string) string {
	return "group:" + groupID
}
