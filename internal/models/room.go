package models

import "strings"

// roomSeparator joins the two participant ids of a direct room. Group
// rooms are addressed by the group id verbatim and never contain it.
const roomSeparator = "_"

// DirectRoomKey maps an unordered pair of user ids to the canonical room
// key for their direct conversation: the ids sorted lexicographically and
// joined with "_". Both sides of a conversation must derive the same key
// or the conversation silently splits into two rooms, so clients carry an
// identical copy of this function.
func DirectRoomKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + roomSeparator + b
}

// IsDirectRoom reports whether the room key addresses a direct
// conversation rather than a group.
func IsDirectRoom(room string) bool {
	return strings.Contains(room, roomSeparator)
}

// DirectRoomParticipants splits a direct room key back into its two
// participant ids. ok is false for group room keys.
func DirectRoomParticipants(room string) (ids []string, ok bool) {
	if !IsDirectRoom(room) {
		return nil, false
	}
	return strings.SplitN(room, roomSeparator, 2), true
}
