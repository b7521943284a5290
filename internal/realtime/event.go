// Package realtime implements the websocket relay: a hub that tracks which
// users are connected and which match rooms each session has joined, and fans
// typed events out to them. Delivery is best-effort and at-most-once; the hub
// never blocks a publisher on a slow consumer.
package realtime

import (
	"encoding/json"

	"github.com/talentscout/talentscout-server/internal/domain"
)

// Event type discriminators carried in every outbound frame.
const (
	EventMatch   = "match"
	EventMessage = "message"
	EventError   = "error"
)

// MatchEvent notifies both participants that a match was created or resolved.
type MatchEvent struct {
	Type  string       `json:"type"`
	Match domain.Match `json:"match"`
}

// MessageEvent carries one persisted chat message to a room.
type MessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

// ErrorEvent reports a rejected client frame back to its sender.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func marshalMatchEvent(m domain.Match) []byte {
	b, _ := json.Marshal(MatchEvent{Type: EventMatch, Match: m})
	return b
}

func marshalMessageEvent(msg domain.Message) []byte {
	b, _ := json.Marshal(MessageEvent{Type: EventMessage, Message: msg})
	return b
}

func marshalErrorEvent(code, message string) []byte {
	b, _ := json.Marshal(ErrorEvent{Type: EventError, Code: code, Message: message})
	return b
}
