// Package server defines the push-channel message format and utility helpers
// that are reused across client and hub logic.
package server

import (
	"encoding/json"
	"strings"

	"github.com/Tyrowin/scoreline/internal/match"
)

// MessageTypeMatchUpdate is the only message type sent to subscribers.
const MessageTypeMatchUpdate = "match_update"

// Message is the JSON frame pushed to subscribers. Payload always carries
// the full match state, never a delta.
type Message struct {
	Type    string      `json:"type"`
	Payload match.State `json:"payload"`
}

// BroadcastMessage is an encoded frame on its way through the hub, tagged
// with the revision of the state it carries.
type BroadcastMessage struct {
	Revision uint64
	Payload  []byte
}

func encodeMatchUpdate(snapshot match.Snapshot) (BroadcastMessage, error) {
	payload, err := json.Marshal(Message{
		Type:    MessageTypeMatchUpdate,
		Payload: snapshot.State,
	})
	if err != nil {
		return BroadcastMessage{}, err
	}
	return BroadcastMessage{Revision: snapshot.Revision, Payload: payload}, nil
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
