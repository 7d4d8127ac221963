package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTypeNoteJoin   = "note.join"
	EventTypeNoteUpdate = "note.update"
	EventTypePing       = "ping"
)

// Event types - Server → Client
const (
	// note.update is relayed back out under the same type.
	EventTypePong  = "pong"
	EventTypeError = "error"
)

// Event is the base envelope for all WebSocket messages. Payload is opaque
// to the relay: edit payloads are forwarded verbatim, never interpreted.
type Event struct {
	Type      string          `json:"type"`
	NoteID    *uuid.UUID      `json:"note_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, noteID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		NoteID:    noteID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
