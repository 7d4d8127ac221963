package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection. sessionID identifies
// the connection; userID is the authenticated user behind it (one user may
// hold several connections).
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID uuid.UUID
	userID    uuid.UUID

	// noteID is the group this connection currently belongs to
	// (uuid.Nil when none). Owned by the hub goroutine.
	noteID uuid.UUID

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		sessionID: uuid.New(),
		userID:    userID,
		send:      make(chan []byte, sendBufSize),
		done:      make(chan struct{}),
	}
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: session %s disconnected", c.sessionID)
			} else {
				log.Printf("ws: read error from %s: %v", c.sessionID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.sessionID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event. The relay performs no
// authorization here: the handshake authenticated the user, and ACL checks
// on note access belong to the HTTP layer.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeNoteJoin:
		if event.NoteID == nil {
			c.sendError("INVALID_PAYLOAD", "note_id required for note.join")
			return
		}
		c.hub.join <- joinMsg{client: c, noteID: *event.NoteID}

	case EventTypeNoteUpdate:
		if event.NoteID == nil {
			c.sendError("INVALID_PAYLOAD", "note_id required for note.update")
			return
		}
		out := Event{
			Type:      EventTypeNoteUpdate,
			NoteID:    event.NoteID,
			Payload:   event.Payload,
			Timestamp: time.Now().Unix(),
		}
		data, err := json.Marshal(out)
		if err != nil {
			return
		}
		c.hub.relay <- relayMsg{sender: c, noteID: *event.NoteID, data: data}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
