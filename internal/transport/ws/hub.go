package ws

import (
	"log"

	"github.com/google/uuid"
)

// Hub owns the note-group registry and routes relay traffic. All group
// state is touched only by the Run goroutine, so join/leave/relay for any
// group are serialized: a disconnect is fully applied before the next
// relay can pick its connection as a target.
type Hub struct {
	// groups maps noteID → connections currently editing that note.
	groups map[uuid.UUID]map[*Client]struct{}
	// clients is the set of registered connections.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan joinMsg
	relay      chan relayMsg
}

type joinMsg struct {
	client *Client
	noteID uuid.UUID
}

type relayMsg struct {
	sender *Client
	noteID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		groups:     make(map[uuid.UUID]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinMsg),
		relay:      make(chan relayMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			log.Printf("ws hub: session %s connected (%d total)", client.sessionID, len(h.clients))

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.join:
			h.handleJoin(msg.client, msg.noteID)

		case msg := <-h.relay:
			h.handleRelay(msg.sender, msg.noteID, msg.data)
		}
	}
}

// handleJoin moves the client into the note's group. A connection belongs
// to at most one group: joining a new note leaves the previous one, and
// re-joining the current note is a no-op.
func (h *Hub) handleJoin(c *Client, noteID uuid.UUID) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	if c.noteID == noteID {
		return
	}

	h.leaveGroup(c)

	group, ok := h.groups[noteID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[noteID] = group
	}
	group[c] = struct{}{}
	c.noteID = noteID

	log.Printf("ws hub: session %s joined note %s (%d members)", c.sessionID, noteID, len(group))
}

// handleRelay forwards the payload to every other member of the note's
// group. A group with no other members is a silent no-op. A member whose
// send buffer is full is dropped immediately rather than stalling the
// remaining members.
func (h *Hub) handleRelay(sender *Client, noteID uuid.UUID, data []byte) {
	group, ok := h.groups[noteID]
	if !ok {
		return
	}

	var slow []*Client
	for member := range group {
		if member == sender {
			continue
		}
		select {
		case member.send <- data:
		default:
			slow = append(slow, member)
		}
	}

	for _, member := range slow {
		log.Printf("ws hub: dropping slow session %s", member.sessionID)
		h.drop(member)
	}
}

// drop removes a connection from the hub and its group. Idempotent: a
// connection already dropped (e.g. as a slow receiver) is skipped when its
// read pump later reports the disconnect.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	h.leaveGroup(c)
	delete(h.clients, c)
	close(c.send)
	close(c.done)
	log.Printf("ws hub: session %s disconnected (%d total)", c.sessionID, len(h.clients))
}

// leaveGroup removes the client from its current group and deletes the
// group once empty.
func (h *Hub) leaveGroup(c *Client) {
	if c.noteID == uuid.Nil {
		return
	}
	if group, ok := h.groups[c.noteID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, c.noteID)
		}
	}
	c.noteID = uuid.Nil
}
