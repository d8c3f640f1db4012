// Package realtime pushes project update events to subscribed websocket
// clients. Communication is one-way: clients subscribe to a project and the
// server broadcasts events; inbound frames other than control messages are
// discarded.
package realtime

import (
	"log/slog"
	"time"
)

// Event is one broadcast frame. Type is "code-update" when a generation or
// modification lands, or "project-deleted" when a project goes away.
type Event struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"projectId"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks websocket clients grouped by project and fans events out to
// them. All state changes go through the Run loop.
type Hub struct {
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	events     chan Event
	shutdown   chan struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 256),
		shutdown:   make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's main loop. It owns the rooms map; callers interact only
// through channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case event := <-h.events:
			h.broadcast(event)

		case <-h.shutdown:
			h.closeAll()
			return
		}
	}
}

// Broadcast queues an event for every client subscribed to its project.
// Safe to call from any goroutine. Drops the event if the hub is backed up.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping broadcast",
			slog.String("type", event.Type),
			slog.String("project_id", event.ProjectID))
	}
}

// Shutdown stops the Run loop and closes every client connection.
func (h *Hub) Shutdown() {
	close(h.shutdown)
}

func (h *Hub) addClient(client *Client) {
	room := h.rooms[client.projectID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[client.projectID] = room
	}
	room[client] = struct{}{}

	h.logger.Debug("websocket client subscribed",
		slog.String("project_id", client.projectID),
		slog.Int("room_size", len(room)))
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.projectID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}

	delete(room, client)
	client.close()

	if len(room) == 0 {
		delete(h.rooms, client.projectID)
	}

	h.logger.Debug("websocket client unsubscribed",
		slog.String("project_id", client.projectID))
}

func (h *Hub) broadcast(event Event) {
	room, ok := h.rooms[event.ProjectID]
	if !ok {
		return
	}

	for client := range room {
		if !client.enqueue(event) {
			// Slow consumer; drop it rather than stall the loop.
			delete(room, client)
			client.close()
		}
	}

	if len(room) == 0 {
		delete(h.rooms, event.ProjectID)
	}
}

func (h *Hub) closeAll() {
	for projectID, room := range h.rooms {
		for client := range room {
			client.close()
		}
		delete(h.rooms, projectID)
	}
}
