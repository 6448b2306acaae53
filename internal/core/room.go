package core

// Room groups clients subscribed to the same channel and keeps the most
// recent messages posted to it.
type Room struct {
	Name    string
	limit   int
	history []Message
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients and an empty history capped at limit.
func NewRoom(name string, limit int) *Room {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Room{
		Name:    name,
		limit:   limit,
		history: make([]Message, 0, limit),
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		client.deliver(event)
	}
}

// Append stores msg at the end of the history, evicting the oldest entries
// once the limit is exceeded.
func (r *Room) Append(msg Message) {
	r.history = append(r.history, msg)
	if over := len(r.history) - r.limit; over > 0 {
		n := copy(r.history, r.history[over:])
		clear(r.history[n:])
		r.history = r.history[:n]
	}
}

// History returns a copy of the stored messages, oldest first.
func (r *Room) History() []Message {
	out := make([]Message, len(r.history))
	copy(out, r.history)
	return out
}

// Clear drops every stored message.
func (r *Room) Clear() {
	clear(r.history)
	r.history = r.history[:0]
}

// Len returns the number of stored messages.
func (r *Room) Len() int {
	return len(r.history)
}
