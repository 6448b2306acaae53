package core

// DefaultHistoryLimit is the number of messages a room keeps when no limit is configured.
const DefaultHistoryLimit = 25

// Registry holds the fixed set of rooms configured at startup.
//
// The set of rooms never changes after construction, so Lookup and Names may
// be called from any goroutine. Room contents are owned by the hub loop.
type Registry struct {
	rooms map[string]*Room
	names []string
}

// NewRegistry creates one room per unique name, keeping the configured order.
func NewRegistry(names []string, limit int) *Registry {
	reg := &Registry{
		rooms: make(map[string]*Room, len(names)),
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := reg.rooms[name]; exists {
			continue
		}
		reg.rooms[name] = NewRoom(name, limit)
		reg.names = append(reg.names, name)
	}
	return reg
}

// Lookup returns the room with the given name.
func (r *Registry) Lookup(name string) (*Room, bool) {
	room, ok := r.rooms[name]
	return room, ok
}

// Names returns the configured room names in order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// History returns the stored messages of a room. Unknown rooms yield nil.
func (r *Registry) History(name string) []Message {
	room, ok := r.rooms[name]
	if !ok {
		return nil
	}
	return room.History()
}

// Append adds msg to the named room. Returns false if the room is unknown.
func (r *Registry) Append(name string, msg Message) bool {
	room, ok := r.rooms[name]
	if !ok {
		return false
	}
	room.Append(msg)
	return true
}

// Clear empties the history of the named room. Returns false if the room is unknown.
func (r *Registry) Clear(name string) bool {
	room, ok := r.rooms[name]
	if !ok {
		return false
	}
	room.Clear()
	return true
}
