package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHistory delivers a room's stored messages to one client.
	EventHistory EventKind = iota
	// EventMessage notifies room members about a new chat message.
	EventMessage
	// EventRateLimited tells a sender its message was rejected for arriving too soon.
	EventRateLimited
	// EventHistoryCleared notifies room members that the history was wiped.
	EventHistoryCleared
	// EventSystemNotice carries a notice from the relay to one client.
	EventSystemNotice
)

func (k EventKind) String() string {
	switch k {
	case EventHistory:
		return "message_history"
	case EventMessage:
		return "chat_message"
	case EventRateLimited:
		return "rate_limited"
	case EventHistoryCleared:
		return "history_cleared"
	case EventSystemNotice:
		return "system_notice"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Message  Message   // EventMessage, EventSystemNotice
	Messages []Message // EventHistory
	Text     string    // EventRateLimited
}
