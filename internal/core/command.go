package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSwitchRoom moves the client's current room to another room.
	CommandSwitchRoom CommandKind = iota
	// CommandJoinRoom subscribes the client to a room without changing its current room.
	CommandJoinRoom
	// CommandSendMessage submits a chat message to a room.
	CommandSendMessage
	// CommandAdmin runs a privileged command such as /clear.
	CommandAdmin
	// CommandShareFile publishes an already stored upload to a room.
	CommandShareFile
)

func (k CommandKind) String() string {
	switch k {
	case CommandSwitchRoom:
		return "switch_room"
	case CommandJoinRoom:
		return "join_room"
	case CommandSendMessage:
		return "send_message"
	case CommandAdmin:
		return "admin"
	case CommandShareFile:
		return "share_file"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client or by the HTTP layer.
type Command struct {
	Kind       CommandKind
	Room       string
	Name       string
	Text       string
	Attachment *Attachment
}
