package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeSwitchRoom   = "switch_room"
	InboundTypeJoinRoom     = "join_room"
	InboundTypeChatMessage  = "chat_message"
	InboundTypeAdminCommand = "admin_command"
	InboundTypeFileUploaded = "file_uploaded"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventMessageHistory = "message_history"
	EventChatMessage    = "chat_message"
	EventRateLimited    = "rate_limited"
	EventHistoryCleared = "history_cleared"
	EventSystemNotice   = "system_notice"

	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

// RoomData names a room to switch to or join.
type RoomData struct {
	Room string `json:"room"`
}

// ChatData is a chat message or admin command from the client.
type ChatData struct {
	Room string `json:"room"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// FileData announces a file that was uploaded over HTTP.
type FileData struct {
	Room     string `json:"room"`
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	Label    string `json:"label,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Attachment references a downloadable file.
type Attachment struct {
	Link  string `json:"link"`
	Label string `json:"label"`
}

// EventMessage is a chat message or system notice.
type EventMessage struct {
	Room       string      `json:"room,omitempty"`
	Name       string      `json:"name"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
	TS         int64       `json:"ts"`
}

// EventHistory delivers the stored messages of a room.
type EventHistory struct {
	Room     string         `json:"room"`
	Messages []EventMessage `json:"messages"`
}

// EventNotice is a plain text notice such as a rate limit warning.
type EventNotice struct {
	Room string `json:"room,omitempty"`
	Text string `json:"text"`
}

// EventRoom names the room an event applies to.
type EventRoom struct {
	Room string `json:"room"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
