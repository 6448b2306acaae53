package core

import (
	"fmt"
	"time"
)

// SystemSender is the display name used for notices the relay itself emits.
const SystemSender = "system"

// Attachment references an uploaded file that can be fetched over HTTP.
type Attachment struct {
	Link  string
	Label string
}

// Message is the domain model for a chat message. It is not modified after
// it has been stored in a room history.
type Message struct {
	Room       string
	Name       string
	Text       string
	Attachment *Attachment
	CreatedAt  time.Time
}

// attachmentText renders an attachment as a single text field.
func attachmentText(a *Attachment) string {
	return fmt.Sprintf("%s: %s", a.Label, a.Link)
}
