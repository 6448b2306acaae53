package core

import "github.com/google/uuid"

const (
	commandBuffer = 8
	eventBuffer   = 64
)

// Client is a chat participant as seen by the core layer.
//
// The current room and the set of subscribed rooms are owned by the hub loop
// and must not be read or written elsewhere.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	room  string
	rooms map[string]struct{}
	gone  chan struct{}
}

// NewClient constructs a client with initialized channels. An empty id is
// replaced by a random UUID.
func NewClient(id string) *Client {
	if id == "" {
		id = uuid.NewString()
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, commandBuffer),
		Events:   make(chan *Event, eventBuffer),
		rooms:    make(map[string]struct{}),
		gone:     make(chan struct{}),
	}
}

// deliver queues an event without blocking. Slow consumers miss events.
func (c *Client) deliver(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
