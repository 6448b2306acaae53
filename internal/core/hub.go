package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// HubConfig configures the rooms and policies of a hub.
type HubConfig struct {
	Rooms             []string
	DefaultRoom       string
	HistoryLimit      int
	RateLimitInterval time.Duration
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub owns all rooms, memberships, rate-limit timestamps and admin grants.
// Every mutation happens on the goroutine running Run, one envelope at a time.
type Hub struct {
	registry    *Registry
	defaultRoom string
	limiter     *senderLimiter
	admins      AdminSet
	verifier    Verifier
	clock       clock.Clock
	log         *zerolog.Logger

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbox      chan envelope
	calls      chan func()
	done       chan struct{}
}

// NewHub creates a hub for the configured rooms. verifier may be nil, in which
// case admin verification always fails.
func NewHub(cfg HubConfig, verifier Verifier, logger *zerolog.Logger) (*Hub, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	registry := NewRegistry(cfg.Rooms, cfg.HistoryLimit)
	if _, ok := registry.Lookup(cfg.DefaultRoom); !ok {
		return nil, fmt.Errorf("default room %q: %w", cfg.DefaultRoom, ErrUnknownRoom)
	}

	return &Hub{
		registry:    registry,
		defaultRoom: cfg.DefaultRoom,
		limiter:     newSenderLimiter(clk, cfg.RateLimitInterval),
		admins:      make(AdminSet),
		verifier:    verifier,
		clock:       clk,
		log:         logger,
		clients:     make(map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbox:       make(chan envelope, 64),
		calls:       make(chan func()),
		done:        make(chan struct{}),
	}, nil
}

// Run processes hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case env := <-h.inbox:
			h.handle(env.client, env.cmd)
		case fn := <-h.calls:
			fn()
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Rooms returns the configured room names.
func (h *Hub) Rooms() []string {
	return h.registry.Names()
}

// DefaultRoom returns the room new connections start in.
func (h *Hub) DefaultRoom() string {
	return h.defaultRoom
}

// HasRoom reports whether name is a configured room.
func (h *Hub) HasRoom(name string) bool {
	_, ok := h.registry.Lookup(name)
	return ok
}

// RegisterClient attaches a client to the default room and starts forwarding
// its commands. The default room's history is queued before any command runs.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
	case <-h.done:
		return ErrHubClosed
	}
	go h.forward(c)
	return nil
}

// UnregisterClient removes a client from every room and closes its event channel.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Submit hands a command that does not originate from a connection to the
// hub, for example an upload published over HTTP.
func (h *Hub) Submit(ctx context.Context, cmd *Command) error {
	select {
	case h.inbox <- envelope{cmd: cmd}:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// VerifyAdmin compares code against the admin secret and, on a match, grants
// username admin rights. The comparison runs on the caller's goroutine.
func (h *Hub) VerifyAdmin(ctx context.Context, code, username string) (bool, error) {
	if username == "" || h.verifier == nil || !h.verifier.Verify(code) {
		return false, nil
	}
	if err := h.do(ctx, func() { h.admins.Grant(username) }); err != nil {
		return false, err
	}
	h.log.Info().Str("name", username).Msg("admin granted")
	return true, nil
}

// IsAdmin reports whether name has been granted admin.
func (h *Hub) IsAdmin(ctx context.Context, name string) (bool, error) {
	var ok bool
	err := h.do(ctx, func() { ok = h.admins.Has(name) })
	return ok, err
}

// History returns a snapshot of a room's stored messages.
func (h *Hub) History(ctx context.Context, room string) ([]Message, error) {
	if !h.HasRoom(room) {
		return nil, ErrUnknownRoom
	}
	var msgs []Message
	err := h.do(ctx, func() { msgs = h.registry.History(room) })
	return msgs, err
}

// CurrentRoom returns the client's current room.
func (h *Hub) CurrentRoom(ctx context.Context, c *Client) (string, error) {
	var room string
	err := h.do(ctx, func() { room = c.room })
	return room, err
}

// do runs fn on the hub loop and waits for it to finish.
func (h *Hub) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.calls <- call:
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// The loop runs fn as soon as it is received, so fn always completes.
	<-finished
	return nil
}

// forward moves a client's commands into the hub inbox, keeping their order.
func (h *Hub) forward(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-c.gone:
				return
			case <-h.done:
				return
			}
		case <-c.gone:
			return
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if c == nil {
		return
	}
	if _, exists := h.clients[c]; exists {
		return
	}
	h.clients[c] = struct{}{}

	room, _ := h.registry.Lookup(h.defaultRoom)
	h.enter(c, room)
	c.room = room.Name
	h.log.Debug().Str("client_id", c.ID).Str("room", room.Name).Int("clients", len(h.clients)).Msg("client registered")
}

func (h *Hub) handleUnregister(c *Client) {
	if _, exists := h.clients[c]; !exists {
		return
	}
	h.detach(c)
	delete(h.clients, c)
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client unregistered")
}

func (h *Hub) detach(c *Client) {
	for name := range c.rooms {
		if room, ok := h.registry.Lookup(name); ok {
			room.RemoveClient(c)
		}
	}
	clear(c.rooms)
	close(c.gone)
	close(c.Events)
}

func (h *Hub) shutdown() {
	for c := range h.clients {
		h.detach(c)
	}
	clear(h.clients)
}

func (h *Hub) handle(c *Client, cmd *Command) {
	if c != nil {
		if _, ok := h.clients[c]; !ok {
			return
		}
	}

	switch cmd.Kind {
	case CommandSwitchRoom:
		h.switchRoom(c, cmd.Room)
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room)
	case CommandSendMessage:
		h.submit(c, cmd)
	case CommandAdmin:
		h.handleAdmin(c, cmd)
	case CommandShareFile:
		h.shareFile(cmd)
	default:
		h.log.Warn().Stringer("kind", cmd.Kind).Msg("unhandled command")
	}
}

// enter subscribes c to room and sends it the room's history.
func (h *Hub) enter(c *Client, room *Room) {
	room.AddClient(c)
	c.rooms[room.Name] = struct{}{}
	c.deliver(&Event{Kind: EventHistory, Room: room.Name, Messages: room.History()})
}

func (h *Hub) switchRoom(c *Client, target string) {
	if c == nil {
		return
	}
	room, ok := h.registry.Lookup(target)
	if !ok {
		return
	}
	if current, ok := h.registry.Lookup(c.room); ok && current != room {
		current.RemoveClient(c)
		delete(c.rooms, current.Name)
	}
	h.enter(c, room)
	c.room = room.Name
}

func (h *Hub) joinRoom(c *Client, target string) {
	if c == nil {
		return
	}
	room, ok := h.registry.Lookup(target)
	if !ok {
		return
	}
	h.enter(c, room)
}

func (h *Hub) submit(c *Client, cmd *Command) {
	if cmd.Room == "" || cmd.Name == "" || cmd.Text == "" {
		return
	}
	room, ok := h.registry.Lookup(cmd.Room)
	if !ok {
		return
	}
	if strings.HasPrefix(cmd.Text, CommandPrefix) {
		h.handleAdmin(c, cmd)
		return
	}

	if !h.limiter.allow(cmd.Name) {
		h.sendTo(c, &Event{Kind: EventRateLimited, Room: room.Name, Text: NoticeRateLimited})
		h.log.Debug().Str("name", cmd.Name).Str("room", room.Name).Msg("message rate limited")
		return
	}

	h.publish(room, Message{
		Room:      room.Name,
		Name:      cmd.Name,
		Text:      ExpandEmoji(cmd.Text),
		CreatedAt: h.clock.Now(),
	})
}

func (h *Hub) shareFile(cmd *Command) {
	a := cmd.Attachment
	if cmd.Room == "" || cmd.Name == "" || a == nil || a.Link == "" {
		return
	}
	room, ok := h.registry.Lookup(cmd.Room)
	if !ok {
		return
	}
	if a.Label == "" {
		a = &Attachment{Link: a.Link, Label: a.Link}
	}

	h.publish(room, Message{
		Room:       room.Name,
		Name:       cmd.Name,
		Text:       attachmentText(a),
		Attachment: &Attachment{Link: a.Link, Label: a.Label},
		CreatedAt:  h.clock.Now(),
	})
}

func (h *Hub) publish(room *Room, msg Message) {
	h.registry.Append(room.Name, msg)
	room.Broadcast(&Event{Kind: EventMessage, Room: room.Name, Message: msg})
}

func (h *Hub) handleAdmin(c *Client, cmd *Command) {
	if cmd.Name == "" || cmd.Text == "" {
		return
	}
	if !h.admins.Has(cmd.Name) {
		h.notice(c, cmd.Room, NoticeUnauthorized)
		h.log.Info().Str("name", cmd.Name).Str("room", cmd.Room).Msg("unauthorized admin command")
		return
	}

	parsed := ParseAdminCommand(cmd.Text)
	switch parsed.Kind {
	case AdminClear:
		if !h.registry.Clear(cmd.Room) {
			return
		}
		room, _ := h.registry.Lookup(cmd.Room)
		room.Broadcast(&Event{Kind: EventHistoryCleared, Room: room.Name})
		h.notice(c, room.Name, clearedNotice(room.Name))
		h.log.Info().Str("name", cmd.Name).Str("room", room.Name).Msg("room history cleared")
	case AdminUnknown:
		h.notice(c, cmd.Room, unknownCommandNotice(parsed.Token))
	}
}

func (h *Hub) notice(c *Client, room, text string) {
	h.sendTo(c, &Event{
		Kind: EventSystemNotice,
		Room: room,
		Message: Message{
			Room:      room,
			Name:      SystemSender,
			Text:      text,
			CreatedAt: h.clock.Now(),
		},
	})
}

func (h *Hub) sendTo(c *Client, event *Event) {
	if c == nil {
		return
	}
	c.deliver(event)
}
