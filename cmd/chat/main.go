// chat is an interactive terminal client for the relay.
//
// Lines starting with /switch or /join change rooms locally. Any other line
// starting with / is sent as a command, everything else as a chat message.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

type options struct {
	addr string
	name string
	room string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.addr, "addr", "ws://localhost:3000/ws", "WebSocket address")
	fs.StringVarP(&o.name, "name", "n", "cli-user", "display name")
	fs.StringVarP(&o.room, "room", "r", "", "room to switch to after connecting (default: server's default room)")
}

func main() {
	var opts options
	cmd := &cobra.Command{
		Use:           "chat",
		Short:         "Interactive relay client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, os.Stdin, os.Stdout)
		},
	}
	opts.addFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chat: %v\n", err)
		os.Exit(1)
	}
}

func run(parent context.Context, opts options, in io.Reader, out io.Writer) error {
	baseCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, opts.addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	s := &session{conn: conn, out: out, name: opts.name}
	if opts.room != "" {
		s.requestSwitch(opts.room)
		if err := s.send(ctx, proto.InboundTypeSwitchRoom, proto.RoomData{Room: opts.room}); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Connected to %s as %s\n", opts.addr, opts.name)
	fmt.Fprintln(out, "Type messages and press Enter to send. /switch ROOM, /join ROOM, Ctrl+C to exit.")

	go func() {
		defer cancel()
		s.readLoop(ctx)
	}()

	s.writeLoop(ctx, in)
	return nil
}

// session tracks the current room from the histories the server sends.
// A switch to an unknown room gets no reply and leaves the room unchanged.
type session struct {
	conn *websocket.Conn
	out  io.Writer
	name string

	mu      sync.Mutex
	room    string // empty until the first history arrives
	pending string // room of an unconfirmed switch
}

func (s *session) currentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

func (s *session) requestSwitch(room string) {
	s.mu.Lock()
	s.pending = room
	s.mu.Unlock()
}

// observeHistory updates the current room. The first history is the default
// room; later ones only move the client when they confirm a pending switch,
// because a join also delivers history.
func (s *session) observeHistory(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.room == "":
		s.room = room
	case s.pending != "" && room == s.pending:
		s.room = room
		s.pending = ""
	}
}

func (s *session) send(ctx context.Context, typ string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	if err := wsjson.Write(ctx, s.conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (s *session) readLoop(ctx context.Context) {
	for {
		var outbound wireOutbound
		if err := wsjson.Read(ctx, s.conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(s.out, "read error: %v\n", err)
			return
		}
		s.print(outbound)
	}
}

func (s *session) print(outbound wireOutbound) {
	if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
		fmt.Fprintf(s.out, "! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
		return
	}

	switch outbound.Event {
	case proto.EventMessageHistory:
		var evt proto.EventHistory
		if err := json.Unmarshal(outbound.Data, &evt); err != nil {
			fmt.Fprintf(s.out, "unmarshal history: %v\n", err)
			return
		}
		s.observeHistory(evt.Room)
		fmt.Fprintf(s.out, "--- %s (%d messages) ---\n", evt.Room, len(evt.Messages))
		for _, msg := range evt.Messages {
			s.printMessage(msg)
		}
	case proto.EventChatMessage, proto.EventSystemNotice:
		var evt proto.EventMessage
		if err := json.Unmarshal(outbound.Data, &evt); err != nil {
			fmt.Fprintf(s.out, "unmarshal message: %v\n", err)
			return
		}
		s.printMessage(evt)
	case proto.EventRateLimited:
		var evt proto.EventNotice
		if err := json.Unmarshal(outbound.Data, &evt); err != nil {
			fmt.Fprintf(s.out, "unmarshal notice: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "! %s\n", evt.Text)
	case proto.EventHistoryCleared:
		var evt proto.EventRoom
		if err := json.Unmarshal(outbound.Data, &evt); err != nil {
			fmt.Fprintf(s.out, "unmarshal cleared: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "--- %s history cleared ---\n", evt.Room)
	default:
		fmt.Fprintf(s.out, "event=%s data=%s\n", outbound.Event, outbound.Data)
	}
}

func (s *session) printMessage(msg proto.EventMessage) {
	ts := time.Unix(msg.TS, 0).Format("15:04:05")
	if msg.Attachment != nil {
		fmt.Fprintf(s.out, "%s [%s] %s shared %s (%s)\n", ts, msg.Room, msg.Name, msg.Attachment.Label, msg.Attachment.Link)
		return
	}
	fmt.Fprintf(s.out, "%s [%s] %s: %s\n", ts, msg.Room, msg.Name, msg.Text)
}

func (s *session) writeLoop(ctx context.Context, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := s.handleLine(ctx, text); err != nil {
				fmt.Fprintf(s.out, "send error: %v\n", err)
				return
			}
		}
	}
}

func (s *session) handleLine(ctx context.Context, text string) error {
	typ, data := s.frameFor(text)
	if typ == proto.InboundTypeSwitchRoom {
		s.requestSwitch(data.(proto.RoomData).Room)
	}
	return s.send(ctx, typ, data)
}

// frameFor maps an input line to the frame that should be sent for it.
func (s *session) frameFor(text string) (string, any) {
	if room, ok := strings.CutPrefix(text, "/switch "); ok {
		return proto.InboundTypeSwitchRoom, proto.RoomData{Room: strings.TrimSpace(room)}
	}
	if room, ok := strings.CutPrefix(text, "/join "); ok {
		return proto.InboundTypeJoinRoom, proto.RoomData{Room: strings.TrimSpace(room)}
	}
	typ := proto.InboundTypeChatMessage
	if strings.HasPrefix(text, "/") {
		typ = proto.InboundTypeAdminCommand
	}
	return typ, proto.ChatData{Room: s.currentRoom(), Name: s.name, Text: text}
}
