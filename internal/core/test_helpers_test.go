package core

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

var testRooms = []string{"General", "Random", "Tech", "Test"}

type staticVerifier string

func (v staticVerifier) Verify(code string) bool {
	return code != "" && code == string(v)
}

func startHub(t *testing.T, clk clock.Clock) (*Hub, context.Context) {
	t.Helper()

	hub, err := NewHub(HubConfig{
		Rooms:             testRooms,
		DefaultRoom:       "General",
		HistoryLimit:      DefaultHistoryLimit,
		RateLimitInterval: 2 * time.Second,
		Clock:             clk,
	}, staticVerifier("letmein"), nil)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, ctx
}

// connect registers a client and consumes the initial history event.
func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id)
	if err := hub.RegisterClient(c); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	mustEvent(t, c.Events, EventHistory)
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func nextEvent(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		if ev == nil {
			t.Fatalf("event channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received")
	}
	return nil
}

func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		if ev != nil {
			t.Fatalf("unexpected event: %v %+v", ev.Kind, ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func texts(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}
