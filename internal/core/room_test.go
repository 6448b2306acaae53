package core

import (
	"fmt"
	"testing"
)

func TestRoomAppendEvictsOldestFirst(t *testing.T) {
	room := NewRoom("General", 25)

	for i := 1; i <= 26; i++ {
		room.Append(Message{Name: "alice", Text: fmt.Sprintf("m%d", i)})
		if room.Len() > 25 {
			t.Fatalf("history grew to %d after %d appends", room.Len(), i)
		}
	}

	got := texts(room.History())
	if len(got) != 25 {
		t.Fatalf("expected 25 messages, got %d", len(got))
	}
	for i, text := range got {
		if want := fmt.Sprintf("m%d", i+2); text != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, text)
		}
	}
}

func TestRoomHistoryIsACopy(t *testing.T) {
	room := NewRoom("General", 3)
	room.Append(Message{Text: "a"})

	snapshot := room.History()
	snapshot[0].Text = "changed"

	if got := room.History()[0].Text; got != "a" {
		t.Fatalf("stored history mutated through snapshot: %q", got)
	}
}

func TestRoomClear(t *testing.T) {
	room := NewRoom("Tech", 3)
	room.Append(Message{Text: "a"})
	room.Append(Message{Text: "b"})
	room.Clear()

	if room.Len() != 0 {
		t.Fatalf("expected empty history, got %d", room.Len())
	}
	room.Append(Message{Text: "c"})
	if got := texts(room.History()); len(got) != 1 || got[0] != "c" {
		t.Fatalf("unexpected history after clear: %v", got)
	}
}

func TestRegistryIgnoresUnknownRooms(t *testing.T) {
	reg := NewRegistry([]string{"General", "Tech", "General", ""}, 25)

	if names := reg.Names(); len(names) != 2 || names[0] != "General" || names[1] != "Tech" {
		t.Fatalf("unexpected room names: %v", names)
	}
	if reg.History("Nowhere") != nil {
		t.Fatalf("expected nil history for unknown room")
	}
	if reg.Append("Nowhere", Message{Text: "x"}) {
		t.Fatalf("append to unknown room reported success")
	}
	if reg.Clear("Nowhere") {
		t.Fatalf("clear of unknown room reported success")
	}
}

func TestRegistryEvictionAcrossLimits(t *testing.T) {
	tests := []struct {
		limit   int
		appends int
		want    int
	}{
		{limit: 1, appends: 3, want: 1},
		{limit: 25, appends: 10, want: 10},
		{limit: 25, appends: 100, want: 25},
		{limit: 0, appends: 30, want: DefaultHistoryLimit},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit=%d/appends=%d", tt.limit, tt.appends), func(t *testing.T) {
			reg := NewRegistry([]string{"General"}, tt.limit)
			for i := 0; i < tt.appends; i++ {
				reg.Append("General", Message{Text: fmt.Sprintf("m%d", i)})
			}
			got := texts(reg.History("General"))
			if len(got) != tt.want {
				t.Fatalf("expected %d messages, got %d", tt.want, len(got))
			}
			if last := got[len(got)-1]; last != fmt.Sprintf("m%d", tt.appends-1) {
				t.Fatalf("expected newest message last, got %s", last)
			}
		})
	}
}
