package core

import "testing"

func TestParseAdminCommand(t *testing.T) {
	tests := []struct {
		text  string
		kind  AdminCommandKind
		token string
		args  int
	}{
		{text: "/clear", kind: AdminClear, token: "clear"},
		{text: "  /Clear  ", kind: AdminClear, token: "Clear"},
		{text: "clear", kind: AdminClear, token: "clear"},
		{text: "/clear General", kind: AdminClear, token: "clear", args: 1},
		{text: "/kick bob", kind: AdminUnknown, token: "kick", args: 1},
		{text: "/", kind: AdminUnknown, token: ""},
		{text: "", kind: AdminUnknown, token: ""},
	}

	for _, tt := range tests {
		got := ParseAdminCommand(tt.text)
		if got.Kind != tt.kind || got.Token != tt.token || len(got.Args) != tt.args {
			t.Fatalf("ParseAdminCommand(%q) = %+v", tt.text, got)
		}
	}
}

func TestAdminSetGrowsOnly(t *testing.T) {
	set := make(AdminSet)
	if set.Has("Bob") {
		t.Fatalf("empty set reports Bob")
	}
	set.Grant("Bob")
	set.Grant("Bob")
	if !set.Has("Bob") || len(set) != 1 {
		t.Fatalf("unexpected set after grant: %v", set)
	}
	if set.Has("bob") {
		t.Fatalf("names must match exactly")
	}
}
