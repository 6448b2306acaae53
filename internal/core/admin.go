package core

import (
	"fmt"
	"strings"
)

// CommandPrefix marks chat text that is routed to the admin command handler.
const CommandPrefix = "/"

// AdminCommandKind is the closed set of admin commands.
type AdminCommandKind int

const (
	// AdminUnknown is any token the relay does not recognise.
	AdminUnknown AdminCommandKind = iota
	// AdminClear wipes the history of the room the command was sent to.
	AdminClear
)

// AdminCommand is parsed command text.
type AdminCommand struct {
	Kind  AdminCommandKind
	Token string
	Args  []string
}

// ParseAdminCommand splits text such as "/clear" into a command. The leading
// prefix is optional.
func ParseAdminCommand(text string) AdminCommand {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(text), CommandPrefix))
	if len(fields) == 0 {
		return AdminCommand{Kind: AdminUnknown}
	}

	cmd := AdminCommand{Token: fields[0], Args: fields[1:]}
	switch strings.ToLower(cmd.Token) {
	case "clear":
		cmd.Kind = AdminClear
	default:
		cmd.Kind = AdminUnknown
	}
	return cmd
}

// Verifier checks a candidate admin code against the configured secret.
type Verifier interface {
	Verify(code string) bool
}

// AdminSet holds the display names elevated to admin. Names are never removed.
type AdminSet map[string]struct{}

// Grant adds name to the set.
func (s AdminSet) Grant(name string) {
	s[name] = struct{}{}
}

// Has reports whether name was granted admin.
func (s AdminSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Notices sent to a single client.
const (
	NoticeRateLimited    = "You are sending messages too fast. Please wait a moment."
	NoticeUnauthorized   = "You are not authorized to run admin commands."
	noticeClearedFormat  = "Chat history for %s has been cleared."
	noticeUnknownCommand = "Unknown command: %s"
)

func clearedNotice(room string) string {
	return fmt.Sprintf(noticeClearedFormat, room)
}

func unknownCommandNotice(token string) string {
	return fmt.Sprintf(noticeUnknownCommand, CommandPrefix+token)
}
