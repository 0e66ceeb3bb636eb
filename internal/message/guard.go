package message

import (
	"fmt"

	"github.com/messagely/messagely/internal/apperr"
)

// Decision is the outcome of an access check on a message.
type Decision int

const (
	Deny Decision = iota
	AllowRead
	AllowMarkRead
)

func (d Decision) String() string {
	switch d {
	case AllowRead:
		return "allow_read"
	case AllowMarkRead:
		return "allow_mark_read"
	default:
		return "deny"
	}
}

// Guard decides which authenticated user may act on a message. It only
// looks at the message it is handed, so callers must pass the freshly
// fetched record.
type Guard struct{}

// Read allows the sender and the recipient to view a message.
func (Guard) Read(requester string, m Message) (Decision, error) {
	if requester != "" && (requester == m.From.Username || requester == m.To.Username) {
		return AllowRead, nil
	}
	return Deny, fmt.Errorf("read message %d: %w", m.ID, apperr.ErrForbidden)
}

// MarkRead allows only the recipient to mark a message as read.
func (Guard) MarkRead(requester string, m Message) (Decision, error) {
	if requester != "" && requester == m.To.Username {
		return AllowMarkRead, nil
	}
	return Deny, fmt.Errorf("mark message %d read: %w", m.ID, apperr.ErrForbidden)
}
