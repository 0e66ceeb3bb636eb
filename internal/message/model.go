package message

import (
	"time"

	"github.com/messagely/messagely/internal/identity"
)

// Message is a directed text message between two users. ReadAt stays nil
// until the recipient marks it read and never changes afterwards.
type Message struct {
	ID     int64
	From   identity.Summary
	To     identity.Summary
	Body   string
	SentAt time.Time
	ReadAt *time.Time
}
