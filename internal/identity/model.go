package identity

import "time"

// Identity is a registered user's account record.
type Identity struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

// Summary is the public view of an identity embedded in message and user
// listings.
type Summary struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Summary strips credentials and timestamps.
func (i Identity) Summary() Summary {
	return Summary{Username: i.Username, FirstName: i.FirstName, LastName: i.LastName, Phone: i.Phone}
}

// RegisterInput carries the fields required to create an identity.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}
