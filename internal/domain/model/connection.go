package model

import "time"

// ConnectionStatus is the lifecycle state of a connection request.
type ConnectionStatus string

// Connection lifecycle states.
const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionPending, ConnectionAccepted, ConnectionRejected:
		return true
	}
	return false
}

// Connection is a request from one user to join another's network.
type Connection struct {
	ID        string           `json:"id"`
	From      string           `json:"from_id"`
	To        string           `json:"to_id"`
	Message   string           `json:"message,omitempty"`
	Status    ConnectionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Other returns the participant that is not userID.
func (c *Connection) Other(userID string) string {
	if c.From == userID {
		return c.To
	}
	return c.From
}
