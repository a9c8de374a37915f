package domain

import "time"

// Presence per-user ephemeral online state. Writes are keyed by user id
// and last-writer-wins, setting online twice is harmless.
type Presence struct {
	UserID   string    `json:"userId"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
	// SocketID identifies the current live connection, empty when offline
	SocketID string `json:"socketId,omitempty"`
}
