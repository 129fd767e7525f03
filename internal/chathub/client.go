package chathub

import "wegochat/backend/internal/models"

// Client is the interface for one live connection. It abstracts the
// underlying transport so the hub can manage connection types uniformly;
// production uses WebSocketClient, tests substitute a mock.
type Client interface {
	// GetUserID returns the authenticated user this connection belongs to.
	GetUserID() string

	// GetSendChannel returns the channel the hub delivers events through.
	// It is a send-only channel with per-connection FIFO ordering.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's send channel and connection.
	Close()
}
