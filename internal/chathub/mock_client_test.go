package chathub_test

import (
	"testing"
	"time"

	"wegochat/backend/internal/models"
)

// mockClient is a test double for the chathub.Client interface. The send
// channel is buffered so hub deliveries never block in tests.
type mockClient struct {
	userID string
	send   chan models.Event
}

func newMockClient(userID string) *mockClient {
	return &mockClient{
		userID: userID,
		send:   make(chan models.Event, 16),
	}
}

func (c *mockClient) GetUserID() string                   { return c.userID }
func (c *mockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *mockClient) Run()                                {}

func (c *mockClient) Close() {
	close(c.send)
}

// recv waits briefly for one event; ok is false when nothing arrived.
func (c *mockClient) recv(t *testing.T) (models.Event, bool) {
	t.Helper()
	select {
	case ev, open := <-c.send:
		if !open {
			return models.Event{}, false
		}
		return ev, true
	case <-time.After(200 * time.Millisecond):
		return models.Event{}, false
	}
}

// tryRecv drains one event without waiting.
func (c *mockClient) tryRecv() (models.Event, bool) {
	select {
	case ev, open := <-c.send:
		if !open {
			return models.Event{}, false
		}
		return ev, true
	default:
		return models.Event{}, false
	}
}
