package chathub

import (
	"log"
	"time"

	"wegochat/backend/internal/models"
	"wegochat/backend/internal/storage"
)

type joinRequest struct {
	client Client
	room   string
}

type roomEvent struct {
	room  string
	event models.Event
}

type userEvent struct {
	userID string
	event  models.Event
}

// ManagerService is the connection registry. All connection and room
// membership state is owned by the single goroutine running Run(), fed
// through command channels, so no locking is needed and events submitted
// for one room reach each connection in submission order.
type ManagerService struct {
	Storage storage.Storage

	// OnPresenceChange, when set before Run starts, fires after a user's
	// first connection has been marked online or their last connection
	// has been marked offline. It runs on a fire-and-forget goroutine
	// once the presence write has landed, so a check against storage at
	// that point sees the new state.
	OnPresenceChange func(userID string, online bool)

	RegisterCh   chan Client
	UnregisterCh chan Client

	joinCh      chan joinRequest
	broadcastCh chan roomEvent
	notifyCh    chan userEvent
	quit        chan struct{}

	// Owned by the Run goroutine. Clients maps each live connection to
	// its joined rooms; byUser and byRoom are delivery indexes.
	Clients map[Client]map[string]struct{}
	byUser  map[string]map[Client]struct{}
	byRoom  map[string]map[Client]struct{}
}

// NewManagerService builds the registry around the given storage. The
// registry is constructed once at process start and injected into
// everything that fans events out; there is no package-level instance.
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Storage:      s,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		joinCh:       make(chan joinRequest),
		broadcastCh:  make(chan roomEvent, 256),
		notifyCh:     make(chan userEvent, 256),
		quit:         make(chan struct{}),
		Clients:      make(map[Client]map[string]struct{}),
		byUser:       make(map[string]map[Client]struct{}),
		byRoom:       make(map[string]map[Client]struct{}),
	}
}

// Register binds a connection to its user. Idempotent; a user may hold
// several simultaneous connections and all of them receive fan-out.
func (m *ManagerService) Register(c Client) { m.RegisterCh <- c }

// Unregister removes the connection and all its room memberships.
func (m *ManagerService) Unregister(c Client) { m.UnregisterCh <- c }

// JoinRoom adds room membership for the connection. Joining counts as
// reading the room up to now, so the user's read cursor is advanced as a
// side effect.
func (m *ManagerService) JoinRoom(c Client, room string) {
	m.joinCh <- joinRequest{client: c, room: room}
}

// BroadcastToRoom delivers the event to every connection currently
// joined to the room, in submission order per connection.
func (m *ManagerService) BroadcastToRoom(room string, ev models.Event) {
	m.broadcastCh <- roomEvent{room: room, event: ev}
}

// NotifyUser delivers the event to every live connection of the user,
// regardless of room membership.
func (m *ManagerService) NotifyUser(userID string, ev models.Event) {
	m.notifyCh <- userEvent{userID: userID, event: ev}
}

// Stop shuts the registry down and closes all remaining connections.
func (m *ManagerService) Stop() { close(m.quit) }

// Run is the registry's dispatcher loop. It never waits on storage or a
// slow receiver: cursor and presence writes go to goroutines, deliveries
// drop when a client's buffer is full.
func (m *ManagerService) Run() {
	for {
		select {
		case c := <-m.RegisterCh:
			m.handleRegister(c)

		case c := <-m.UnregisterCh:
			m.handleUnregister(c)

		case req := <-m.joinCh:
			m.handleJoin(req)

		case ev := <-m.broadcastCh:
			for c := range m.byRoom[ev.room] {
				m.deliver(c, ev.event)
			}

		case ev := <-m.notifyCh:
			for c := range m.byUser[ev.userID] {
				m.deliver(c, ev.event)
			}

		case <-m.quit:
			for c := range m.Clients {
				m.handleUnregister(c)
			}
			return
		}
	}
}

func (m *ManagerService) handleRegister(c Client) {
	if _, ok := m.Clients[c]; ok {
		return
	}
	m.Clients[c] = make(map[string]struct{})

	userID := c.GetUserID()
	if m.byUser[userID] == nil {
		m.byUser[userID] = make(map[Client]struct{})
	}
	first := len(m.byUser[userID]) == 0
	m.byUser[userID][c] = struct{}{}

	if first {
		go func() {
			if err := m.Storage.SetUserOnline(userID); err != nil {
				log.Printf("WARNING: Failed to mark user %s online: %v", userID, err)
			}
			if m.OnPresenceChange != nil {
				m.OnPresenceChange(userID, true)
			}
		}()
	}
	log.Printf("Client registered for user %s (%d connections)", userID, len(m.byUser[userID]))
}

func (m *ManagerService) handleUnregister(c Client) {
	rooms, ok := m.Clients[c]
	if !ok {
		return
	}
	delete(m.Clients, c)

	for room := range rooms {
		delete(m.byRoom[room], c)
		if len(m.byRoom[room]) == 0 {
			delete(m.byRoom, room)
		}
	}

	userID := c.GetUserID()
	if set, ok := m.byUser[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.byUser, userID)
			go func() {
				if err := m.Storage.SetUserOffline(userID); err != nil {
					log.Printf("WARNING: Failed to mark user %s offline: %v", userID, err)
				}
				// Only announced once the decrement has landed, so a
				// presence check now reflects the disconnect.
				if m.OnPresenceChange != nil {
					m.OnPresenceChange(userID, false)
				}
			}()
		}
	}

	c.Close()
	log.Printf("Client unregistered for user %s", userID)
}

func (m *ManagerService) handleJoin(req joinRequest) {
	rooms, ok := m.Clients[req.client]
	if !ok {
		// Connection vanished before the join was processed.
		return
	}
	rooms[req.room] = struct{}{}

	if m.byRoom[req.room] == nil {
		m.byRoom[req.room] = make(map[Client]struct{})
	}
	m.byRoom[req.room][req.client] = struct{}{}

	userID := req.client.GetUserID()
	room := req.room
	go func() {
		if err := m.Storage.UpsertReadCursor(userID, room, time.Now()); err != nil {
			log.Printf("WARNING: Failed to advance read cursor for %s in %s: %v", userID, room, err)
		}
	}()
}

// deliver pushes the event onto the client's send channel without ever
// blocking the dispatcher; a full buffer means the event is dropped for
// that connection.
func (m *ManagerService) deliver(c Client, ev models.Event) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("WARNING: Dropping event %s for slow client of user %s", ev.Event, c.GetUserID())
	}
}
