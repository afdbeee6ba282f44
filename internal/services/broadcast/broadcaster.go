package broadcast

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Conn is a live outbound channel to one client
type Conn interface {
	ID() string

	// Send queues text for delivery without blocking
	Send(text string) error

	// Close queues a close frame after any pending messages
	Close(code int, reason string)
}

// Action names a room lifecycle event published to monitors
type Action string

const (
	ActionCreated          Action = "CREATED"
	ActionPlayerJoined     Action = "PLAYER_JOINED"
	ActionPromptSet        Action = "PROMPT_SET"
	ActionAnswerSubmitted  Action = "ANSWER_SUBMITTED"
	ActionAnswersEvaluated Action = "ANSWERS_EVALUATED"
	ActionRoundCompleted   Action = "ROUND_COMPLETED"
	ActionContinued        Action = "CONTINUED"
	ActionClosed           Action = "CLOSED"
	ActionPlayerLeft       Action = "PLAYER_LEFT"
	ActionAdminChanged     Action = "ADMIN_CHANGED"
	ActionRoomDeleted      Action = "ROOM_DELETED"
	ActionPlayerKicked     Action = "PLAYER_KICKED"
	ActionForceStarted     Action = "FORCE_STARTED"
)

// Event is one monitor notification
type Event struct {
	RoomID string
	Action Action

	// Detail is optional and rendered in parentheses
	Detail string
}

// String renders the event in the monitor wire format
func (e Event) String() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s : %s", e.RoomID, e.Action)
	}
	return fmt.Sprintf("%s : %s (%s)", e.RoomID, e.Action, e.Detail)
}

// Config holds configuration for the broadcaster
type Config struct {
	Logger zerolog.Logger
}

// Broadcaster fans text out to room channels and to the global monitor channel.
// Delivery is fire-and-forget; a connection that fails a send is dropped.
type Broadcaster struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]Conn
	monitors map[string]Conn
	logger   zerolog.Logger
}

// New creates a new broadcaster
func New(cfg *Config) *Broadcaster {
	var logger zerolog.Logger
	if cfg != nil {
		logger = cfg.Logger
	}

	return &Broadcaster{
		rooms:    make(map[string]map[string]Conn),
		monitors: make(map[string]Conn),
		logger:   logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Join subscribes a connection to a room's channel
func (b *Broadcaster) Join(roomID string, c Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conns, ok := b.rooms[roomID]
	if !ok {
		conns = make(map[string]Conn)
		b.rooms[roomID] = conns
	}
	conns[c.ID()] = c
}

// Leave unsubscribes a connection from a room's channel
func (b *Broadcaster) Leave(roomID, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.leaveLocked(roomID, connID)
}

func (b *Broadcaster) leaveLocked(roomID, connID string) {
	conns, ok := b.rooms[roomID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(b.rooms, roomID)
	}
}

// Connection looks up a subscribed connection
func (b *Broadcaster) Connection(roomID, connID string) (Conn, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.rooms[roomID][connID]
	return c, ok
}

// DropRoom removes a room's channel and returns the connections that were on it
func (b *Broadcaster) DropRoom(roomID string) []Conn {
	b.mu.Lock()
	conns := b.rooms[roomID]
	delete(b.rooms, roomID)
	b.mu.Unlock()

	out := make([]Conn, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// Publish sends text to every connection in a room
func (b *Broadcaster) Publish(roomID, text string) {
	b.mu.RLock()
	targets := make([]Conn, 0, len(b.rooms[roomID]))
	for _, c := range b.rooms[roomID] {
		targets = append(targets, c)
	}
	b.mu.RUnlock()

	var failed []string
	for _, c := range targets {
		if err := c.Send(text); err != nil {
			b.logger.Warn().Err(err).Str("room_id", roomID).Str("conn_id", c.ID()).Msg("dropping connection after failed send")
			failed = append(failed, c.ID())
		}
	}

	if len(failed) == 0 {
		return
	}

	b.mu.Lock()
	for _, id := range failed {
		b.leaveLocked(roomID, id)
	}
	b.mu.Unlock()
}

// SendTo sends text to one connection in a room. It reports false when the
// connection is unknown or the send failed.
func (b *Broadcaster) SendTo(roomID, connID, text string) bool {
	c, ok := b.Connection(roomID, connID)
	if !ok {
		return false
	}

	if err := c.Send(text); err != nil {
		b.logger.Warn().Err(err).Str("room_id", roomID).Str("conn_id", connID).Msg("dropping connection after failed send")
		b.Leave(roomID, connID)
		return false
	}
	return true
}

// AddMonitor subscribes a connection to the monitor channel
func (b *Broadcaster) AddMonitor(c Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.monitors[c.ID()] = c
}

// RemoveMonitor unsubscribes a connection from the monitor channel
func (b *Broadcaster) RemoveMonitor(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.monitors, connID)
}

// MonitorCount returns how many monitors are subscribed
func (b *Broadcaster) MonitorCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.monitors)
}

// Monitor publishes an event to every monitor
func (b *Broadcaster) Monitor(event Event) {
	text := event.String()

	b.mu.RLock()
	targets := make([]Conn, 0, len(b.monitors))
	for _, c := range b.monitors {
		targets = append(targets, c)
	}
	b.mu.RUnlock()

	b.logger.Debug().Str("room_id", event.RoomID).Str("action", string(event.Action)).Msg("monitor event")

	for _, c := range targets {
		if err := c.Send(text); err != nil {
			b.logger.Warn().Err(err).Str("conn_id", c.ID()).Msg("dropping monitor after failed send")
			b.RemoveMonitor(c.ID())
		}
	}
}
