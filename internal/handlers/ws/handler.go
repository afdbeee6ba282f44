package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/KirkDiggler/outlast/internal/common/uuid"
	"github.com/KirkDiggler/outlast/internal/services/broadcast"
	"github.com/KirkDiggler/outlast/internal/services/evaluation"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Config holds configuration for the websocket handler
type Config struct {
	Rooms         room.Service
	Coordinator   evaluation.Service
	Broadcaster   *broadcast.Broadcaster
	UUIDGenerator uuid.UUID
	Logger        zerolog.Logger

	// CheckOrigin is optional; every origin is accepted when nil
	CheckOrigin func(r *http.Request) bool
}

// Handler drives rooms from websocket traffic. It serves the game socket, the
// monitor socket and the operator actions that need to notify connected players.
type Handler struct {
	rooms         room.Service
	coordinator   evaluation.Service
	broadcaster   *broadcast.Broadcaster
	uuidGenerator uuid.UUID
	logger        zerolog.Logger
	upgrader      websocket.Upgrader

	// ctx outlives any one connection so a round keeps evaluating after its trigger leaves
	ctx    context.Context
	cancel context.CancelFunc
	rounds sync.WaitGroup
}

// New creates a new websocket handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Rooms == nil {
		return nil, ErrNilRooms
	}

	if cfg.Coordinator == nil {
		return nil, ErrNilCoordinator
	}

	if cfg.Broadcaster == nil {
		return nil, ErrNilBroadcaster
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Handler{
		rooms:         cfg.Rooms,
		coordinator:   cfg.Coordinator,
		broadcaster:   cfg.Broadcaster,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        cfg.Logger.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Shutdown cancels in-flight evaluations and waits for them to finish
func (h *Handler) Shutdown() {
	h.cancel()
	h.rounds.Wait()
}

// Wait blocks until every in-flight round evaluation has finished
func (h *Handler) Wait() {
	h.rounds.Wait()
}

func (h *Handler) upgrade(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*conn, bool) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return nil, false
	}

	c := newConn(h.uuidGenerator.NewUUID(), ws, logger)
	c.run()
	return c, true
}

// reject closes a freshly upgraded connection and waits for the peer to hang up
func (h *Handler) reject(c *conn, code int, reason string) {
	c.logger.Info().Int("code", code).Str("reason", reason).Msg("rejecting connection")
	c.Close(code, reason)
	c.readLoop(nil)
}

// ServeMonitor streams room lifecycle events to an observer
func (h *Handler) ServeMonitor(w http.ResponseWriter, r *http.Request) {
	c, ok := h.upgrade(w, r, h.logger)
	if !ok {
		return
	}

	h.broadcaster.AddMonitor(c)
	c.logger.Info().Int("monitors", h.broadcaster.MonitorCount()).Msg("monitor connected")

	c.readLoop(nil)

	h.broadcaster.RemoveMonitor(c.ID())
	c.Close(websocket.CloseNormalClosure, "")
	c.logger.Info().Msg("monitor disconnected")
}
