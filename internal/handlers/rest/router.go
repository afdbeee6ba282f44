package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/KirkDiggler/outlast/internal/handlers/ws"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_operator.go github.com/KirkDiggler/outlast/internal/handlers/rest Operator

// Operator performs the room actions that connected players must hear about
type Operator interface {
	CreateRoom(ctx context.Context, input *room.CreateRoomInput) (*room.CreateRoomOutput, error)
	JoinRoom(ctx context.Context, input *room.AddPlayerInput) (*room.AddPlayerOutput, error)
	ForceStart(ctx context.Context, input *room.ForceStartInput) (*room.ForceStartOutput, error)
	CloseRoom(ctx context.Context, input *room.CloseRoomInput) (*room.CloseRoomOutput, error)
	Kick(ctx context.Context, input *ws.KickInput) error
}

// Config holds configuration for the REST handler
type Config struct {
	Operator  Operator
	Rooms     room.Service
	Directory directory.Repository
	Logger    zerolog.Logger
}

// Handler serves the room CRUD API
type Handler struct {
	operator  Operator
	rooms     room.Service
	directory directory.Repository
	logger    zerolog.Logger
}

// New creates a new REST handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Operator == nil {
		return nil, ErrNilOperator
	}

	if cfg.Rooms == nil {
		return nil, ErrNilRooms
	}

	if cfg.Directory == nil {
		return nil, ErrNilDirectory
	}

	return &Handler{
		operator:  cfg.Operator,
		rooms:     cfg.Rooms,
		directory: cfg.Directory,
		logger:    cfg.Logger.With().Str("component", "rest").Logger(),
	}, nil
}

// Routes mounts the API on a new router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/games", func(r chi.Router) {
		r.Post("/create", h.createGame)
		r.Post("/connect", h.connectGame)
		r.Get("/open", h.openGames)
		r.Get("/summary", h.summary)
		r.Post("/forceStart", h.forceStart)
		r.Post("/close", h.closeGame)
		r.Post("/kick", h.kick)
	})

	r.Route("/room/{roomId}", func(r chi.Router) {
		r.Get("/status", h.roomStatus)
		r.Get("/theme", h.roomTheme)
		r.Get("/answers", h.roundResults)
		r.Get("/raw-answers", h.rawAnswers)
		r.Get("/stats", h.stats)
		r.Get("/info", h.info)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
