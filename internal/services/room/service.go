package room

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/KirkDiggler/outlast/internal/common/clock"
	"github.com/KirkDiggler/outlast/internal/common/uuid"
	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/rs/zerolog"
)

// roomEntry guards one room. Lock order is entry before registry; the registry
// lock is never held while waiting on an entry.
type roomEntry struct {
	mu        sync.Mutex
	room      *models.Room
	destroyed bool
}

// manager implements the Service interface
type manager struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry

	directory     directory.Repository
	clock         clock.Clock
	uuidGenerator uuid.UUID
	logger        zerolog.Logger
}

// New creates a new room manager
func New(cfg *Config) (*manager, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Directory == nil {
		return nil, ErrNilDirectory
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &manager{
		rooms:         make(map[string]*roomEntry),
		directory:     cfg.Directory,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        cfg.Logger.With().Str("component", "room_manager").Logger(),
	}, nil
}

// withRoom runs fn while holding the room's lock
func (m *manager) withRoom(roomID string, fn func(e *roomEntry) error) error {
	m.mu.RLock()
	e, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// the room may have been destroyed while we waited for the lock
	if e.destroyed {
		return ErrRoomNotFound
	}

	return fn(e)
}

// persist stamps the room and writes its snapshot to the directory.
// The directory is a discovery cache so failures are logged, not returned.
func (m *manager) persist(ctx context.Context, room *models.Room) {
	room.Touch(m.clock.Now())
	err := m.directory.SaveRoom(ctx, &directory.SaveRoomInput{
		Room: room.Snapshot(),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("room_id", room.ID()).Msg("failed to save room snapshot")
	}
}

// destroy removes the room from the registry and the directory. Caller holds e.mu.
func (m *manager) destroy(ctx context.Context, e *roomEntry) {
	e.destroyed = true
	roomID := e.room.ID()

	m.mu.Lock()
	delete(m.rooms, roomID)
	m.mu.Unlock()

	err := m.directory.DeleteRoom(ctx, &directory.DeleteRoomInput{RoomID: roomID})
	if err != nil {
		m.logger.Error().Err(err).Str("room_id", roomID).Msg("failed to delete room snapshot")
	}
	m.logger.Info().Str("room_id", roomID).Msg("room destroyed")
}

func requireAdmin(room *models.Room, playerID string) error {
	if playerID == "" {
		return nil
	}
	if _, ok := room.Player(playerID); !ok {
		return ErrPlayerNotFound
	}
	if room.AdminID() != playerID {
		return ErrNotAdmin
	}
	return nil
}

// CreateRoom creates a room with the caller as its admin and only player
func (m *manager) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	if input.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}

	name := strings.TrimSpace(input.AdminName)
	if name == "" {
		return nil, ErrEmptyName
	}

	roomID := m.uuidGenerator.NewUUID()
	playerID := m.uuidGenerator.NewUUID()

	room := models.NewRoom(roomID, input.Capacity, models.Player{
		ID:   playerID,
		Name: name,
	}, m.clock.Now())

	e := &roomEntry{room: room}
	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	m.rooms[roomID] = e
	m.mu.Unlock()

	m.persist(ctx, room)

	m.logger.Info().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Int("capacity", input.Capacity).
		Msg("room created")

	return &CreateRoomOutput{
		RoomID:   roomID,
		PlayerID: playerID,
		Status:   room.Status(),
	}, nil
}

// AddPlayer adds a player to a room that still has space
func (m *manager) AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	var output *AddPlayerOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.IsFull() {
			return ErrRoomFull
		}

		playerID := m.uuidGenerator.NewUUID()
		room.AddPlayer(models.Player{ID: playerID, Name: name})

		started := false
		if room.IsFull() && room.Status() == models.RoomStatusWaitingForPlayers {
			started = room.TransitionTo(models.RoomStatusMainPlayerThinking)
		}

		m.persist(ctx, room)

		output = &AddPlayerOutput{
			PlayerID: playerID,
			Started:  started,
			Room:     room.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RemovePlayer removes a player, rotating the admin role and deleting an emptied room
func (m *manager) RemovePlayer(ctx context.Context, input *RemovePlayerInput) (*RemovePlayerOutput, error) {
	var output *RemovePlayerOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		player, ok := room.Player(input.PlayerID)
		if !ok {
			return ErrPlayerNotFound
		}

		connID, _ := room.ConnectionFor(input.PlayerID)
		adminChanged, _ := room.RemovePlayer(input.PlayerID)

		output = &RemovePlayerOutput{
			Player:       player,
			ConnectionID: connID,
		}

		if room.IsEmpty() {
			m.destroy(ctx, e)
			output.RoomDeleted = true
			return nil
		}

		if adminChanged {
			output.AdminChanged = true
			output.NewAdmin, _ = room.Player(room.AdminID())
		}

		m.persist(ctx, room)
		output.Room = room.View()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RegisterConnection binds a live connection to a player
func (m *manager) RegisterConnection(ctx context.Context, input *RegisterConnectionInput) (*RegisterConnectionOutput, error) {
	if input.ConnectionID == "" {
		return nil, ErrMissingConnectionID
	}

	var output *RegisterConnectionOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		displaced, ok := room.BindConnection(input.ConnectionID, input.PlayerID)
		if !ok {
			return ErrPlayerNotFound
		}

		player, _ := room.Player(input.PlayerID)
		m.persist(ctx, room)

		output = &RegisterConnectionOutput{
			Player:                player,
			DisplacedConnectionID: displaced,
			Room:                  room.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// UnregisterConnection drops a connection binding
func (m *manager) UnregisterConnection(ctx context.Context, input *UnregisterConnectionInput) (*UnregisterConnectionOutput, error) {
	var output *UnregisterConnectionOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		playerID, bound := e.room.UnbindConnection(input.ConnectionID)
		output = &UnregisterConnectionOutput{
			PlayerID: playerID,
			Bound:    bound,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SetPrompt starts a round with the admin's scenario
func (m *manager) SetPrompt(ctx context.Context, input *SetPromptInput) (*SetPromptOutput, error) {
	var output *SetPromptOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusMainPlayerThinking {
			return ErrInvalidTransition
		}
		if err := requireAdmin(room, input.PlayerID); err != nil {
			return err
		}

		room.SetPrompt(input.Text)
		room.TransitionTo(models.RoomStatusWaitingForAnswers)
		m.persist(ctx, room)

		output = &SetPromptOutput{Room: room.View()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RecordAnswer stores a player's answer for the current round
func (m *manager) RecordAnswer(ctx context.Context, input *RecordAnswerInput) (*RecordAnswerOutput, error) {
	var output *RecordAnswerOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusWaitingForAnswers {
			return ErrInvalidTransition
		}
		if !room.RecordAnswer(input.PlayerID, input.Text) {
			return ErrPlayerNotFound
		}

		m.persist(ctx, room)

		output = &RecordAnswerOutput{Room: room.View()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RotateAdmin hands the admin role to the next player in join order
func (m *manager) RotateAdmin(ctx context.Context, input *RotateAdminInput) (*RotateAdminOutput, error) {
	var output *RotateAdminOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.IsEmpty() {
			output = &RotateAdminOutput{}
			return nil
		}

		adminID := room.RotateAdmin()
		m.persist(ctx, room)

		output = &RotateAdminOutput{AdminID: adminID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SetStatus applies a validated status transition. It has no side effects besides
// the status itself, except that CLOSED destroys the room.
func (m *manager) SetStatus(ctx context.Context, input *SetStatusInput) (*SetStatusOutput, error) {
	var output *SetStatusOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if !room.TransitionTo(input.Status) {
			return ErrInvalidTransition
		}

		if input.Status == models.RoomStatusClosed {
			output = &SetStatusOutput{Room: room.View(), RoomDeleted: true}
			m.destroy(ctx, e)
			return nil
		}

		m.persist(ctx, room)
		output = &SetStatusOutput{Room: room.View()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SnapshotForDirectory returns the discovery projection of a room
func (m *manager) SnapshotForDirectory(ctx context.Context, input *SnapshotForDirectoryInput) (*models.RoomSnapshot, error) {
	var snapshot *models.RoomSnapshot
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		snapshot = e.room.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// GetRoom returns a read-only copy of a room's full state
func (m *manager) GetRoom(ctx context.Context, input *GetRoomInput) (*models.RoomView, error) {
	var view *models.RoomView
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		view = e.room.View()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// ListRooms returns a read-only copy of every live room, oldest first
func (m *manager) ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	rooms := make([]*models.RoomView, 0, len(ids))
	for _, id := range ids {
		view, err := m.GetRoom(ctx, &GetRoomInput{RoomID: id})
		if errors.Is(err, ErrRoomNotFound) {
			// destroyed since we listed it
			continue
		}
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, view)
	}

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})

	return &ListRoomsOutput{Rooms: rooms}, nil
}

// BeginEvaluation is the single guarded completion check. Both the answer path and
// the disconnect path call it; the first caller to observe every answer in moves the
// room to WAITING_FOR_ALL_ANSWERS_FROM_GPT and gets the round's ticket. Everyone
// else gets Started=false.
func (m *manager) BeginEvaluation(ctx context.Context, input *BeginEvaluationInput) (*BeginEvaluationOutput, error) {
	var output *BeginEvaluationOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusWaitingForAnswers || !room.AllAnswered() {
			output = &BeginEvaluationOutput{Room: room.View()}
			return nil
		}

		room.TransitionTo(models.RoomStatusEvaluating)
		m.persist(ctx, room)

		output = &BeginEvaluationOutput{
			Started: true,
			Ticket: &EvaluationTicket{
				RoomID:    room.ID(),
				Round:     room.Round(),
				Prompt:    room.Prompt(),
				PlayerIDs: room.PlayerIDs(),
				Answers:   room.Answers(),
			},
			Room: room.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ApplyRoundResults folds evaluated results into the room and moves it to GAME_DONE.
// Results for players who left during evaluation are dropped.
func (m *manager) ApplyRoundResults(ctx context.Context, input *ApplyRoundResultsInput) (*ApplyRoundResultsOutput, error) {
	var output *ApplyRoundResultsOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusEvaluating || room.Round() != input.Round {
			return ErrInvalidTransition
		}

		for playerID, result := range input.Results {
			room.ApplyResult(playerID, result)
		}

		room.TransitionTo(models.RoomStatusGameDone)
		m.persist(ctx, room)

		output = &ApplyRoundResultsOutput{Room: room.View()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ContinueGame rotates the admin, clears the prompt and returns to MAIN_PLAYER_THINKING
func (m *manager) ContinueGame(ctx context.Context, input *ContinueGameInput) (*ContinueGameOutput, error) {
	var output *ContinueGameOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusGameDone {
			return ErrInvalidTransition
		}
		if err := requireAdmin(room, input.PlayerID); err != nil {
			return err
		}

		room.RotateAdmin()
		room.ClearPrompt()
		room.TransitionTo(models.RoomStatusMainPlayerThinking)
		m.persist(ctx, room)

		admin, _ := room.Player(room.AdminID())
		output = &ContinueGameOutput{
			NewAdmin: admin,
			Room:     room.View(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// ForceStart moves a waiting room to MAIN_PLAYER_THINKING without filling it
func (m *manager) ForceStart(ctx context.Context, input *ForceStartInput) (*ForceStartOutput, error) {
	var output *ForceStartOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if room.Status() != models.RoomStatusWaitingForPlayers {
			return ErrInvalidTransition
		}

		room.TransitionTo(models.RoomStatusMainPlayerThinking)
		m.persist(ctx, room)

		output = &ForceStartOutput{Room: room.View()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// CloseRoom closes and destroys a room from any state
func (m *manager) CloseRoom(ctx context.Context, input *CloseRoomInput) (*CloseRoomOutput, error) {
	var output *CloseRoomOutput
	err := m.withRoom(input.RoomID, func(e *roomEntry) error {
		room := e.room
		if err := requireAdmin(room, input.PlayerID); err != nil {
			return err
		}
		if !room.TransitionTo(models.RoomStatusClosed) {
			return ErrInvalidTransition
		}

		output = &CloseRoomOutput{Room: room.View()}
		m.destroy(ctx, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}
