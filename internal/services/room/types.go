package room

import (
	"github.com/KirkDiggler/outlast/internal/common/clock"
	"github.com/KirkDiggler/outlast/internal/common/uuid"
	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/rs/zerolog"
)

// Config holds configuration for the room manager
type Config struct {
	// Directory receives a snapshot after every mutation
	Directory directory.Repository

	// Clock stamps snapshots
	Clock clock.Clock

	// UUIDGenerator generates room and player IDs
	UUIDGenerator uuid.UUID

	// Logger is optional; a disabled logger is used when zero
	Logger zerolog.Logger
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	// AdminName is the display name of the player creating the room
	AdminName string

	// Capacity is the maximum number of players
	Capacity int
}

// CreateRoomOutput contains the result of creating a room
type CreateRoomOutput struct {
	RoomID   string
	PlayerID string
	Status   models.RoomStatus
}

// AddPlayerInput contains parameters for joining a room
type AddPlayerInput struct {
	RoomID string
	Name   string
}

// AddPlayerOutput contains the result of joining a room
type AddPlayerOutput struct {
	PlayerID string

	// Started is true when this join filled the room and moved it to MAIN_PLAYER_THINKING
	Started bool

	Room *models.RoomView
}

// RemovePlayerInput contains parameters for removing a player
type RemovePlayerInput struct {
	RoomID   string
	PlayerID string
}

// RemovePlayerOutput contains the result of removing a player
type RemovePlayerOutput struct {
	// Player is the removed player as they were before removal
	Player models.Player

	// ConnectionID is the connection that was bound to the player, if any
	ConnectionID string

	// AdminChanged is true when the removed player was the admin and someone took over
	AdminChanged bool

	// NewAdmin is set when AdminChanged is true
	NewAdmin models.Player

	// RoomDeleted is true when the room became empty and was destroyed
	RoomDeleted bool

	// Room is the state after removal; nil when RoomDeleted
	Room *models.RoomView
}

// RegisterConnectionInput contains parameters for binding a connection
type RegisterConnectionInput struct {
	RoomID       string
	PlayerID     string
	ConnectionID string
}

// RegisterConnectionOutput contains the result of binding a connection
type RegisterConnectionOutput struct {
	Player models.Player

	// DisplacedConnectionID is the player's previous connection, which the caller should close
	DisplacedConnectionID string

	Room *models.RoomView
}

// UnregisterConnectionInput contains parameters for dropping a connection
type UnregisterConnectionInput struct {
	RoomID       string
	ConnectionID string
}

// UnregisterConnectionOutput contains the result of dropping a connection
type UnregisterConnectionOutput struct {
	// PlayerID is the player the connection was bound to
	PlayerID string

	// Bound is false when the connection was already displaced or removed
	Bound bool
}

// SetPromptInput contains parameters for starting a round
type SetPromptInput struct {
	RoomID string

	// PlayerID, when set, must be the admin
	PlayerID string

	Text string
}

// SetPromptOutput contains the result of starting a round
type SetPromptOutput struct {
	Room *models.RoomView
}

// RecordAnswerInput contains parameters for answering
type RecordAnswerInput struct {
	RoomID   string
	PlayerID string
	Text     string
}

// RecordAnswerOutput contains the result of answering
type RecordAnswerOutput struct {
	Room *models.RoomView
}

// RotateAdminInput contains parameters for rotating the admin role
type RotateAdminInput struct {
	RoomID string
}

// RotateAdminOutput contains the result of rotating the admin role
type RotateAdminOutput struct {
	// AdminID is empty when the room has no players
	AdminID string
}

// SetStatusInput contains parameters for a raw status transition
type SetStatusInput struct {
	RoomID string
	Status models.RoomStatus
}

// SetStatusOutput contains the result of a raw status transition
type SetStatusOutput struct {
	Room *models.RoomView

	// RoomDeleted is true when the transition closed the room
	RoomDeleted bool
}

// SnapshotForDirectoryInput identifies the room to project
type SnapshotForDirectoryInput struct {
	RoomID string
}

// GetRoomInput identifies the room to read
type GetRoomInput struct {
	RoomID string
}

// ListRoomsInput is empty; every live room is listed
type ListRoomsInput struct{}

// ListRoomsOutput contains every live room
type ListRoomsOutput struct {
	Rooms []*models.RoomView
}

// BeginEvaluationInput identifies the room whose round may be complete
type BeginEvaluationInput struct {
	RoomID string
}

// EvaluationTicket carries everything needed to evaluate one round.
// Only one ticket is ever issued per round.
type EvaluationTicket struct {
	RoomID    string
	Round     int
	Prompt    string
	PlayerIDs []string
	Answers   map[string]string
}

// BeginEvaluationOutput contains the result of a completion attempt
type BeginEvaluationOutput struct {
	// Started is false when the round is not complete or another caller already claimed it
	Started bool

	// Ticket is set when Started is true
	Ticket *EvaluationTicket

	Room *models.RoomView
}

// ApplyRoundResultsInput contains evaluated results for a claimed round
type ApplyRoundResultsInput struct {
	RoomID  string
	Round   int
	Results map[string]models.RoundResult
}

// ApplyRoundResultsOutput contains the finished round
type ApplyRoundResultsOutput struct {
	Room *models.RoomView
}

// ContinueGameInput contains parameters for starting the next round
type ContinueGameInput struct {
	RoomID string

	// PlayerID, when set, must be the admin
	PlayerID string
}

// ContinueGameOutput contains the result of starting the next round
type ContinueGameOutput struct {
	NewAdmin models.Player
	Room     *models.RoomView
}

// ForceStartInput identifies the room to start early
type ForceStartInput struct {
	RoomID string
}

// ForceStartOutput contains the started room
type ForceStartOutput struct {
	Room *models.RoomView
}

// CloseRoomInput contains parameters for closing a room
type CloseRoomInput struct {
	RoomID string

	// PlayerID, when set, must be the admin
	PlayerID string
}

// CloseRoomOutput contains the final state of the closed room
type CloseRoomOutput struct {
	Room *models.RoomView
}
