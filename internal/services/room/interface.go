package room

import (
	"context"

	"github.com/KirkDiggler/outlast/internal/models"
)

// Service is the authoritative registry of rooms. Every operation on a room is
// serialized with every other operation on the same room; operations on
// different rooms never wait on each other.
type Service interface {
	// CreateRoom creates a room with the caller as its admin and only player
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// AddPlayer adds a player to a room that still has space
	AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error)

	// RemovePlayer removes a player, rotating the admin role and deleting an emptied room
	RemovePlayer(ctx context.Context, input *RemovePlayerInput) (*RemovePlayerOutput, error)

	// RegisterConnection binds a live connection to a player
	RegisterConnection(ctx context.Context, input *RegisterConnectionInput) (*RegisterConnectionOutput, error)

	// UnregisterConnection drops a connection binding
	UnregisterConnection(ctx context.Context, input *UnregisterConnectionInput) (*UnregisterConnectionOutput, error)

	// SetPrompt starts a round with the admin's scenario
	SetPrompt(ctx context.Context, input *SetPromptInput) (*SetPromptOutput, error)

	// RecordAnswer stores a player's answer for the current round
	RecordAnswer(ctx context.Context, input *RecordAnswerInput) (*RecordAnswerOutput, error)

	// RotateAdmin hands the admin role to the next player in join order
	RotateAdmin(ctx context.Context, input *RotateAdminInput) (*RotateAdminOutput, error)

	// SetStatus applies a validated status transition
	SetStatus(ctx context.Context, input *SetStatusInput) (*SetStatusOutput, error)

	// SnapshotForDirectory returns the discovery projection of a room
	SnapshotForDirectory(ctx context.Context, input *SnapshotForDirectoryInput) (*models.RoomSnapshot, error)

	// GetRoom returns a read-only copy of a room's full state
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.RoomView, error)

	// ListRooms returns a read-only copy of every live room, oldest first
	ListRooms(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error)

	// BeginEvaluation atomically checks that every answer is in and claims the round for evaluation
	BeginEvaluation(ctx context.Context, input *BeginEvaluationInput) (*BeginEvaluationOutput, error)

	// ApplyRoundResults folds evaluated results into the room and finishes the round
	ApplyRoundResults(ctx context.Context, input *ApplyRoundResultsInput) (*ApplyRoundResultsOutput, error)

	// ContinueGame starts the next round with the next admin
	ContinueGame(ctx context.Context, input *ContinueGameInput) (*ContinueGameOutput, error)

	// ForceStart starts a room before it is full
	ForceStart(ctx context.Context, input *ForceStartInput) (*ForceStartOutput, error)

	// CloseRoom closes and destroys a room
	CloseRoom(ctx context.Context, input *CloseRoomInput) (*CloseRoomOutput, error)
}
