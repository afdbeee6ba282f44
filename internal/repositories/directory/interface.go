package directory

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/outlast/internal/repositories/directory Repository

import "context"

// Repository persists the discovery projection of rooms. It is never read back
// into game logic; the room manager's in-memory state is authoritative.
type Repository interface {
	// SaveRoom upserts a room snapshot
	SaveRoom(ctx context.Context, input *SaveRoomInput) error

	// DeleteRoom removes a room snapshot
	DeleteRoom(ctx context.Context, input *DeleteRoomInput) error

	// ListOpenRooms retrieves every snapshot whose room is not closed
	ListOpenRooms(ctx context.Context, input *ListOpenRoomsInput) (*ListOpenRoomsOutput, error)
}
