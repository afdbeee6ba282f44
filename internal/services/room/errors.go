package room

// RoomError is a custom error type for room-related errors
type RoomError string

// Error implements the error interface
func (e RoomError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrRoomNotFound        RoomError = "room not found"
	ErrRoomFull            RoomError = "room is at maximum capacity"
	ErrPlayerNotFound      RoomError = "player not found"
	ErrNotAdmin            RoomError = "player is not the room admin"
	ErrInvalidTransition   RoomError = "invalid room state transition"
	ErrInvalidCapacity     RoomError = "capacity must be at least 1"
	ErrEmptyName           RoomError = "player name cannot be empty"
	ErrNilConfig           RoomError = "config cannot be nil"
	ErrNilDirectory        RoomError = "directory repository cannot be nil"
	ErrNilClock            RoomError = "clock cannot be nil"
	ErrNilUUIDGenerator    RoomError = "UUID generator cannot be nil"
	ErrMissingConnectionID RoomError = "connection ID cannot be empty"
)
