package ws

// HandlerError is a custom error type for websocket handler errors
type HandlerError string

// Error implements the error interface
func (e HandlerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig        HandlerError = "config cannot be nil"
	ErrNilRooms         HandlerError = "room service cannot be nil"
	ErrNilCoordinator   HandlerError = "evaluation coordinator cannot be nil"
	ErrNilBroadcaster   HandlerError = "broadcaster cannot be nil"
	ErrNilUUIDGenerator HandlerError = "UUID generator cannot be nil"
	ErrConnClosed       HandlerError = "connection is closed"
	ErrSendQueueFull    HandlerError = "connection send queue is full"
)
