package directory

import "github.com/KirkDiggler/outlast/internal/models"

type SaveRoomInput struct {
	Room *models.RoomSnapshot
}

type DeleteRoomInput struct {
	RoomID string
}

type ListOpenRoomsInput struct {
}

type ListOpenRoomsOutput struct {
	Rooms []*models.RoomSnapshot
}
