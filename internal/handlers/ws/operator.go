package ws

import (
	"context"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/services/broadcast"
	"github.com/KirkDiggler/outlast/internal/services/room"
)

// CreateRoom creates a room and announces it to monitors
func (h *Handler) CreateRoom(ctx context.Context, input *room.CreateRoomInput) (*room.CreateRoomOutput, error) {
	out, err := h.rooms.CreateRoom(ctx, input)
	if err != nil {
		return nil, err
	}

	h.broadcaster.Monitor(broadcast.Event{RoomID: out.RoomID, Action: broadcast.ActionCreated})
	return out, nil
}

// JoinRoom adds a player and, if that filled the room, starts it for everyone connected
func (h *Handler) JoinRoom(ctx context.Context, input *room.AddPlayerInput) (*room.AddPlayerOutput, error) {
	out, err := h.rooms.AddPlayer(ctx, input)
	if err != nil {
		return nil, err
	}

	h.broadcaster.Monitor(broadcast.Event{RoomID: input.RoomID, Action: broadcast.ActionPlayerJoined, Detail: input.Name})
	if out.Started {
		h.announceStart(out.Room)
	}
	return out, nil
}

// ForceStart starts a room before it is full
func (h *Handler) ForceStart(ctx context.Context, input *room.ForceStartInput) (*room.ForceStartOutput, error) {
	out, err := h.rooms.ForceStart(ctx, input)
	if err != nil {
		return nil, err
	}

	h.broadcaster.Monitor(broadcast.Event{RoomID: input.RoomID, Action: broadcast.ActionForceStarted})
	h.announceStart(out.Room)
	return out, nil
}

// CloseRoom closes a room from any state and disconnects its players
func (h *Handler) CloseRoom(ctx context.Context, input *room.CloseRoomInput) (*room.CloseRoomOutput, error) {
	out, err := h.rooms.CloseRoom(ctx, input)
	if err != nil {
		return nil, err
	}

	h.finishClosedRoom(out.Room)
	return out, nil
}

// KickInput identifies the player to remove
type KickInput struct {
	RoomID   string
	PlayerID string
}

// Kick removes a player and closes their connection with the kick code
func (h *Handler) Kick(ctx context.Context, input *KickInput) error {
	return h.removePlayer(ctx, input.RoomID, input.PlayerID, broadcast.ActionPlayerKicked)
}

func (h *Handler) announceStart(view *models.RoomView) {
	h.broadcaster.Publish(view.ID, statusMessage(view.Status))
	h.sendPromptRequests(view)
}
