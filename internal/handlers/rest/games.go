package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/KirkDiggler/outlast/internal/handlers/ws"
	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/repositories/directory"
	"github.com/KirkDiggler/outlast/internal/services/room"
)

type joinResponse struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

func requireParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return v, nil
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	nick, err := requireParam(r, "nick")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	raw, err := requireParam(r, "capacity")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	capacity, err := strconv.Atoi(raw)
	if err != nil || capacity < 1 {
		h.writeError(w, r, ErrInvalidCapacity)
		return
	}

	out, err := h.operator.CreateRoom(r.Context(), &room.CreateRoomInput{
		AdminName: nick,
		Capacity:  capacity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{RoomID: out.RoomID, UserID: out.PlayerID, IsAdmin: true})
}

func (h *Handler) connectGame(w http.ResponseWriter, r *http.Request) {
	roomID, err := requireParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	nick, err := requireParam(r, "nick")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.operator.JoinRoom(r.Context(), &room.AddPlayerInput{RoomID: roomID, Name: nick})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{RoomID: roomID, UserID: out.PlayerID, IsAdmin: false})
}

func (h *Handler) openGames(w http.ResponseWriter, r *http.Request) {
	out, err := h.directory.ListOpenRooms(r.Context(), &directory.ListOpenRoomsInput{})
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to list open rooms: %w", err))
		return
	}

	rooms := out.Rooms
	if rooms == nil {
		rooms = []*models.RoomSnapshot{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.directory.ListOpenRooms(r.Context(), &directory.ListOpenRoomsInput{})
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to list open rooms: %w", err))
		return
	}

	summaries := make(map[string]models.RoomSummary, len(out.Rooms))
	for _, snap := range out.Rooms {
		summaries[snap.ID] = snap.Summary()
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) forceStart(w http.ResponseWriter, r *http.Request) {
	roomID, err := requireParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.operator.ForceStart(r.Context(), &room.ForceStartInput{RoomID: roomID}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) closeGame(w http.ResponseWriter, r *http.Request) {
	roomID, err := requireParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.operator.CloseRoom(r.Context(), &room.CloseRoomInput{RoomID: roomID}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) kick(w http.ResponseWriter, r *http.Request) {
	roomID, err := requireParam(r, "roomId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	userID, err := requireParam(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.operator.Kick(r.Context(), &ws.KickInput{RoomID: roomID, PlayerID: userID}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
