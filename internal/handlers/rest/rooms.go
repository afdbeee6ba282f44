package rest

import (
	"net/http"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/go-chi/chi/v5"
)

// RoomInfo is the full read model of a room
type RoomInfo struct {
	ID            string                        `json:"id"`
	Status        models.RoomStatus             `json:"status"`
	Capacity      int                           `json:"capacity"`
	CurrentPrompt string                        `json:"currentPrompt"`
	Round         int                           `json:"round"`
	Players       []models.Player               `json:"players"`
	RawAnswers    map[string]string             `json:"rawAnswers"`
	RoundResults  map[string]models.RoundResult `json:"roundResults"`
	Stats         map[string]models.PlayerStats `json:"stats"`
}

type themeResponse struct {
	Theme string `json:"theme"`
}

// loadRoom reads the room named in the path, writing the error response on failure
func (h *Handler) loadRoom(w http.ResponseWriter, r *http.Request) (*models.RoomView, bool) {
	view, err := h.rooms.GetRoom(r.Context(), &room.GetRoomInput{RoomID: chi.URLParam(r, "roomId")})
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return view, true
}

func (h *Handler) roomStatus(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.Status)
}

func (h *Handler) roomTheme(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Theme: view.CurrentPrompt})
}

func (h *Handler) roundResults(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(view.RoundResults))
}

func (h *Handler) rawAnswers(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(view.Answers))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, nonNil(view.Stats))
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadRoom(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, RoomInfo{
		ID:            view.ID,
		Status:        view.Status,
		Capacity:      view.Capacity,
		CurrentPrompt: view.CurrentPrompt,
		Round:         view.Round,
		Players:       view.Players,
		RawAnswers:    nonNil(view.Answers),
		RoundResults:  nonNil(view.RoundResults),
		Stats:         nonNil(view.Stats),
	})
}

// nonNil keeps empty maps encoding as {} rather than null
func nonNil[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return m
}
