package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KirkDiggler/outlast/internal/services/room"
)

// RestError is a custom error type for REST handler errors
type RestError string

// Error implements the error interface
func (e RestError) Error() string {
	return string(e)
}

const (
	ErrNilConfig    RestError = "config cannot be nil"
	ErrNilOperator  RestError = "operator cannot be nil"
	ErrNilRooms     RestError = "room service cannot be nil"
	ErrNilDirectory RestError = "directory repository cannot be nil"

	ErrMissingParam    RestError = "missing required parameter"
	ErrInvalidCapacity RestError = "capacity must be a positive integer"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingParam),
		errors.Is(err, ErrInvalidCapacity),
		errors.Is(err, room.ErrInvalidCapacity),
		errors.Is(err, room.ErrEmptyName):
		return http.StatusBadRequest
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
