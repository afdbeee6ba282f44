package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/KirkDiggler/outlast/internal/models"
	"github.com/KirkDiggler/outlast/internal/services/broadcast"
	"github.com/KirkDiggler/outlast/internal/services/room"
	"github.com/gorilla/websocket"
)

// ServeGame binds one websocket to one player of one room for its whole life
func (h *Handler) ServeGame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := query.Get("roomId")
	playerID := query.Get("userId")

	logger := h.logger.With().Str("room_id", roomID).Str("player_id", playerID).Logger()
	c, ok := h.upgrade(w, r, logger)
	if !ok {
		return
	}

	if roomID == "" || playerID == "" {
		h.reject(c, closeBadRequest, reasonBadRequest)
		return
	}

	ctx := h.ctx

	// subscribe before binding so nothing published after registration is missed
	h.broadcaster.Join(roomID, c)
	reg, err := h.rooms.RegisterConnection(ctx, &room.RegisterConnectionInput{
		RoomID:       roomID,
		PlayerID:     playerID,
		ConnectionID: c.ID(),
	})
	if err != nil {
		h.broadcaster.Leave(roomID, c.ID())
		h.reject(c, closeNotAcceptable, reasonNotAcceptable)
		return
	}

	if reg.DisplacedConnectionID != "" {
		h.closeConnection(roomID, reg.DisplacedConnectionID, closeReplaced, reasonReplaced)
	}

	c.logger.Info().Str("player_name", reg.Player.Name).Msg("player connected")

	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionPlayerJoined, Detail: reg.Player.Name})
	h.broadcaster.Publish(roomID, joinedMessage(reg.Player.Name))
	h.broadcaster.Publish(roomID, statusMessage(reg.Room.Status))
	if reg.Room.Status == models.RoomStatusMainPlayerThinking {
		h.sendPromptRequests(reg.Room)
	}

	c.readLoop(func(text string) {
		h.dispatch(ctx, roomID, playerID, c, text)
	})

	h.disconnect(ctx, roomID, c)
	c.Close(websocket.CloseNormalClosure, "")
}

// dispatch routes one inbound message by room status and sender role
func (h *Handler) dispatch(ctx context.Context, roomID, playerID string, c *conn, text string) {
	view, err := h.rooms.GetRoom(ctx, &room.GetRoomInput{RoomID: roomID})
	if err != nil {
		c.logger.Debug().Err(err).Msg("message for a room that no longer exists")
		return
	}

	sender, ok := view.Player(playerID)
	if !ok {
		c.logger.Debug().Msg("message from a player no longer in the room")
		return
	}

	switch {
	case view.Status == models.RoomStatusMainPlayerThinking && sender.IsAdmin:
		h.handlePrompt(ctx, roomID, sender, c, text)
	case view.Status == models.RoomStatusWaitingForAnswers:
		h.handleAnswer(ctx, roomID, sender, c, text)
	case view.Status == models.RoomStatusGameDone && sender.IsAdmin:
		h.handleDecision(ctx, roomID, sender, c, text)
	default:
		c.logger.Debug().Str("status", view.Status.String()).Bool("is_admin", sender.IsAdmin).Msg("ignoring message")
	}
}

func (h *Handler) handlePrompt(ctx context.Context, roomID string, sender models.Player, c *conn, text string) {
	out, err := h.rooms.SetPrompt(ctx, &room.SetPromptInput{
		RoomID:   roomID,
		PlayerID: sender.ID,
		Text:     text,
	})
	if err != nil {
		// the room moved on between the read and the write
		c.logger.Debug().Err(err).Msg("prompt rejected")
		return
	}

	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionPromptSet, Detail: sender.Name})
	h.broadcaster.Publish(roomID, scenarioMessage(out.Room.CurrentPrompt))
	h.broadcaster.Publish(roomID, statusMessage(out.Room.Status))
}

func (h *Handler) handleAnswer(ctx context.Context, roomID string, sender models.Player, c *conn, text string) {
	_, err := h.rooms.RecordAnswer(ctx, &room.RecordAnswerInput{
		RoomID:   roomID,
		PlayerID: sender.ID,
		Text:     text,
	})
	if err != nil {
		c.logger.Debug().Err(err).Msg("answer rejected")
		return
	}

	h.broadcaster.SendTo(roomID, c.ID(), msgAnswerSaved)
	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionAnswerSubmitted, Detail: sender.Name})

	begin, err := h.rooms.BeginEvaluation(ctx, &room.BeginEvaluationInput{RoomID: roomID})
	if err != nil {
		return
	}
	if begin.Started {
		h.broadcaster.Publish(roomID, statusMessage(begin.Room.Status))
		h.startRound(begin.Ticket)
	}
}

func (h *Handler) handleDecision(ctx context.Context, roomID string, sender models.Player, c *conn, text string) {
	switch parseDecision(text) {
	case decisionContinue:
		out, err := h.rooms.ContinueGame(ctx, &room.ContinueGameInput{RoomID: roomID, PlayerID: sender.ID})
		if err != nil {
			c.logger.Debug().Err(err).Msg("continue rejected")
			return
		}

		h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionContinued})
		h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionAdminChanged, Detail: out.NewAdmin.Name})
		h.broadcaster.Publish(roomID, statusMessage(out.Room.Status))
		h.sendPromptRequests(out.Room)

	case decisionStop:
		out, err := h.rooms.CloseRoom(ctx, &room.CloseRoomInput{RoomID: roomID, PlayerID: sender.ID})
		if err != nil {
			c.logger.Debug().Err(err).Msg("close rejected")
			return
		}
		h.finishClosedRoom(out.Room)

	default:
		h.broadcaster.SendTo(roomID, c.ID(), msgContinuePrompt)
	}
}

// disconnect runs when a player's read loop ends
func (h *Handler) disconnect(ctx context.Context, roomID string, c *conn) {
	h.broadcaster.Leave(roomID, c.ID())

	unreg, err := h.rooms.UnregisterConnection(ctx, &room.UnregisterConnectionInput{
		RoomID:       roomID,
		ConnectionID: c.ID(),
	})
	if err != nil {
		c.logger.Info().Msg("player disconnected from a closed room")
		return
	}

	if !unreg.Bound {
		// displaced by a newer connection or already kicked
		c.logger.Info().Msg("stale connection closed")
		return
	}

	c.logger.Info().Msg("player disconnected")
	if err := h.removePlayer(ctx, roomID, unreg.PlayerID, broadcast.ActionPlayerLeft); err != nil {
		c.logger.Debug().Err(err).Msg("player already removed")
	}
}

// removePlayer is the shared leave sequence for disconnects and kicks
func (h *Handler) removePlayer(ctx context.Context, roomID, playerID string, action broadcast.Action) error {
	out, err := h.rooms.RemovePlayer(ctx, &room.RemovePlayerInput{RoomID: roomID, PlayerID: playerID})
	if err != nil {
		return err
	}

	// the binding is already gone, so the departing connection's own disconnect is a no-op
	if out.ConnectionID != "" {
		if action == broadcast.ActionPlayerKicked {
			h.closeConnection(roomID, out.ConnectionID, closeKicked, reasonKicked)
		} else {
			h.broadcaster.Leave(roomID, out.ConnectionID)
		}
	}

	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: action, Detail: out.Player.Name})

	if out.RoomDeleted {
		h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionRoomDeleted})
		for _, rest := range h.broadcaster.DropRoom(roomID) {
			rest.Close(websocket.CloseNormalClosure, reasonRoomClosed)
		}
		return nil
	}

	if action == broadcast.ActionPlayerKicked {
		h.broadcaster.Publish(roomID, kickedMessage(out.Player.Name))
	} else {
		h.broadcaster.Publish(roomID, leftMessage(out.Player.Name))
	}

	if out.AdminChanged {
		h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionAdminChanged, Detail: out.NewAdmin.Name})
		if adminConn, ok := out.Room.AdminConnection(); ok {
			h.broadcaster.SendTo(roomID, adminConn, msgNewAdmin)
			if out.Room.Status == models.RoomStatusMainPlayerThinking {
				h.broadcaster.SendTo(roomID, adminConn, msgEnterScenario)
			}
		}
	}

	// the departure may have been the last outstanding answer
	begin, err := h.rooms.BeginEvaluation(ctx, &room.BeginEvaluationInput{RoomID: roomID})
	if err != nil {
		return nil
	}
	h.broadcaster.Publish(roomID, statusMessage(begin.Room.Status))
	if begin.Started {
		h.startRound(begin.Ticket)
	}
	return nil
}

// startRound evaluates a claimed round in the background
func (h *Handler) startRound(ticket *room.EvaluationTicket) {
	h.rounds.Add(1)
	go func() {
		defer h.rounds.Done()
		h.completeRound(ticket)
	}()
}

// completeRound evaluates every answer and reports the outcome to the room
func (h *Handler) completeRound(ticket *room.EvaluationTicket) {
	roomID := ticket.RoomID
	log := h.logger.With().Str("room_id", roomID).Int("round", ticket.Round).Logger()

	out, err := h.coordinator.EvaluateRound(h.ctx, ticket)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			log.Info().Msg("room closed during evaluation")
			return
		}
		log.Error().Err(err).Msg("failed to complete round")
		return
	}

	view := out.Room
	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionAnswersEvaluated})

	for connID, playerID := range view.Connections {
		result, ok := view.RoundResults[playerID]
		if !ok {
			continue
		}
		player, _ := view.Player(playerID)
		h.broadcaster.SendTo(roomID, connID, resultMessage(player.Name, result))
	}

	h.broadcaster.Publish(roomID, statsMessage(view))
	h.broadcaster.Monitor(broadcast.Event{RoomID: roomID, Action: broadcast.ActionRoundCompleted})
	h.broadcaster.Publish(roomID, statusMessage(view.Status))

	if adminConn, ok := view.AdminConnection(); ok {
		h.broadcaster.SendTo(roomID, adminConn, msgContinuePrompt)
	}
}

// finishClosedRoom tells everyone the room is gone and hangs up on them
func (h *Handler) finishClosedRoom(view *models.RoomView) {
	h.broadcaster.Monitor(broadcast.Event{RoomID: view.ID, Action: broadcast.ActionClosed})
	h.broadcaster.Publish(view.ID, statusMessage(view.Status))
	h.broadcaster.Publish(view.ID, msgRoomClosed)

	for _, c := range h.broadcaster.DropRoom(view.ID) {
		c.Close(websocket.CloseNormalClosure, reasonRoomClosed)
	}
}

func (h *Handler) sendPromptRequests(view *models.RoomView) {
	for connID, playerID := range view.Connections {
		if playerID == view.AdminID {
			h.broadcaster.SendTo(view.ID, connID, msgEnterScenario)
		} else {
			h.broadcaster.SendTo(view.ID, connID, msgWaitForScenario)
		}
	}
}

func (h *Handler) closeConnection(roomID, connID string, code int, reason string) {
	c, ok := h.broadcaster.Connection(roomID, connID)
	if !ok {
		return
	}
	h.broadcaster.Leave(roomID, connID)
	c.Close(code, reason)
}
