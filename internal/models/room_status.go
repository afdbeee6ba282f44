package models

// RoomStatus represents the current state of a room
type RoomStatus string

const (
	// RoomStatusWaitingForPlayers indicates the room is waiting for players to join
	RoomStatusWaitingForPlayers RoomStatus = "WAITING_FOR_PLAYERS"

	// RoomStatusMainPlayerThinking indicates the admin is coming up with a scenario
	RoomStatusMainPlayerThinking RoomStatus = "MAIN_PLAYER_THINKING"

	// RoomStatusWaitingForAnswers indicates the scenario is set and players are answering
	RoomStatusWaitingForAnswers RoomStatus = "WAITING_FOR_PLAYER_MESSAGE_AFTER_PROMPT"

	// RoomStatusEvaluating indicates every answer is in and the evaluator is running
	RoomStatusEvaluating RoomStatus = "WAITING_FOR_ALL_ANSWERS_FROM_GPT"

	// RoomStatusGameDone indicates the round was evaluated and the admin decides what's next
	RoomStatusGameDone RoomStatus = "GAME_DONE"

	// RoomStatusClosed indicates the room is closed for good
	RoomStatusClosed RoomStatus = "CLOSED"
)

// transitions lists the allowed moves out of every non-terminal status.
// CLOSED is reachable from anywhere and handled separately.
var transitions = map[RoomStatus][]RoomStatus{
	RoomStatusWaitingForPlayers:  {RoomStatusMainPlayerThinking},
	RoomStatusMainPlayerThinking: {RoomStatusWaitingForAnswers},
	RoomStatusWaitingForAnswers:  {RoomStatusEvaluating},
	RoomStatusEvaluating:         {RoomStatusGameDone},
	RoomStatusGameDone:           {RoomStatusMainPlayerThinking},
}

// IsValid reports whether the status is one of the known statuses
func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusWaitingForPlayers, RoomStatusMainPlayerThinking, RoomStatusWaitingForAnswers,
		RoomStatusEvaluating, RoomStatusGameDone, RoomStatusClosed:
		return true
	}
	return false
}

// IsTerminal reports whether no transition can leave the status
func (s RoomStatus) IsTerminal() bool {
	return s == RoomStatusClosed
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == RoomStatusClosed {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String returns the wire name of the status
func (s RoomStatus) String() string {
	return string(s)
}
