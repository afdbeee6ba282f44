package models

import "time"

// Room holds the mutable state of one game. It is not safe for concurrent use;
// the room manager serializes every call on a given room.
type Room struct {
	id        string
	status    RoomStatus
	capacity  int
	prompt    string
	round     int
	players   []Player
	adminID   string
	createdAt time.Time
	updatedAt time.Time

	// connection index, kept in both directions
	connByPlayer map[string]string
	playerByConn map[string]string

	answers map[string]string
	results map[string]RoundResult
	stats   map[string]PlayerStats
}

// NewRoom creates a room whose only player is its admin
func NewRoom(id string, capacity int, admin Player, now time.Time) *Room {
	status := RoomStatusWaitingForPlayers
	if capacity == 1 {
		status = RoomStatusMainPlayerThinking
	}
	admin.IsAdmin = false
	return &Room{
		id:           id,
		status:       status,
		capacity:     capacity,
		players:      []Player{admin},
		adminID:      admin.ID,
		createdAt:    now,
		updatedAt:    now,
		connByPlayer: make(map[string]string),
		playerByConn: make(map[string]string),
		answers:      make(map[string]string),
		results:      make(map[string]RoundResult),
		stats:        make(map[string]PlayerStats),
	}
}

func (r *Room) ID() string           { return r.id }
func (r *Room) Status() RoomStatus   { return r.status }
func (r *Room) Capacity() int        { return r.capacity }
func (r *Room) Prompt() string       { return r.prompt }
func (r *Room) Round() int           { return r.round }
func (r *Room) AdminID() string      { return r.adminID }
func (r *Room) PlayerCount() int     { return len(r.players) }
func (r *Room) IsFull() bool         { return len(r.players) >= r.capacity }
func (r *Room) IsEmpty() bool        { return len(r.players) == 0 }
func (r *Room) AnswerCount() int     { return len(r.answers) }
func (r *Room) UpdatedAt() time.Time { return r.updatedAt }

// Touch records a mutation time
func (r *Room) Touch(now time.Time) {
	r.updatedAt = now
}

// TransitionTo moves the room to next if the state machine allows it
func (r *Room) TransitionTo(next RoomStatus) bool {
	if !r.status.CanTransitionTo(next) {
		return false
	}
	r.status = next
	return true
}

// Player looks up a player by ID
func (r *Room) Player(playerID string) (Player, bool) {
	i := r.indexOf(playerID)
	if i < 0 {
		return Player{}, false
	}
	p := r.players[i]
	p.IsAdmin = p.ID == r.adminID
	return p, true
}

// AddPlayer appends a player to the end of the rotation ring
func (r *Room) AddPlayer(p Player) {
	p.IsAdmin = false
	r.players = append(r.players, p)
	if r.adminID == "" {
		r.adminID = p.ID
	}
}

// RemovePlayer drops the player along with their answer and connection.
// If the player held the admin role it passes to the next player in the ring.
// It returns whether the admin changed and false if the player was not present.
func (r *Room) RemovePlayer(playerID string) (adminChanged bool, ok bool) {
	i := r.indexOf(playerID)
	if i < 0 {
		return false, false
	}

	if connID, bound := r.connByPlayer[playerID]; bound {
		delete(r.playerByConn, connID)
		delete(r.connByPlayer, playerID)
	}
	delete(r.answers, playerID)

	wasAdmin := r.adminID == playerID
	r.players = append(r.players[:i], r.players[i+1:]...)

	if !wasAdmin {
		return false, true
	}
	if len(r.players) == 0 {
		r.adminID = ""
		return true, true
	}
	// the player that followed the removed admin now sits at index i
	r.adminID = r.players[i%len(r.players)].ID
	return true, true
}

// RotateAdmin hands the admin role to the next player in join order, wrapping.
// It returns the new admin ID, or "" when the room is empty.
func (r *Room) RotateAdmin() string {
	if len(r.players) == 0 {
		r.adminID = ""
		return ""
	}
	i := r.indexOf(r.adminID)
	r.adminID = r.players[(i+1)%len(r.players)].ID
	return r.adminID
}

// BindConnection associates a connection with a present player.
// A connection previously bound to the same player is unbound and returned.
func (r *Room) BindConnection(connID, playerID string) (displaced string, ok bool) {
	if r.indexOf(playerID) < 0 {
		return "", false
	}
	if prev, bound := r.playerByConn[connID]; bound && prev != playerID {
		delete(r.connByPlayer, prev)
	}
	if old, bound := r.connByPlayer[playerID]; bound && old != connID {
		delete(r.playerByConn, old)
		displaced = old
	}
	r.connByPlayer[playerID] = connID
	r.playerByConn[connID] = playerID
	return displaced, true
}

// ConnectionFor returns the connection bound to the player, if any
func (r *Room) ConnectionFor(playerID string) (string, bool) {
	connID, ok := r.connByPlayer[playerID]
	return connID, ok
}

// UnbindConnection removes a connection from the index.
// It returns false if the connection is not (or no longer) bound.
func (r *Room) UnbindConnection(connID string) (playerID string, ok bool) {
	playerID, ok = r.playerByConn[connID]
	if !ok {
		return "", false
	}
	delete(r.playerByConn, connID)
	delete(r.connByPlayer, playerID)
	return playerID, true
}

// SetPrompt starts a new round with the given scenario
func (r *Room) SetPrompt(text string) {
	r.prompt = text
	r.round++
	r.clearRound()
}

// ClearPrompt resets the scenario and everything tied to it
func (r *Room) ClearPrompt() {
	r.prompt = ""
	r.clearRound()
}

func (r *Room) clearRound() {
	r.answers = make(map[string]string)
	r.results = make(map[string]RoundResult)
}

// RecordAnswer upserts a present player's answer for the current round
func (r *Room) RecordAnswer(playerID, text string) bool {
	if r.indexOf(playerID) < 0 {
		return false
	}
	r.answers[playerID] = text
	return true
}

// AllAnswered reports whether every present player has answered
func (r *Room) AllAnswered() bool {
	return len(r.players) > 0 && len(r.answers) == len(r.players)
}

// ApplyResult stores a player's round result and counts it in their stats
func (r *Room) ApplyResult(playerID string, result RoundResult) bool {
	if r.indexOf(playerID) < 0 {
		return false
	}
	r.results[playerID] = result
	st := r.stats[playerID]
	st.Record(result.Verdict)
	r.stats[playerID] = st
	return true
}

// PlayerIDs returns the player IDs in join order
func (r *Room) PlayerIDs() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// Answers returns a copy of the current round's answers
func (r *Room) Answers() map[string]string {
	return copyMap(r.answers)
}

// View returns a deep copy of the room safe to read without the room lock
func (r *Room) View() *RoomView {
	players := r.projectPlayers()
	conns := make(map[string]string, len(r.playerByConn))
	for c, p := range r.playerByConn {
		conns[c] = p
	}
	return &RoomView{
		ID:            r.id,
		Status:        r.status,
		Capacity:      r.capacity,
		CurrentPrompt: r.prompt,
		Round:         r.round,
		AdminID:       r.adminID,
		Players:       players,
		Connections:   conns,
		Answers:       copyMap(r.answers),
		RoundResults:  copyMap(r.results),
		Stats:         copyMap(r.stats),
		CreatedAt:     r.createdAt,
		UpdatedAt:     r.updatedAt,
	}
}

// Snapshot returns the projection kept in the room directory
func (r *Room) Snapshot() *RoomSnapshot {
	return &RoomSnapshot{
		ID:        r.id,
		Status:    r.status,
		Capacity:  r.capacity,
		Players:   r.projectPlayers(),
		UpdatedAt: r.updatedAt,
	}
}

func (r *Room) projectPlayers() []Player {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		p.IsAdmin = p.ID == r.adminID
		players[i] = p
	}
	return players
}

func (r *Room) indexOf(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
