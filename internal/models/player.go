package models

// Player represents a participant in a room
type Player struct {
	// ID is the unique identifier of the player within the room
	ID string `json:"id"`

	// Name is the display name of the player
	Name string `json:"name"`

	// IsAdmin is derived from the room's admin and only set on projections
	IsAdmin bool `json:"isAdmin"`
}

// PlayerStats holds a player's survival record across rounds
type PlayerStats struct {
	SurvivedCount int `json:"survivedCount"`
	DiedCount     int `json:"diedCount"`
}

// Record bumps the counter matching the verdict. Unknown verdicts are not counted.
func (s *PlayerStats) Record(verdict Verdict) {
	switch verdict {
	case VerdictSurvived:
		s.SurvivedCount++
	case VerdictDied:
		s.DiedCount++
	}
}
