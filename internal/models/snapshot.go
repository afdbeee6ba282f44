package models

import "time"

// RoomView is a read-only copy of a room's full state
type RoomView struct {
	ID            string
	Status        RoomStatus
	Capacity      int
	CurrentPrompt string
	Round         int
	AdminID       string
	Players       []Player

	// Connections maps connection IDs to the player they belong to
	Connections map[string]string

	Answers      map[string]string
	RoundResults map[string]RoundResult
	Stats        map[string]PlayerStats
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Player looks up a player in the view
func (v *RoomView) Player(playerID string) (Player, bool) {
	for _, p := range v.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// ConnectionFor returns the connection bound to the player, if any
func (v *RoomView) ConnectionFor(playerID string) (string, bool) {
	for connID, pid := range v.Connections {
		if pid == playerID {
			return connID, true
		}
	}
	return "", false
}

// AdminConnection returns the admin's connection, if the admin is connected
func (v *RoomView) AdminConnection() (string, bool) {
	if v.AdminID == "" {
		return "", false
	}
	return v.ConnectionFor(v.AdminID)
}

// Admin returns the current admin
func (v *RoomView) Admin() (Player, bool) {
	return v.Player(v.AdminID)
}

// RoomSnapshot is the discovery projection of a room kept in the directory
type RoomSnapshot struct {
	ID        string     `json:"id"`
	Status    RoomStatus `json:"status"`
	Capacity  int        `json:"capacity"`
	Players   []Player   `json:"players"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Summary condenses a snapshot into player names and the admin's name
func (s *RoomSnapshot) Summary() RoomSummary {
	summary := RoomSummary{Players: make([]string, 0, len(s.Players))}
	for _, p := range s.Players {
		summary.Players = append(summary.Players, p.Name)
		if p.IsAdmin {
			summary.Admin = p.Name
		}
	}
	return summary
}

// RoomSummary lists a room's player names and its admin
type RoomSummary struct {
	Players []string `json:"players"`
	Admin   string   `json:"admin"`
}
