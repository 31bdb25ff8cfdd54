// internal/models/room.go
package models

// RoomInfo is the read-only room metadata served by the external
// membership service.
type RoomInfo struct {
	MinPlayers    int  `json:"min_players"`
	MaxPlayers    int  `json:"max_players"`
	AutoStart     bool `json:"auto_start"`
	TurnTimeLimit int  `json:"turn_time_limit"` // seconds, 0 = server default
}

// CompPlayer is one synthetic player record from the comp-player supply
// collaborator.
type CompPlayer struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
