package models

import "time"

// PresenceEntry is the ephemeral per-player record refreshed on every
// position push and expired by the store after the presence TTL
type PresenceEntry struct {
	UserID     string
	X          float64
	Y          float64
	Rotation   float64
	CornCount  int
	LastUpdate time.Time
}

// ActivePlayer is a presence entry with the display name resolved,
// as returned to other clients
type ActivePlayer struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Rotation  float64 `json:"rotation"`
	CornCount int     `json:"cornCount"`
}

// LeaderboardEntry is one ranked row of the per-instance leaderboard
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}
