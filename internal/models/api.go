package models

// API request and response payloads. Request payloads use pointers for
// required fields so a missing field is distinguishable from a zero value.

// InitResponse is returned by GET /api/game-init
type InitResponse struct {
	Username     string             `json:"username"`
	CurrentScore int                `json:"currentScore"`
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
}

// SaveScoreRequest is the body of POST /api/save-score
type SaveScoreRequest struct {
	Score *int `json:"score"`
}

// SaveScoreResponse is returned by POST /api/save-score
type SaveScoreResponse struct {
	Success        bool `json:"success"`
	IsNewHighScore bool `json:"isNewHighScore"`
}

// PositionRequest is the body of POST /api/player-position
type PositionRequest struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Rotation  *float64 `json:"rotation"`
	CornCount *int     `json:"cornCount"`
}

// ActivePlayersResponse is returned by GET /api/active-players
type ActivePlayersResponse struct {
	Players []ActivePlayer `json:"players"`
}

// HarvestRequest is the body of POST /api/harvest-corn
type HarvestRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// HarvestedResponse is returned by GET /api/harvested-corn
type HarvestedResponse struct {
	HarvestedCorn []Cell `json:"harvestedCorn"`
}

// SuccessResponse is the generic acknowledgement payload
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every 4xx/5xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
