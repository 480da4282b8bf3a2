package handlers

import (
	"log"
	"net/http"

	"github.com/abenezer101/farmrush/internal/game"
	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/sse"
)

// Context holds shared application dependencies
type Context struct {
	Timer       *game.Timer
	Ledger      *game.Ledger
	Presence    *game.Presence
	Leaderboard *game.Leaderboard
	Registry    *identity.Registry
	Events      *sse.Broadcaster
	Logger      *log.Logger

	// BaseURL is the externally reachable URL, used for the QR join link
	BaseURL string
	// DefaultInstance is used when a request carries no instance context;
	// empty means instance context is mandatory
	DefaultInstance string
	// LeaderboardSize caps leaderboard responses
	LeaderboardSize int
}

// Routes builds the ServeMux with every endpoint registered
func (ctx *Context) Routes() *http.ServeMux {
	if ctx.Logger == nil {
		ctx.Logger = log.Default()
	}
	if ctx.LeaderboardSize <= 0 {
		ctx.LeaderboardSize = game.LeaderboardSize
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/game-init", ctx.HandleGameInit)
	mux.HandleFunc("/api/save-score", ctx.HandleSaveScore)
	mux.HandleFunc("/api/leaderboard", ctx.HandleLeaderboard)
	mux.HandleFunc("/api/player-position", ctx.HandlePlayerPosition)
	mux.HandleFunc("/api/active-players", ctx.HandleActivePlayers)
	mux.HandleFunc("/api/game-timer", ctx.HandleGameTimer)
	mux.HandleFunc("/api/harvest-corn", ctx.HandleHarvestCorn)
	mux.HandleFunc("/api/harvested-corn", ctx.HandleHarvestedCorn)
	mux.HandleFunc("/events", ctx.HandleEvents)
	mux.HandleFunc("/qr", ctx.HandleQR)
	mux.HandleFunc("/health", ctx.HandleHealth)
	return mux
}

// HandleHealth reports liveness
func (ctx *Context) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}
