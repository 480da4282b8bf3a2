package handlers

import (
	"net/http"
	"strings"

	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/models"
)

// HandleGameInit returns the caller's username, current best score and the
// leaderboard. An optional ?name= registers the caller's display name.
func (ctx *Context) HandleGameInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		if err := ctx.Registry.Register(r.Context(), instance, user, name); err != nil {
			ctx.Logger.Printf("game-init: register name for %s: %v", user, err)
		}
	}

	username := identity.ResolveOrFallback(r.Context(), ctx.Registry, instance, user)

	currentScore, err := ctx.Leaderboard.Best(r.Context(), instance, user)
	if err != nil {
		ctx.Logger.Printf("game-init: read score for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "failed to initialize game")
		return
	}

	leaderboard, err := ctx.Leaderboard.Top(r.Context(), instance, ctx.LeaderboardSize)
	if err != nil {
		ctx.Logger.Printf("game-init: read leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to initialize game")
		return
	}

	writeJSON(w, http.StatusOK, models.InitResponse{
		Username:     username,
		CurrentScore: currentScore,
		Leaderboard:  leaderboard,
	})
}

// HandleSaveScore records the caller's round score if it beats their best
func (ctx *Context) HandleSaveScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	var req models.SaveScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Score == nil || *req.Score < 0 {
		writeError(w, http.StatusBadRequest, "invalid score")
		return
	}

	isNewHighScore, err := ctx.Leaderboard.SubmitScore(r.Context(), instance, user, *req.Score)
	if err != nil {
		ctx.Logger.Printf("save-score: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save score")
		return
	}
	ctx.Logger.Printf("save-score: user=%s score=%d newHigh=%v", user, *req.Score, isNewHighScore)

	writeJSON(w, http.StatusOK, models.SaveScoreResponse{
		Success:        true,
		IsNewHighScore: isNewHighScore,
	})
}

// HandleLeaderboard returns the ranked top entries as a bare array
func (ctx *Context) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, _, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	leaderboard, err := ctx.Leaderboard.Top(r.Context(), instance, ctx.LeaderboardSize)
	if err != nil {
		ctx.Logger.Printf("leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, leaderboard)
}
