package handlers

import (
	"net/http"

	"github.com/abenezer101/farmrush/internal/models"
)

// HandlePlayerPosition upserts the caller's presence entry
func (ctx *Context) HandlePlayerPosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	var req models.PositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.X == nil || req.Y == nil || req.Rotation == nil || req.CornCount == nil {
		writeError(w, http.StatusBadRequest, "x, y, rotation and cornCount are required")
		return
	}
	if *req.CornCount < 0 {
		writeError(w, http.StatusBadRequest, "invalid cornCount")
		return
	}

	err := ctx.Presence.Publish(r.Context(), instance, user, *req.X, *req.Y, *req.Rotation, *req.CornCount)
	if err != nil {
		ctx.Logger.Printf("player-position: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update position")
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandleActivePlayers returns live players other than the caller
func (ctx *Context) HandleActivePlayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	players, err := ctx.Presence.Active(r.Context(), instance, user)
	if err != nil {
		ctx.Logger.Printf("active-players: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get active players")
		return
	}
	writeJSON(w, http.StatusOK, models.ActivePlayersResponse{Players: players})
}
