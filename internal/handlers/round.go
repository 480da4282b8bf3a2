package handlers

import (
	"errors"
	"net/http"

	"github.com/abenezer101/farmrush/internal/game"
	"github.com/abenezer101/farmrush/internal/models"
)

// HandleGameTimer reports the round phase and remaining time, advancing
// the stored phase first when its duration has elapsed
func (ctx *Context) HandleGameTimer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, _, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	status, err := ctx.Timer.Status(r.Context(), instance)
	if err != nil {
		ctx.Logger.Printf("game-timer: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get timer")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleHarvestCorn records a harvest. Re-harvesting a recorded cell is an
// accepted no-op, so the optimistic client never sees a rejection.
func (ctx *Context) HandleHarvestCorn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, user, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	var req models.HarvestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "invalid coordinates")
		return
	}

	cell := models.Cell{X: *req.X, Y: *req.Y}
	if err := ctx.Ledger.Submit(r.Context(), instance, cell); err != nil {
		if errors.Is(err, game.ErrOutOfBounds) {
			writeError(w, http.StatusBadRequest, "invalid coordinates")
			return
		}
		ctx.Logger.Printf("harvest-corn: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to harvest corn")
		return
	}
	ctx.Logger.Printf("harvest-corn: cell=%s user=%s", cell.Key(), user)

	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// HandleHarvestedCorn returns every cell harvested this round
func (ctx *Context) HandleHarvestedCorn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	instance, _, ok := ctx.identify(w, r)
	if !ok {
		return
	}

	cells, err := ctx.Ledger.Harvested(r.Context(), instance)
	if err != nil {
		ctx.Logger.Printf("harvested-corn: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get harvested corn")
		return
	}
	writeJSON(w, http.StatusOK, models.HarvestedResponse{HarvestedCorn: cells})
}
