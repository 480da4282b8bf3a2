package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/abenezer101/farmrush/internal/models"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// instanceID resolves the game instance for a request: header, query
// parameter, then configured default. Empty means missing context.
func (ctx *Context) instanceID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Farm-Instance")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("instance")); v != "" {
		return v
	}
	return ctx.DefaultInstance
}

// userID resolves the caller's identity: header, then session cookie,
// minting and setting a fresh cookie when neither is present
func (ctx *Context) userID(w http.ResponseWriter, r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Farm-User")); v != "" {
		return v
	}
	if cookie, err := r.Cookie("player_id"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     "player_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
	return id
}

// identify extracts instance and user context, answering 400 itself when
// the instance is missing
func (ctx *Context) identify(w http.ResponseWriter, r *http.Request) (instance, user string, ok bool) {
	instance = ctx.instanceID(r)
	if instance == "" {
		writeError(w, http.StatusBadRequest, "missing instance context")
		return "", "", false
	}
	return instance, ctx.userID(w, r), true
}
