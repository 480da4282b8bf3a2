package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abenezer101/farmrush/internal/game"
	"github.com/abenezer101/farmrush/internal/identity"
	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/sse"
	"github.com/abenezer101/farmrush/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.NewMemory()
	events := sse.NewBroadcaster()
	registry := identity.NewRegistry(st)
	ctx := &Context{
		Timer:           game.NewTimer(st, game.TimerConfig{}, events),
		Ledger:          game.NewLedger(st, events),
		Presence:        game.NewPresence(st, registry, 0),
		Leaderboard:     game.NewLeaderboard(st, registry),
		Registry:        registry,
		Events:          events,
		Logger:          log.New(io.Discard, "", 0),
		BaseURL:         "http://farm.test",
		DefaultInstance: "post1",
	}
	srv := httptest.NewServer(ctx.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, user, body string, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if user != "" {
		req.Header.Set("X-Farm-User", user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp
}

func TestGameInit_RegistersNameAndReturnsLeaderboard(t *testing.T) {
	srv := newTestServer(t)

	var init models.InitResponse
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/game-init?name=alice", "u1", "", &init)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if init.Username != "alice" {
		t.Fatalf("username: got %q, want alice", init.Username)
	}
	if init.CurrentScore != 0 || len(init.Leaderboard) != 0 {
		t.Fatalf("fresh player: got %+v", init)
	}

	// Second init without a name keeps the registered one.
	doJSON(t, http.MethodGet, srv.URL+"/api/game-init", "u1", "", &init)
	if init.Username != "alice" {
		t.Fatalf("username after re-init: got %q", init.Username)
	}
}

func TestGameInit_AnonymousFallback(t *testing.T) {
	srv := newTestServer(t)

	var init models.InitResponse
	doJSON(t, http.MethodGet, srv.URL+"/api/game-init", "cafebabe1234", "", &init)
	if init.Username != "Player-cafebabe" {
		t.Fatalf("want anonymized fallback, got %q", init.Username)
	}
}

func TestSaveScore_MonotonicHighScore(t *testing.T) {
	srv := newTestServer(t)

	var save models.SaveScoreResponse
	doJSON(t, http.MethodPost, srv.URL+"/api/save-score", "u1", `{"score":50}`, &save)
	if !save.Success || !save.IsNewHighScore {
		t.Fatalf("first score: %+v", save)
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/save-score", "u1", `{"score":30}`, &save)
	if !save.Success || save.IsNewHighScore {
		t.Fatalf("lower score: %+v", save)
	}
	doJSON(t, http.MethodPost, srv.URL+"/api/save-score", "u1", `{"score":80}`, &save)
	if !save.Success || !save.IsNewHighScore {
		t.Fatalf("higher score: %+v", save)
	}

	var board []models.LeaderboardEntry
	doJSON(t, http.MethodGet, srv.URL+"/api/leaderboard", "u1", "", &board)
	if len(board) != 1 || board[0].Score != 80 || board[0].Rank != 1 {
		t.Fatalf("leaderboard: %+v", board)
	}
}

func TestSaveScore_Validation(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`{}`, `{"score":-5}`, `not json`} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/save-score", "u1", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestPlayerPosition_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	var ok models.SuccessResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/player-position", "u1",
		`{"x":100.5,"y":200.25,"rotation":1.57,"cornCount":4}`, &ok)
	if resp.StatusCode != http.StatusOK || !ok.Success {
		t.Fatalf("publish: status=%d ok=%+v", resp.StatusCode, ok)
	}

	// The publisher is excluded from their own view.
	var mine models.ActivePlayersResponse
	doJSON(t, http.MethodGet, srv.URL+"/api/active-players", "u1", "", &mine)
	if len(mine.Players) != 0 {
		t.Fatalf("self must be excluded: %+v", mine.Players)
	}

	var theirs models.ActivePlayersResponse
	doJSON(t, http.MethodGet, srv.URL+"/api/active-players", "u2", "", &theirs)
	if len(theirs.Players) != 1 {
		t.Fatalf("want one player, got %+v", theirs.Players)
	}
	p := theirs.Players[0]
	if p.UserID != "u1" || p.X != 100.5 || p.Y != 200.25 || p.CornCount != 4 {
		t.Fatalf("unexpected entry: %+v", p)
	}
}

func TestPlayerPosition_Validation(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{
		`{"x":1,"y":2}`,
		`{"x":1,"y":2,"rotation":0,"cornCount":-1}`,
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/player-position", "u1", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestGameTimer_StartsWaiting(t *testing.T) {
	srv := newTestServer(t)

	var status models.TimerStatus
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/game-timer", "u1", "", &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if status.State != models.PhaseWaiting || status.WaitTimeRemaining != 10 {
		t.Fatalf("timer: %+v", status)
	}
}

func TestHarvest_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	var ok models.SuccessResponse
	doJSON(t, http.MethodPost, srv.URL+"/api/harvest-corn", "u1", `{"x":5,"y":5}`, &ok)
	if !ok.Success {
		t.Fatalf("harvest: %+v", ok)
	}
	// Concurrent duplicate from another player: still success.
	doJSON(t, http.MethodPost, srv.URL+"/api/harvest-corn", "u2", `{"x":5,"y":5}`, &ok)
	if !ok.Success {
		t.Fatalf("duplicate harvest: %+v", ok)
	}

	var harvested models.HarvestedResponse
	doJSON(t, http.MethodGet, srv.URL+"/api/harvested-corn", "u1", "", &harvested)
	if len(harvested.HarvestedCorn) != 1 {
		t.Fatalf("want (5,5) exactly once, got %+v", harvested.HarvestedCorn)
	}
	if (harvested.HarvestedCorn[0] != models.Cell{X: 5, Y: 5}) {
		t.Fatalf("got %+v", harvested.HarvestedCorn[0])
	}
}

func TestHarvest_Validation(t *testing.T) {
	srv := newTestServer(t)

	for _, body := range []string{`{"x":5}`, `{"x":-1,"y":0}`, `{"x":500,"y":0}`} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/harvest-corn", "u1", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: status %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	var e models.ErrorResponse
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/save-score", "u1", "", &e)
	if resp.StatusCode != http.StatusMethodNotAllowed || e.Error == "" {
		t.Fatalf("GET save-score: status=%d body=%+v", resp.StatusCode, e)
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/game-timer", "u1", "", &e)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST game-timer: status=%d", resp.StatusCode)
	}
}

func TestMissingInstanceContext(t *testing.T) {
	st := store.NewMemory()
	registry := identity.NewRegistry(st)
	ctx := &Context{
		Timer:       game.NewTimer(st, game.TimerConfig{}, nil),
		Ledger:      game.NewLedger(st, nil),
		Presence:    game.NewPresence(st, registry, 0),
		Leaderboard: game.NewLeaderboard(st, registry),
		Registry:    registry,
		Events:      sse.NewBroadcaster(),
		Logger:      log.New(io.Discard, "", 0),
		// No DefaultInstance: context is mandatory.
	}
	srv := httptest.NewServer(ctx.Routes())
	defer srv.Close()

	var e models.ErrorResponse
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/game-timer", "u1", "", &e)
	if resp.StatusCode != http.StatusBadRequest || e.Error == "" {
		t.Fatalf("status=%d body=%+v", resp.StatusCode, e)
	}

	// Header-provided instance works.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/game-timer", nil)
	req.Header.Set("X-Farm-Instance", "post9")
	req.Header.Set("X-Farm-User", "u1")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("with header: status=%d", resp2.StatusCode)
	}
}

func TestSessionCookieMinted(t *testing.T) {
	srv := newTestServer(t)

	// No user header and no cookie: the server mints a session.
	resp, err := http.Get(srv.URL + "/api/game-init")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "player_id" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("player_id cookie not set")
	}
}

func TestQR_ServesPNG(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/qr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type: %q", ct)
	}
	png, _ := io.ReadAll(resp.Body)
	if len(png) == 0 {
		t.Fatalf("empty body")
	}

	resp2, err := http.Get(srv.URL + "/qr?size=99999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("oversized qr: status %d, want 400", resp2.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("body: %q", body)
	}
}
