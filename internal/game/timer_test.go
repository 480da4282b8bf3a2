package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// recEvents records every notification for assertions
type recEvents struct {
	mu       sync.Mutex
	phases   []models.RoundPhase
	harvests []models.Cell
}

func (e *recEvents) PhaseChanged(_ string, p models.RoundPhase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phases = append(e.phases, p)
}

func (e *recEvents) CellHarvested(_ string, c models.Cell) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.harvests = append(e.harvests, c)
}

func newTestTimer(t *testing.T) (*Timer, *fakeClock, *store.Memory, *recEvents) {
	t.Helper()
	clk := newFakeClock()
	st := store.NewMemoryClock(clk.Now)
	events := &recEvents{}
	tm := NewTimer(st, TimerConfig{}, events)
	tm.now = clk.Now
	return tm, clk, st, events
}

func TestTimer_InitialRead(t *testing.T) {
	ctx := context.Background()
	tm, _, _, _ := newTestTimer(t)

	status, err := tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseWaiting {
		t.Fatalf("initial state: got %s, want WAITING", status.State)
	}
	if status.WaitTimeRemaining != 10 {
		t.Fatalf("waitTimeRemaining: got %d, want 10", status.WaitTimeRemaining)
	}
	if status.TimeRemaining != 60 {
		t.Fatalf("timeRemaining: got %d, want 60", status.TimeRemaining)
	}
}

func TestTimer_FullCycle(t *testing.T) {
	ctx := context.Background()
	tm, clk, _, events := newTestTimer(t)

	if _, err := tm.Status(ctx, "post1"); err != nil {
		t.Fatalf("init: %v", err)
	}

	// t=10.5s: wait elapsed, read flips to ACTIVE with the full 60s ahead.
	clk.Advance(10500 * time.Millisecond)
	status, err := tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseActive || status.TimeRemaining != 60 || status.WaitTimeRemaining != 0 {
		t.Fatalf("at 10.5s: got %+v", status)
	}

	// t=70.6s: active elapsed, read flips to ENDED with 10s of scoreboard.
	clk.Advance(60100 * time.Millisecond)
	status, err = tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseEnded || status.TimeRemaining != 0 || status.WaitTimeRemaining != 10 {
		t.Fatalf("at 70.6s: got %+v", status)
	}

	// t=80.7s: back to WAITING for the next round.
	clk.Advance(10100 * time.Millisecond)
	status, err = tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseWaiting || status.WaitTimeRemaining != 10 {
		t.Fatalf("at 80.7s: got %+v", status)
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	want := []models.RoundPhase{models.PhaseActive, models.PhaseEnded, models.PhaseWaiting}
	if len(events.phases) != len(want) {
		t.Fatalf("phase events: got %v, want %v", events.phases, want)
	}
	for i, p := range want {
		if events.phases[i] != p {
			t.Fatalf("phase event %d: got %s, want %s", i, events.phases[i], p)
		}
	}
}

func TestTimer_RepollIdempotent(t *testing.T) {
	ctx := context.Background()
	tm, clk, _, _ := newTestTimer(t)

	tm.Status(ctx, "post1")
	clk.Advance(30 * time.Second)

	// Many reads at the same instant must agree and not advance anything.
	first, err := tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for i := 0; i < 10; i++ {
		status, err := tm.Status(ctx, "post1")
		if err != nil {
			t.Fatalf("status %d: %v", i, err)
		}
		if status != first {
			t.Fatalf("read %d: got %+v, want %+v", i, status, first)
		}
	}
	if first.State != models.PhaseActive {
		t.Fatalf("at 30s: got %s, want ACTIVE", first.State)
	}
}

func TestTimer_CountdownRoundsUp(t *testing.T) {
	ctx := context.Background()
	tm, clk, _, _ := newTestTimer(t)

	tm.Status(ctx, "post1")
	clk.Advance(11 * time.Second) // into ACTIVE
	tm.Status(ctx, "post1")

	clk.Advance(400 * time.Millisecond) // 59.6s left
	status, _ := tm.Status(ctx, "post1")
	if status.TimeRemaining != 60 {
		t.Fatalf("59.6s left should report 60, got %d", status.TimeRemaining)
	}
	clk.Advance(600 * time.Millisecond) // 59.0s left
	status, _ = tm.Status(ctx, "post1")
	if status.TimeRemaining != 59 {
		t.Fatalf("59.0s left should report 59, got %d", status.TimeRemaining)
	}
}

func TestTimer_EnteringActiveClearsLedger(t *testing.T) {
	ctx := context.Background()
	tm, clk, st, _ := newTestTimer(t)
	ledger := NewLedger(st, nil)

	tm.Status(ctx, "post1")

	// Leftover harvest marks from a previous cycle.
	if err := st.HSet(ctx, harvestedKey("post1"), map[string]string{"3,4": "123"}); err != nil {
		t.Fatalf("seed ledger: %v", err)
	}

	clk.Advance(11 * time.Second)
	status, err := tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseActive {
		t.Fatalf("got %s, want ACTIVE", status.State)
	}
	cells, err := ledger.Harvested(ctx, "post1")
	if err != nil {
		t.Fatalf("harvested: %v", err)
	}
	if len(cells) != 0 {
		t.Fatalf("ledger should be cleared on ACTIVE entry, got %v", cells)
	}
}

func TestTimer_IndependentInstances(t *testing.T) {
	ctx := context.Background()
	tm, clk, _, _ := newTestTimer(t)

	tm.Status(ctx, "post1")
	clk.Advance(11 * time.Second)
	tm.Status(ctx, "post1")

	// A second instance first read starts its own WAITING cycle.
	status, err := tm.Status(ctx, "post2")
	if err != nil {
		t.Fatalf("status post2: %v", err)
	}
	if status.State != models.PhaseWaiting {
		t.Fatalf("post2: got %s, want WAITING", status.State)
	}
	status, _ = tm.Status(ctx, "post1")
	if status.State != models.PhaseActive {
		t.Fatalf("post1: got %s, want ACTIVE", status.State)
	}
}

func TestTimer_CorruptRecordRestartsCycle(t *testing.T) {
	ctx := context.Background()
	tm, _, st, _ := newTestTimer(t)

	if err := st.HSet(ctx, timerKey("post1"), map[string]string{
		"phase":     "ACTIVE",
		"enteredAt": "not-a-timestamp",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	status, err := tm.Status(ctx, "post1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.State != models.PhaseWaiting {
		t.Fatalf("corrupt record should restart at WAITING, got %s", status.State)
	}
}
