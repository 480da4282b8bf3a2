package game

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/store"
)

// TimerConfig holds the three phase durations. Zero values fall back to
// the defaults in constants.go.
type TimerConfig struct {
	Wait   time.Duration
	Active time.Duration
	Ended  time.Duration
}

// Timer is the round lifecycle state machine. The stored record is only
// {phase, enteredAt}; everything else is computed from wall-clock time on
// read. Whichever poll first observes that a phase's duration has elapsed
// advances the stored record by exactly one step. Concurrent polls near a
// boundary write the same target phase with near-identical timestamps, so
// the race costs at most a sub-second skew in enteredAt, never a wrong
// phase.
type Timer struct {
	store  store.Store
	cfg    TimerConfig
	events Events
	now    func() time.Time
}

// NewTimer creates a Timer over s. events may be nil.
func NewTimer(s store.Store, cfg TimerConfig, events Events) *Timer {
	if cfg.Wait <= 0 {
		cfg.Wait = WaitDuration
	}
	if cfg.Active <= 0 {
		cfg.Active = ActiveDuration
	}
	if cfg.Ended <= 0 {
		cfg.Ended = EndedDuration
	}
	if events == nil {
		events = NopEvents{}
	}
	return &Timer{store: s, cfg: cfg, events: events, now: time.Now}
}

func (t *Timer) duration(p models.RoundPhase) time.Duration {
	switch p {
	case models.PhaseActive:
		return t.cfg.Active
	case models.PhaseEnded:
		return t.cfg.Ended
	default:
		return t.cfg.Wait
	}
}

// Status reads the round record for instance, advancing the stored phase
// first if its duration has elapsed, and returns the computed view.
func (t *Timer) Status(ctx context.Context, instance string) (models.TimerStatus, error) {
	round, err := t.load(ctx, instance)
	if err != nil {
		return models.TimerStatus{}, err
	}
	now := t.now()

	if round.Phase == "" {
		// First-ever read for this instance: start a fresh cycle.
		round = models.Round{Phase: models.PhaseWaiting, EnteredAt: now}
		if err := t.save(ctx, instance, round); err != nil {
			return models.TimerStatus{}, err
		}
	} else if now.Sub(round.EnteredAt) >= t.duration(round.Phase) {
		round = models.Round{Phase: round.Phase.Next(), EnteredAt: now}
		if err := t.save(ctx, instance, round); err != nil {
			return models.TimerStatus{}, err
		}
		if round.Phase == models.PhaseActive {
			// Fresh field for the new round. The harvested marks from the
			// previous round stay visible through ENDED and WAITING.
			if err := t.store.Del(ctx, harvestedKey(instance)); err != nil {
				return models.TimerStatus{}, fmt.Errorf("clear harvest ledger: %w", err)
			}
		}
		t.events.PhaseChanged(instance, round.Phase)
	}

	return t.view(round, now), nil
}

func (t *Timer) load(ctx context.Context, instance string) (models.Round, error) {
	rec, err := t.store.HGetAll(ctx, timerKey(instance))
	if err != nil {
		return models.Round{}, err
	}
	phase := models.RoundPhase(rec["phase"])
	if !phase.Valid() {
		return models.Round{}, nil
	}
	ms, err := strconv.ParseInt(rec["enteredAt"], 10, 64)
	if err != nil {
		// Corrupt record: treat as absent and restart the cycle.
		return models.Round{}, nil
	}
	return models.Round{Phase: phase, EnteredAt: time.UnixMilli(ms)}, nil
}

func (t *Timer) save(ctx context.Context, instance string, round models.Round) error {
	return t.store.HSet(ctx, timerKey(instance), map[string]string{
		"phase":     string(round.Phase),
		"enteredAt": strconv.FormatInt(round.EnteredAt.UnixMilli(), 10),
	})
}

func (t *Timer) view(round models.Round, now time.Time) models.TimerStatus {
	switch round.Phase {
	case models.PhaseActive:
		return models.TimerStatus{
			State:         models.PhaseActive,
			TimeRemaining: remainingSeconds(round.EnteredAt, t.cfg.Active, now),
		}
	case models.PhaseEnded:
		return models.TimerStatus{
			State:             models.PhaseEnded,
			WaitTimeRemaining: remainingSeconds(round.EnteredAt, t.cfg.Ended, now),
		}
	default:
		// During WAITING the client shows the upcoming round length.
		return models.TimerStatus{
			State:             models.PhaseWaiting,
			TimeRemaining:     int(t.cfg.Active / time.Second),
			WaitTimeRemaining: remainingSeconds(round.EnteredAt, t.cfg.Wait, now),
		}
	}
}

// remainingSeconds is max(0, duration - elapsed) rounded up to whole seconds
func remainingSeconds(entered time.Time, d time.Duration, now time.Time) int {
	left := d - now.Sub(entered)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}
