package game

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/abenezer101/farmrush/internal/models"
	"github.com/abenezer101/farmrush/internal/store"
)

// ErrOutOfBounds is returned for harvest coordinates outside the field
var ErrOutOfBounds = errors.New("cell outside field bounds")

// Ledger records which cells have been harvested this round. First
// submission wins; repeats are accepted no-ops so clients can harvest
// optimistically and never need a rejection path.
type Ledger struct {
	store  store.Store
	events Events
	now    func() time.Time
}

// NewLedger creates a Ledger over s. events may be nil.
func NewLedger(s store.Store, events Events) *Ledger {
	if events == nil {
		events = NopEvents{}
	}
	return &Ledger{store: s, events: events, now: time.Now}
}

// Submit records the harvest of cell. Harvesting an already-recorded cell
// leaves the original record untouched.
func (l *Ledger) Submit(ctx context.Context, instance string, cell models.Cell) error {
	if cell.X < 0 || cell.X >= GridWidth || cell.Y < 0 || cell.Y >= GridHeight {
		return ErrOutOfBounds
	}
	key := harvestedKey(instance)
	_, exists, err := l.store.HGet(ctx, key, cell.Key())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = l.store.HSet(ctx, key, map[string]string{
		cell.Key(): strconv.FormatInt(l.now().UnixMilli(), 10),
	})
	if err != nil {
		return err
	}
	l.events.CellHarvested(instance, cell)
	return nil
}

// Harvested returns every cell harvested this round, ordered row-major
// for stable responses
func (l *Ledger) Harvested(ctx context.Context, instance string) ([]models.Cell, error) {
	rec, err := l.store.HGetAll(ctx, harvestedKey(instance))
	if err != nil {
		return nil, err
	}
	cells := make([]models.Cell, 0, len(rec))
	for key := range rec {
		cell, err := models.ParseCellKey(key)
		if err != nil {
			log.Printf("harvest ledger: skipping %v", err)
			continue
		}
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells, nil
}
