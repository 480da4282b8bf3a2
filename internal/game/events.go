package game

import "github.com/abenezer101/farmrush/internal/models"

// Events receives notifications about shared-state changes so they can be
// pushed to connected clients. Polling remains the source of truth; event
// delivery is best-effort.
type Events interface {
	PhaseChanged(instance string, phase models.RoundPhase)
	CellHarvested(instance string, cell models.Cell)
}

// NopEvents discards all notifications
type NopEvents struct{}

func (NopEvents) PhaseChanged(string, models.RoundPhase) {}
func (NopEvents) CellHarvested(string, models.Cell)      {}
