package sse

// SSE event type constants
const (
	EventPhaseChange = "phase-change"
	EventHarvest     = "harvest"
)
