package models

// RoundPhase represents the current phase of the round cycle
type RoundPhase string

const (
	PhaseWaiting RoundPhase = "WAITING"
	PhaseActive  RoundPhase = "ACTIVE"
	PhaseEnded   RoundPhase = "ENDED"
)

// Valid reports whether p is a known phase
func (p RoundPhase) Valid() bool {
	switch p {
	case PhaseWaiting, PhaseActive, PhaseEnded:
		return true
	}
	return false
}

// Next returns the phase that follows p in the cycle
func (p RoundPhase) Next() RoundPhase {
	switch p {
	case PhaseWaiting:
		return PhaseActive
	case PhaseActive:
		return PhaseEnded
	case PhaseEnded:
		return PhaseWaiting
	default:
		return PhaseWaiting
	}
}
