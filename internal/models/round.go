package models

import "time"

// Round is the stored timer record for one game instance
type Round struct {
	Phase     RoundPhase
	EnteredAt time.Time
}

// TimerStatus is the computed view of a Round at a point in time
type TimerStatus struct {
	State             RoundPhase `json:"state"`
	TimeRemaining     int        `json:"timeRemaining"`
	WaitTimeRemaining int        `json:"waitTimeRemaining"`
}
