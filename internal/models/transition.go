package models

import "time"

// TransitionCategory classifies the change in a station's health between
// two consecutive cycles. Exactly one category applies per station per cycle.
type TransitionCategory string

const (
	TransitionNewFailure   TransitionCategory = "NEW_FAILURE"
	TransitionRecovered    TransitionCategory = "RECOVERED"
	TransitionStillHealthy TransitionCategory = "STILL_HEALTHY"
	TransitionNewlyOffline TransitionCategory = "NEWLY_OFFLINE"
	TransitionStillOffline TransitionCategory = "STILL_OFFLINE"
)

// TransitionEvent is emitted once per station per cycle. NewSensors carries
// only the sensors that were not already failing last cycle; AllSensors is
// the full current failure set.
type TransitionEvent struct {
	Account     string             `json:"account"`
	StationID   int                `json:"station_id"`
	StationName string             `json:"station_name"`
	Category    TransitionCategory `json:"category"`
	NewSensors  []string           `json:"new_sensors,omitempty"`
	AllSensors  []string           `json:"all_sensors,omitempty"`
}

// Notifiable reports whether this transition fires an alert. StillHealthy
// and StillOffline are silent by design: alerts fire once per transition,
// not once per poll.
func (e TransitionEvent) Notifiable() bool {
	switch e.Category {
	case TransitionNewFailure, TransitionRecovered, TransitionNewlyOffline:
		return true
	}
	return false
}

// StationEvent is a persisted log entry for one transition.
type StationEvent struct {
	EventID     string             `json:"event_id"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Account     string             `json:"account"`
	StationID   int                `json:"station_id"`
	Category    TransitionCategory `json:"category"`
	Sensors     []string           `json:"sensors,omitempty"`
	Description string             `json:"description"`
}
