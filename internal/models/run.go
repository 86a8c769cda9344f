package models

import "time"

// AccountSummary is the per-account outcome of one poll cycle. SensorFailures
// counts, per monitored sensor label, how many stations currently report it
// failing.
type AccountSummary struct {
	Account        string         `json:"account"`
	Stations       int            `json:"stations"`
	Online         int            `json:"online"`
	Offline        int            `json:"offline"`
	SensorFailures map[string]int `json:"sensor_failures,omitempty"`
	TotalFailures  int            `json:"total_failures"`
	Transitions    int            `json:"transitions"`
	Alerts         int            `json:"alerts"`

	// Degraded marks a cycle whose station list could not be fetched: the
	// zero counts above are then ambiguous, not evidence of health.
	Degraded bool `json:"degraded,omitempty"`
	// Skipped marks a cycle that never ran because a previous cycle for the
	// same account was still in flight.
	Skipped bool `json:"skipped,omitempty"`
}

// RunSummary is the outcome of one full poll cycle across all accounts.
type RunSummary struct {
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Accounts   []AccountSummary `json:"accounts"`
}
