// Package transition classifies the change in a station's health between
// two consecutive poll cycles. The evaluation is pure: previous snapshot in,
// outcome plus replacement snapshot out.
package transition

import (
	"stationwatch/internal/models"
	"stationwatch/internal/snapshot"
)

// Outcome is the result of evaluating one station for one cycle.
type Outcome struct {
	Category models.TransitionCategory
	// NewSensors holds only the sensors not already known as failing last
	// cycle; re-surfacing a known failure does not re-alert.
	NewSensors []string
	// AllSensors is the full current failure set.
	AllSensors []string
	// Snapshot replaces the station's cache entry for the next cycle.
	Snapshot models.StationSnapshot
}

// Evaluate runs the per-station state machine. A station absent from the
// cache evaluates against the zero snapshot (online, no failures).
//
// Offline status is checked before sensor failures: a station that is both
// offline and failing sensors is classified by the offline rules, and its
// failure set is still recorded so a later recovery with the same sensors
// failing is not announced as new. Sensor-failure alerts therefore only
// ever fire for a station that is currently online.
func Evaluate(prev models.StationSnapshot, online bool, currentFailures []string) Outcome {
	current := snapshot.NormalizeSet(currentFailures)

	if !online {
		category := models.TransitionNewlyOffline
		if prev.Offline {
			// no new alert, but the failure set is refreshed every cycle
			category = models.TransitionStillOffline
		}
		return Outcome{
			Category:   category,
			AllSensors: current,
			Snapshot:   snapshot.Build(current, true),
		}
	}

	if prev.Offline {
		// back online: reset entirely, whatever the diagnostics said
		return Outcome{
			Category: models.TransitionRecovered,
			Snapshot: models.StationSnapshot{},
		}
	}

	newSensors := snapshot.Diff(current, prev.Failures)
	category := models.TransitionStillHealthy
	if len(newSensors) > 0 {
		category = models.TransitionNewFailure
	}
	return Outcome{
		Category:   category,
		NewSensors: newSensors,
		AllSensors: current,
		Snapshot:   snapshot.Build(current, false),
	}
}
