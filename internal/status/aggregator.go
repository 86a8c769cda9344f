package status

import (
	"sort"

	"stationwatch/internal/models"
)

// Aggregate decodes every monitored device of one station. Heartbeat
// serials are dropped; everything else is classified and returned, ok
// results included — filtering is the caller's concern.
func Aggregate(diagnostics []models.DeviceDiagnostic) []models.DeviceStatusResult {
	results := make([]models.DeviceStatusResult, 0, len(diagnostics))
	for _, d := range diagnostics {
		if IsHeartbeat(d.SerialNumber) {
			continue
		}
		deviceType := DeviceType(d.SerialNumber)
		class, failures := Classify(d.SensorStatus, deviceType)
		results = append(results, models.DeviceStatusResult{
			DeviceID:       d.DeviceID,
			Serial:         d.SerialNumber,
			DeviceType:     deviceType,
			RawStatus:      d.SensorStatus,
			Classification: class,
			Failures:       failures,
		})
	}
	return results
}

// FailureSet reduces device results to the station-level failed-sensor set:
// the union of sensor labels across failure-classified devices, sorted and
// deduplicated. The per-device breakdown stays in the results for alert
// grouping.
func FailureSet(results []models.DeviceStatusResult) []string {
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Classification != models.ClassFailure {
			continue
		}
		for _, f := range r.Failures {
			seen[f.SensorLabel] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for label := range seen {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
