// Package status decodes raw device status words into classifications and
// reduces per-device results to a station-level failure set.
package status

import (
	"strings"

	"stationwatch/internal/flags"
	"stationwatch/internal/models"
)

// heartbeatMarker identifies hub/repeater serials. Those devices carry no
// sensors and are excluded from all monitoring.
const heartbeatMarker = "HB"

// IsHeartbeat reports whether the serial belongs to repeater hardware.
func IsHeartbeat(serial string) bool {
	return strings.Contains(serial, heartbeatMarker)
}

// DeviceType derives the type code from a serial number: the text before
// the first dash ("ST-00012345" -> "ST"). A serial without a dash is its
// own type code and will simply match no table.
func DeviceType(serial string) string {
	if i := strings.Index(serial, "-"); i >= 0 {
		return serial[:i]
	}
	return serial
}

// Classify decodes a raw status word against the flag table for deviceType.
//
// Any error-severity match makes the device a failure; otherwise any
// warning-severity match makes it a warning. Named failures are surfaced
// only for the failure classification: a device matched solely at warning
// severity classifies as warning with an empty failure list. Unknown device
// types classify as ok — nothing monitored is not an error.
func Classify(rawStatus uint32, deviceType string) (models.Classification, []models.SensorFailure) {
	class := models.ClassOK
	var failures []models.SensorFailure

	for _, sensor := range flags.For(deviceType) {
		for _, f := range sensor.Flags {
			if rawStatus&f.Bit == 0 {
				continue
			}
			switch f.Severity {
			case flags.SeverityError:
				class = models.ClassFailure
				failures = append(failures, models.SensorFailure{
					SensorLabel: sensor.Label,
					Reason:      f.Reason,
				})
			case flags.SeverityWarning:
				if class < models.ClassWarning {
					class = models.ClassWarning
				}
			}
		}
	}

	if class != models.ClassFailure {
		return class, nil
	}
	return class, failures
}
