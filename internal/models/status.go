package models

// Classification is the overall health of a single device. The constants
// form a total order so "errors beat warnings" is a plain comparison.
type Classification int

const (
	ClassOK Classification = iota
	ClassWarning
	ClassFailure
)

func (c Classification) String() string {
	switch c {
	case ClassWarning:
		return "warning"
	case ClassFailure:
		return "failure"
	default:
		return "ok"
	}
}

// SensorFailure names one failing measurement channel on a device.
type SensorFailure struct {
	SensorLabel string `json:"sensor_label"`
	Reason      string `json:"reason"`
}

// DeviceStatusResult is the decoded health of one device. Failures is
// populated only when Classification is ClassFailure; a device can be
// ClassWarning with an empty Failures list.
type DeviceStatusResult struct {
	DeviceID       int             `json:"device_id"`
	Serial         string          `json:"serial"`
	DeviceType     string          `json:"device_type"`
	RawStatus      uint32          `json:"raw_status"`
	Classification Classification  `json:"classification"`
	Failures       []SensorFailure `json:"failures,omitempty"`
}

// FailedSensors returns the labels of this device's failing sensors.
func (r DeviceStatusResult) FailedSensors() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.SensorLabel)
	}
	return out
}
