package models

// StateOnline is the upstream liveness value for an online station;
// every other value counts as offline.
const StateOnline = 1

// Station is one entry from the upstream station list.
type Station struct {
	StationID int    `json:"station_id"`
	Name      string `json:"name"`
	State     int    `json:"state"`
}

// Online reports whether the upstream considers the station alive.
func (s Station) Online() bool {
	return s.State == StateOnline
}

// DeviceDiagnostic is the raw per-device health word reported by a station.
type DeviceDiagnostic struct {
	DeviceID     int    `json:"device_id"`
	SerialNumber string `json:"serial_number"`
	SensorStatus uint32 `json:"sensor_status"`
}
