// Package metrics builds and delivers the per-cycle telemetry samples.
// Each sample is one delimited line; a cycle's lines are batched into a
// single payload. Line format is a contract with the telemetry backend:
//
//	vip.<accountLower>_station_<metricName>.<jobName>,<unixSeconds>,<value>
package metrics

import (
	"fmt"
	"strings"

	"stationwatch/internal/flags"
	"stationwatch/internal/models"
)

// Line renders one metric sample.
func Line(account, metricName, jobName string, ts int64, value int) string {
	return fmt.Sprintf("vip.%s_station_%s.%s,%d,%d",
		strings.ToLower(account), metricName, jobName, ts, value)
}

// CycleLines renders the full metric batch for one account's cycle:
// online, offline and total station counts, a failure count per monitored
// sensor, and the total sensor failure count.
func CycleLines(jobName string, ts int64, s models.AccountSummary) []string {
	lines := []string{
		Line(s.Account, "online", jobName, ts, s.Online),
		Line(s.Account, "offline", jobName, ts, s.Offline),
		Line(s.Account, "total", jobName, ts, s.Stations),
	}
	for _, sensor := range flags.MonitoredSensors() {
		lines = append(lines, Line(s.Account, sensor+"_failures", jobName, ts, s.SensorFailures[sensor]))
	}
	lines = append(lines, Line(s.Account, "sensor_failures", jobName, ts, s.TotalFailures))
	return lines
}
