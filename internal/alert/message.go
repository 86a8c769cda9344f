// Package alert formats and delivers chat notifications for station
// transitions. Message wording is a compatibility contract with the
// receiving channel; change it only in lockstep with downstream consumers.
package alert

import (
	"fmt"
	"strings"
)

const stationBaseURL = "https://tempestwx.com/station"

// StationLink renders the clickable station reference used in every alert.
func StationLink(stationID int, name string) string {
	return fmt.Sprintf("*<%s/%d|%d>* (%s)", stationBaseURL, stationID, stationID, name)
}

// Mentions renders a space-joined sequence of user mention tokens, or an
// empty string when no recipients are configured.
func Mentions(userIDs []string) string {
	if len(userIDs) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		tokens = append(tokens, fmt.Sprintf("<@%s>", id))
	}
	return strings.Join(tokens, " ")
}

// NewlyOffline announces a station going offline, naming any sensors that
// were failing at the time.
func NewlyOffline(mentions, account, link string, failures []string) string {
	if len(failures) == 0 {
		return fmt.Sprintf("%s:rotating_light: %s Station %s is *OFFLINE*!", mentions, account, link)
	}
	return fmt.Sprintf("%s:rotating_light: %s Station %s is *OFFLINE* and has sensor failures: %s",
		mentions, account, link, strings.Join(failures, ", "))
}

// SensorFailure announces new sensor failures on an online station. One
// message is sent per device carrying new failures.
func SensorFailure(mentions, account, link string, sensors []string) string {
	return fmt.Sprintf("%s:warning: %s Station %s has sensor failures: %s",
		mentions, account, link, strings.Join(sensors, ", "))
}

// Recovered announces a station coming back online. Recoveries carry no
// mentions: good news does not page anyone.
func Recovered(account, link string) string {
	return fmt.Sprintf(":white_check_mark: %s Station %s has *RECOVERED*!", account, link)
}
