// Package snapshot normalizes the persisted per-account cache: one entry per
// station holding its offline flag and known-failing sensors. Historical
// cache blobs used a bare "offline" string per station; normalization
// upgrades those at the read boundary so the rest of the code only ever
// sees the structured form.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"

	"stationwatch/internal/models"
)

// legacyOffline is the scalar sentinel older cache blobs stored for an
// offline station. Read-side only; never written back.
const legacyOffline = "offline"

// Normalize coerces one raw decoded cache value into a StationSnapshot.
// Unknown or malformed shapes degrade to the zero snapshot rather than
// failing the whole account.
func Normalize(raw any) models.StationSnapshot {
	switch v := raw.(type) {
	case string:
		if v == legacyOffline {
			return models.StationSnapshot{Offline: true}
		}
		return models.StationSnapshot{}
	case map[string]any:
		snap := models.StationSnapshot{}
		if offline, ok := v["offline"].(bool); ok {
			snap.Offline = offline
		}
		snap.Failures = normalizeFailures(v["failures"])
		return snap
	default:
		return models.StationSnapshot{}
	}
}

// normalizeFailures accepts the failure field in any historical shape:
// an array of labels, or the older label->count map. Anything else is
// treated as no failures.
func normalizeFailures(raw any) []string {
	switch v := raw.(type) {
	case []any:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				labels = append(labels, s)
			}
		}
		return NormalizeSet(labels)
	case map[string]any:
		labels := make([]string, 0, len(v))
		for label := range v {
			labels = append(labels, label)
		}
		return NormalizeSet(labels)
	default:
		return nil
	}
}

// Build produces the snapshot to persist for a station this cycle.
func Build(failures []string, offline bool) models.StationSnapshot {
	return models.StationSnapshot{
		Offline:  offline,
		Failures: NormalizeSet(failures),
	}
}

// NormalizeSet sorts and deduplicates sensor labels, dropping empties.
// Returns nil for an empty result so snapshots compare cleanly.
func NormalizeSet(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// Diff returns the labels in current that are absent from previous, sorted.
// Both inputs are treated as sets.
func Diff(current, previous []string) []string {
	if len(current) == 0 {
		return nil
	}
	prev := make(map[string]bool, len(previous))
	for _, l := range previous {
		prev[l] = true
	}
	var out []string
	for _, l := range current {
		if !prev[l] {
			out = append(out, l)
		}
	}
	return NormalizeSet(out)
}

// ParseCache decodes a raw cache blob into the per-station snapshot map,
// normalizing legacy entries in place. An empty blob is an empty map.
func ParseCache(data []byte) (map[string]models.StationSnapshot, error) {
	image := make(map[string]models.StationSnapshot)
	if len(data) == 0 {
		return image, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot cache: %w", err)
	}
	for stationID, value := range raw {
		image[stationID] = Normalize(value)
	}
	return image, nil
}

// EncodeCache serializes the snapshot map in the structured form only —
// legacy scalars are never written back.
func EncodeCache(image map[string]models.StationSnapshot) ([]byte, error) {
	if image == nil {
		image = map[string]models.StationSnapshot{}
	}
	data, err := json.Marshal(image)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot cache: %w", err)
	}
	return data, nil
}
