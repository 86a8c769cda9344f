package models

// StationSnapshot is what we believed about a station after the last cycle:
// whether it was offline and which sensors were failing. It is the only
// entity that survives across poll cycles. Failures is kept sorted and
// unique so snapshots compare and serialize deterministically.
type StationSnapshot struct {
	Offline  bool     `json:"offline"`
	Failures []string `json:"failures,omitempty"`
}

// HasFailures reports whether any sensor was known to be failing.
func (s StationSnapshot) HasFailures() bool {
	return len(s.Failures) > 0
}
