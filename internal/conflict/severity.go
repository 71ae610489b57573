// Package conflict detects DNS naming collisions across Docker networks
// and generates remediation guidance for each finding.
package conflict

import "fmt"

// Severity classifies how badly a finding breaks DNS resolution.
// Ranking always goes through Rank; the serialized token is for
// display and wire output only.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityWarning
)

// Rank returns the explicit sort order: lower is more severe.
func (s Severity) Rank() int {
	return int(s)
}

// String returns the wire token for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as its token.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses a severity token.
func (s *Severity) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"critical"`:
		*s = SeverityCritical
	case `"high"`:
		*s = SeverityHigh
	case `"warning"`:
		*s = SeverityWarning
	default:
		return fmt.Errorf("unknown severity %s", data)
	}
	return nil
}
