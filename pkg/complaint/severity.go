package complaint

import (
	"encoding/json"
	"fmt"
)

// Severity is the totally ordered escalation scale. The ordering is
// load-bearing: session summaries pick maxima and the aggregator compares
// severities numerically.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityNormal:   "NORMAL",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity maps a severity name to its Severity value.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if n == name {
			return s, nil
		}
	}
	return SeverityNormal, fmt.Errorf("unknown severity: %q", name)
}

// RiskPoints returns the numeric risk contribution of a single finding at
// this severity.
func (s Severity) RiskPoints() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 3
	case SeverityHigh:
		return 6
	case SeverityCritical:
		return 9
	default:
		return 0
	}
}

// Escalate bumps the severity one step, capped at CRITICAL. Used when
// overlapping templates map a category to two severities: the higher wins.
func (s Severity) Escalate() Severity {
	if s >= SeverityCritical {
		return SeverityCritical
	}
	return s + 1
}

// Max returns the higher of two severities.
func (s Severity) Max(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// MarshalJSON encodes the severity by name so results read the same in API
// responses and tabular output.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SeverityAction returns the fixed recommended action for a severity level.
func SeverityAction(s Severity) string {
	switch s {
	case SeverityLow:
		return "monitor"
	case SeverityMedium:
		return "agent warning/guidance"
	case SeverityHigh:
		return "escalate to supervisor"
	case SeverityCritical:
		return "immediate block and report"
	default:
		return "log only"
	}
}
