package detect

import "github.com/minwonlab/sentinel/pkg/complaint"

// Severity resolution: fixed per-category thresholds map raw match strength
// to a severity. NORMAL is reserved for "no finding" and is never produced
// here. When overlapping templates could map one category to two severities,
// the higher one wins: resolveByCount walks the thresholds top down.

// resolveByCount maps a match count to a severity. base is the severity of a
// single match; highAt and criticalAt are the counts at which the category
// steps up. Zero thresholds disable the step.
func resolveByCount(base complaint.Severity, count, highAt, criticalAt int) complaint.Severity {
	switch {
	case criticalAt > 0 && count >= criticalAt:
		return complaint.SeverityCritical
	case highAt > 0 && count >= highAt:
		return base.Max(complaint.SeverityHigh)
	case count > 0:
		return base
	default:
		return complaint.SeverityNormal
	}
}

// stepUp raises a severity one level; base stays when the condition is
// false. Confidence is never derived from this: a LOW finding can still be
// reported with high confidence when the match is exact.
func stepUp(s complaint.Severity, cond bool) complaint.Severity {
	if cond {
		return s.Escalate()
	}
	return s
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 0.99 {
		return 0.99
	}
	return c
}
