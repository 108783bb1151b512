package complaint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds carries every tunable numeric boundary of the engine. The exact
// weight-to-severity cut points were not fixed by the upstream criteria, so
// they are configuration rather than constants; the values below are the
// documented defaults.
type Thresholds struct {
	// Lexicon detectors: match counts that raise severity.
	LexiconHighMatches     int `yaml:"lexicon_high_matches"`     // >= this -> HIGH
	LexiconCriticalMatches int `yaml:"lexicon_critical_matches"` // >= this -> CRITICAL

	// Repetition: minimum key-phrase overlap with a prior turn to count it
	// as a matching turn, and the matching-turn count that raises severity.
	RepetitionOverlap     float64 `yaml:"repetition_overlap"`
	RepetitionMediumTurns int     `yaml:"repetition_medium_turns"`

	// Template detectors: match counts that raise severity one step.
	TemplateMediumMatches int `yaml:"template_medium_matches"`

	// Risk score bucket upper bounds (inclusive). Score 0 is always NORMAL.
	RiskLowMax    int `yaml:"risk_low_max"`
	RiskMediumMax int `yaml:"risk_medium_max"`
	RiskHighMax   int `yaml:"risk_high_max"`
	RiskScoreCap  int `yaml:"risk_score_cap"`
}

// DefaultThresholds returns the documented default boundaries.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		LexiconHighMatches:     2,
		LexiconCriticalMatches: 4,
		RepetitionOverlap:      0.5,
		RepetitionMediumTurns:  2,
		TemplateMediumMatches:  2,
		RiskLowMax:             2,
		RiskMediumMax:          5,
		RiskHighMax:            8,
		RiskScoreCap:           10,
	}
}

// LoadThresholds reads a YAML override file. Fields left zero in the file
// fall back to defaults, so partial overrides are fine.
func LoadThresholds(path string) (*Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds: %w", err)
	}
	th := &Thresholds{}
	if err := yaml.Unmarshal(data, th); err != nil {
		return nil, fmt.Errorf("parse thresholds: %w", err)
	}
	th.applyDefaults()
	return th, nil
}

func (t *Thresholds) applyDefaults() {
	def := DefaultThresholds()
	if t.LexiconHighMatches <= 0 {
		t.LexiconHighMatches = def.LexiconHighMatches
	}
	if t.LexiconCriticalMatches <= 0 {
		t.LexiconCriticalMatches = def.LexiconCriticalMatches
	}
	if t.RepetitionOverlap <= 0 {
		t.RepetitionOverlap = def.RepetitionOverlap
	}
	if t.RepetitionMediumTurns <= 0 {
		t.RepetitionMediumTurns = def.RepetitionMediumTurns
	}
	if t.TemplateMediumMatches <= 0 {
		t.TemplateMediumMatches = def.TemplateMediumMatches
	}
	if t.RiskLowMax <= 0 {
		t.RiskLowMax = def.RiskLowMax
	}
	if t.RiskMediumMax <= 0 {
		t.RiskMediumMax = def.RiskMediumMax
	}
	if t.RiskHighMax <= 0 {
		t.RiskHighMax = def.RiskHighMax
	}
	if t.RiskScoreCap <= 0 {
		t.RiskScoreCap = def.RiskScoreCap
	}
}

// BucketRiskLevel maps a clamped risk score to its risk level.
func (t *Thresholds) BucketRiskLevel(score int) Severity {
	switch {
	case score <= 0:
		return SeverityNormal
	case score <= t.RiskLowMax:
		return SeverityLow
	case score <= t.RiskMediumMax:
		return SeverityMedium
	case score <= t.RiskHighMax:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}
