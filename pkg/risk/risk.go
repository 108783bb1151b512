// Package risk turns per-category findings and consultation metadata into a
// single bounded risk score with a recommended action.
package risk

import (
	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/detect"
)

// Classifier aggregates detector findings into a RiskScoreResult. The scoring
// rule is fixed; only the bucket boundaries come from thresholds.
type Classifier struct {
	reg *detect.Registry
}

// New returns a classifier over the default detector registry.
func New() *Classifier {
	return &Classifier{reg: detect.Get()}
}

// NewWithRegistry returns a classifier over an explicit registry, for callers
// running custom thresholds or term lists.
func NewWithRegistry(reg *detect.Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Registry exposes the underlying detector registry.
func (c *Classifier) Registry() *detect.Registry {
	return c.reg
}

// Score classifies one utterance and aggregates the findings together with
// any metadata inconsistencies into the final result.
func (c *Classifier) Score(text string, context []string, meta *complaint.ConsultationMetadata) complaint.RiskScoreResult {
	findings := c.reg.ClassifyText(text, context)
	return c.Aggregate(findings, CheckMetadata(meta))
}

// Aggregate computes the risk score from already-classified findings.
//
// The score is the highest single-finding contribution, plus one point per
// additional distinct category, plus one point per metadata issue, clamped to
// the configured cap. Severity alone decides a finding's contribution;
// confidence only feeds the aggregate confidence, never the score.
func (c *Classifier) Aggregate(findings []complaint.Finding, metadataIssues []string) complaint.RiskScoreResult {
	th := c.reg.Thresholds()

	result := complaint.RiskScoreResult{
		MetadataIssues: metadataIssues,
		Confidence:     1.0,
	}

	maxPoints := 0
	confSum := 0.0
	lexicalBest := complaint.SeverityNormal
	seen := map[complaint.Category]bool{}
	for _, f := range findings {
		if pts := f.Severity.RiskPoints(); pts > maxPoints {
			maxPoints = pts
		}
		confSum += f.Confidence
		if !seen[f.Category] {
			seen[f.Category] = true
			result.BaselineIssues = append(result.BaselineIssues, string(f.Category))
		}
		// The reported profanity category follows the highest-severity lexical
		// finding, not detector order.
		if f.Category.IsLexical() && (!result.ProfanityDetected || f.Severity > lexicalBest) {
			result.ProfanityDetected = true
			result.ProfanityCategory = string(f.Category)
			lexicalBest = f.Severity
		}
	}

	score := maxPoints
	if extra := len(seen) - 1; extra > 0 {
		score += extra
	}
	score += len(metadataIssues)
	if score > th.RiskScoreCap {
		score = th.RiskScoreCap
	}
	if score < 0 {
		score = 0
	}

	result.RiskScore = score
	result.RiskLevel = th.BucketRiskLevel(score)
	result.Recommendation = complaint.SeverityAction(result.RiskLevel)
	if len(findings) > 0 {
		result.Confidence = confSum / float64(len(findings))
	}
	return result
}
