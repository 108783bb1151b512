package detect

import (
	"fmt"
	"regexp"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// reRepetitionMarker catches explicit "as I said before" framing.
var reRepetitionMarker = regexp.MustCompile(
	`말씀\s*드렸다시피|말씀드렸|말했다시피|또\s*같은|같은\s*얘기|같은\s*말을|` +
		`몇\s*번을?\s*말|몇\s*번째|아까도|전에도|지난번에도|앞선\s*통화|다시\s*한\s*번\s*말|재차\s*말씀`)

// repetitionDetector is the only context-aware detector: it needs the prior
// turns of the session and never fires without them. A finding requires
// either an explicit repetition marker or key-phrase overlap with at least
// one prior turn above the configured threshold; confidence grows with the
// number of overlapping turns.
type repetitionDetector struct {
	th *complaint.Thresholds
}

func newRepetitionDetector(th *complaint.Thresholds) *repetitionDetector {
	return &repetitionDetector{th: th}
}

func (d *repetitionDetector) Category() complaint.Category {
	return complaint.CategoryRepetition
}

func (d *repetitionDetector) Detect(t *textnorm.Text, context []string) *complaint.Finding {
	if len(context) == 0 {
		return nil
	}

	marker := reRepetitionMarker.FindString(t.Folded)

	phrases := textnorm.KeyPhrases(t.Original)
	matchingTurns := 0
	for _, prior := range context {
		if textnorm.Overlap(phrases, textnorm.KeyPhrases(prior)) >= d.th.RepetitionOverlap {
			matchingTurns++
		}
	}

	if marker == "" && matchingTurns == 0 {
		return nil
	}

	severity := complaint.SeverityLow
	if matchingTurns >= d.th.RepetitionMediumTurns || (marker != "" && matchingTurns >= 1) {
		severity = complaint.SeverityMedium
	}

	confidence := 0.5 + 0.15*float64(matchingTurns)
	if marker != "" {
		confidence += 0.2
	}

	var evidence []string
	if marker != "" {
		evidence = append(evidence, marker)
	}

	return &complaint.Finding{
		Category:    complaint.CategoryRepetition,
		Severity:    severity,
		Confidence:  confidence,
		Description: fmt.Sprintf("반복 민원 정황 감지 (유사 이전 발화 %d건)", matchingTurns),
		Evidence:    evidence,
	}
}
