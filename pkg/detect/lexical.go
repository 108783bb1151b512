package detect

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/lexicon"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// lexicalDetector covers the three lexicon-membership categories: profanity,
// hate speech and sexual harassment. A single automaton scan finds every
// curated term; severity scales with the match count and confidence with
// match count plus how much of the utterance the matches cover.
type lexicalDetector struct {
	kind     lexicon.Kind
	category complaint.Category
	label    string
	th       *complaint.Thresholds
	lex      *lexicon.Matcher
}

func (d *lexicalDetector) Category() complaint.Category { return d.category }

func (d *lexicalDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	matches := d.lex.Scan(t, d.kind)
	if len(matches) == 0 {
		return nil
	}

	severity := resolveByCount(
		complaint.SeverityMedium,
		len(matches),
		d.th.LexiconHighMatches,
		d.th.LexiconCriticalMatches,
	)

	matchedRunes := 0
	spans := make([]string, 0, len(matches))
	for _, m := range matches {
		matchedRunes += len([]rune(m.Term))
		spans = append(spans, m.Span)
	}
	coverage := 0.0
	if t.RuneLen() > 0 {
		coverage = float64(matchedRunes) / float64(t.RuneLen())
	}
	confidence := 0.6 + 0.08*float64(len(matches)) + 0.3*coverage

	return &complaint.Finding{
		Category:    d.category,
		Severity:    severity,
		Confidence:  confidence,
		Description: fmt.Sprintf("%s 표현 %d건 감지", d.label, len(matches)),
		Evidence:    lo.Uniq(spans),
	}
}
