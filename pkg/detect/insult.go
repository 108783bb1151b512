package detect

import (
	"fmt"
	"regexp"

	"github.com/samber/lo"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/lexicon"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// insultTemplates combine demeaning-address patterns with the
// rhetorical-question belittlement register common in abusive calls
// (questioning the agent's competence or education).
var insultTemplates = []*regexp.Regexp{
	regexp.MustCompile(`뭐\s*배웠`),
	regexp.MustCompile(`배우긴\s*했`),
	regexp.MustCompile(`학교는?\s*나왔`),
	regexp.MustCompile(`교육은?\s*받았`),
	regexp.MustCompile(`생각이란\s*게\s*있`),
	regexp.MustCompile(`정신이\s*있는\s*거`),
	regexp.MustCompile(`제대로\s*일을?\s*못`),
	regexp.MustCompile(`일을\s*못하`),
	regexp.MustCompile(`일머리가\s*없`),
	regexp.MustCompile(`무능하`),
	regexp.MustCompile(`멍청하`),
	regexp.MustCompile(`바보\s*같`),
	regexp.MustCompile(`수준\s*하고는`),
	regexp.MustCompile(`머리가\s*나쁘`),
	regexp.MustCompile(`너\s*같은\s*(사람|것)`),
}

// insultDetector fires on belittlement templates. Default severity sits
// below explicit profanity, but profanity co-located in the same utterance
// escalates it one step.
type insultDetector struct {
	th  *complaint.Thresholds
	lex *lexicon.Matcher
}

func newInsultDetector(th *complaint.Thresholds, lex *lexicon.Matcher) *insultDetector {
	return &insultDetector{th: th, lex: lex}
}

func (d *insultDetector) Category() complaint.Category {
	return complaint.CategoryInsult
}

func (d *insultDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	var hits []string
	for _, re := range insultTemplates {
		if m := re.FindString(t.Folded); m != "" {
			hits = append(hits, m)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	severity := complaint.SeverityLow
	if len(hits) >= d.th.TemplateMediumMatches {
		severity = complaint.SeverityMedium
	}
	severity = stepUp(severity, d.lex.Contains(t, lexicon.KindProfanity))

	return &complaint.Finding{
		Category:    complaint.CategoryInsult,
		Severity:    severity,
		Confidence:  0.6 + 0.12*float64(len(hits)),
		Description: fmt.Sprintf("모욕·조롱 표현 %d건 감지", len(hits)),
		Evidence:    lo.Uniq(hits),
	}
}
