package detect

import (
	"fmt"
	"regexp"

	"github.com/samber/lo"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// Threat-family detectors: explicit violence and fear/anxiety inducement.
// Both work on the folded (spacing-preserved) view so verb endings and
// spacing cues stay matchable.

var (
	reViolentVerb = regexp.MustCompile(
		`죽여|죽이|때려버리|때리|패버리|찌르|칼로|불\s*지르|살인|없애\s*버리|박살|폭파|테러|해치|해코지|복수`)
	reFutureIntent = regexp.MustCompile(
		`겠다|겠어|버리겠|해버린다|할\s*거야|할거다|줄\s*테다|줄\s*테니`)
	reApproach = regexp.MustCompile(
		`찾아가|찾아와|쫓아가|들이닥치|집\s*앞으로`)
	reTarget = regexp.MustCompile(
		`(^|[\s,])(너|니|너희|니들|당신|네놈|네까짓)`)
)

type violenceDetector struct {
	th *complaint.Thresholds
}

func newViolenceDetector(th *complaint.Thresholds) *violenceDetector {
	return &violenceDetector{th: th}
}

func (d *violenceDetector) Category() complaint.Category {
	return complaint.CategoryViolenceThreat
}

func (d *violenceDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	verbs := reViolentVerb.FindAllString(t.Folded, -1)
	if len(verbs) == 0 {
		return nil
	}

	evidence := lo.Uniq(verbs)

	// A violent verb plus an explicit target or find-and-retaliate cue in
	// the same clause is the maximum-severity construction.
	critical := false
	for _, clause := range t.Clauses() {
		if !reViolentVerb.MatchString(clause) {
			continue
		}
		if reApproach.MatchString(clause) || reTarget.MatchString(clause) {
			critical = true
			if hit := reApproach.FindString(clause); hit != "" {
				evidence = append(evidence, hit)
			}
			break
		}
	}

	severity := complaint.SeverityMedium
	switch {
	case critical:
		severity = complaint.SeverityCritical
	case reFutureIntent.MatchString(t.Folded):
		// First-person future intent ("~하겠다") reads as a stated plan.
		severity = complaint.SeverityHigh
	}

	confidence := 0.75 + 0.05*float64(len(verbs))
	if critical {
		confidence += 0.1
	}

	return &complaint.Finding{
		Category:    complaint.CategoryViolenceThreat,
		Severity:    severity,
		Confidence:  confidence,
		Description: fmt.Sprintf("폭력·위협 표현 %d건 감지", len(verbs)),
		Evidence:    lo.Uniq(evidence),
	}
}

var reFear = regexp.MustCompile(
	`가만\s*안\s*둬|가만\s*두지\s*않|가만히\s*안\s*있|후회하게\s*될|후회할\s*줄|각오해|` +
		`어떻게\s*되는지\s*보자|집\s*주소\s*안다|신상\s*털|밤길\s*조심|지켜보고\s*있다|무슨\s*일이\s*생길지`)

type fearDetector struct {
	th *complaint.Thresholds
}

func newFearDetector(th *complaint.Thresholds) *fearDetector {
	return &fearDetector{th: th}
}

func (d *fearDetector) Category() complaint.Category {
	return complaint.CategoryFearInducement
}

func (d *fearDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	hits := reFear.FindAllString(t.Folded, -1)
	if len(hits) == 0 {
		return nil
	}

	severity := complaint.SeverityMedium
	if len(hits) >= d.th.TemplateMediumMatches {
		severity = complaint.SeverityHigh
	}
	// Intimidation aimed at an explicit second person escalates.
	severity = stepUp(severity, reTarget.MatchString(t.Folded))

	return &complaint.Finding{
		Category:    complaint.CategoryFearInducement,
		Severity:    severity,
		Confidence:  0.7 + 0.1*float64(len(hits)),
		Description: fmt.Sprintf("공포심·불안감 유발 표현 %d건 감지", len(hits)),
		Evidence:    lo.Uniq(hits),
	}
}
