package detect

import (
	"fmt"
	"regexp"

	"github.com/samber/lo"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// templateDetector is the shared shape of the remaining template-based
// categories: one compiled pattern set, count-scaled severity, exact-match
// confidence.
type templateDetector struct {
	category    complaint.Category
	description string
	re          *regexp.Regexp
	base        complaint.Severity
	baseConf    float64
	confStep    float64
	th          *complaint.Thresholds
}

func (d *templateDetector) Category() complaint.Category { return d.category }

func (d *templateDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	hits := d.re.FindAllString(t.Folded, -1)
	if len(hits) == 0 {
		return nil
	}

	severity := d.base
	if len(hits) >= d.th.TemplateMediumMatches {
		severity = severity.Escalate()
	}

	return &complaint.Finding{
		Category:    d.category,
		Severity:    severity,
		Confidence:  d.baseConf + d.confStep*float64(len(hits)),
		Description: fmt.Sprintf(d.description, len(hits)),
		Evidence:    lo.Uniq(hits),
	}
}

// newPrankDetector matches explicit self-declared joke or test calls. The
// declaration is verbatim, so confidence starts high even though severity
// stays low.
func newPrankDetector(th *complaint.Thresholds) *templateDetector {
	return &templateDetector{
		category:    complaint.CategoryPrankCall,
		description: "장난·테스트 전화 표현 %d건 감지",
		re: regexp.MustCompile(
			`장난이에요|장난입니다|장난으로|장난\s*전화|장난삼아|테스트로\s*전화|` +
				`테스트\s*전화|시험\s*삼아\s*전화|심심해서\s*전화|재미로\s*전화|그냥\s*걸어\s*봤`),
		base:     complaint.SeverityLow,
		baseConf: 0.75,
		confStep: 0.08,
		th:       th,
	}
}

// newFalseComplaintDetector matches fabricated-claim assertions that lean on
// insistence instead of any verifiable reference.
func newFalseComplaintDetector(th *complaint.Thresholds) *templateDetector {
	return &templateDetector{
		category:    complaint.CategoryFalseComplaint,
		description: "허위 주장 정황 %d건 감지",
		re: regexp.MustCompile(
			`분명히\s*그랬|분명\s*봤|내가\s*다\s*봤|증거는?\s*없지만|기록에\s*없다고|` +
				`사실이라니까|틀림없이\s*했|거짓말\s*아니라니까|안\s*받았다니까|그런\s*적\s*없다면서`),
		base:     complaint.SeverityLow,
		baseConf: 0.55,
		confStep: 0.1,
		th:       th,
	}
}

// newUnfairnessDetector matches unjust-treatment assertions.
func newUnfairnessDetector(th *complaint.Thresholds) *templateDetector {
	return &templateDetector{
		category:    complaint.CategoryUnfairness,
		description: "부당 대우 주장 %d건 감지",
		re: regexp.MustCompile(
			`불공평|부당하|부당한|차별하|차별이|왜\s*나만|나한테만|다른\s*사람은\s*해주|형평성|억울하`),
		base:     complaint.SeverityLow,
		baseConf: 0.55,
		confStep: 0.1,
		th:       th,
	}
}
