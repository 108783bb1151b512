package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

var (
	// Imperative request constructions.
	reRequest = regexp.MustCompile(
		`해\s*줘|해\s*달라|해주세요|해\s*주세요|달라|내놔|내놓으|해결해\s*내|주세요`)
	// Disclaimers of the normal constraints: cost, eligibility, procedure.
	reDisclaimer = regexp.MustCompile(
		`공짜로|무료로|돈이?\s*없|특별히|그냥\s*해|무조건|당장\s*해|예외로\s*해|` +
			`규정\s*말고|절차\s*없이|나만\s*좀|봐주면\s*안`)
)

// demandDetector flags requests paired with disclaimers of cost,
// eligibility or procedure ("do it for free, specially for me").
type demandDetector struct {
	th *complaint.Thresholds
}

func newDemandDetector(th *complaint.Thresholds) *demandDetector {
	return &demandDetector{th: th}
}

func (d *demandDetector) Category() complaint.Category {
	return complaint.CategoryUnreasonableDemand
}

func (d *demandDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	requests := reRequest.FindAllString(t.Folded, -1)
	disclaimers := reDisclaimer.FindAllString(t.Folded, -1)
	if len(requests) == 0 || len(disclaimers) == 0 {
		return nil
	}

	severity := complaint.SeverityMedium
	if len(disclaimers) >= d.th.TemplateMediumMatches {
		severity = complaint.SeverityHigh
	}

	return &complaint.Finding{
		Category:    complaint.CategoryUnreasonableDemand,
		Severity:    severity,
		Confidence:  0.65 + 0.07*float64(len(requests)+len(disclaimers)),
		Description: fmt.Sprintf("무리한 요구 정황 감지 (요구 %d건, 조건 배제 %d건)", len(requests), len(disclaimers)),
		Evidence:    lo.Uniq(append(disclaimers, requests...)),
	}
}

// offTopicTerms are subjects with no connection to civil-service handling.
// Matched on the compact view so spacing variants still hit.
var offTopicTerms = []string{
	"독도", "로또", "복권", "주식 추천", "연예인", "축구 경기", "야구 경기",
	"게임 아이템", "데이트", "술 한잔", "노래 한 곡", "여행 보내",
}

// irrelevanceDetector flags content unrelated to the service domain. It is
// evaluated jointly with the unreasonable-demand cues (an off-topic subject
// attached to a demand is reported at higher severity) but stays an
// independent finding.
type irrelevanceDetector struct {
	th      *complaint.Thresholds
	compact []string // normalized off-topic terms
}

func newIrrelevanceDetector(th *complaint.Thresholds) *irrelevanceDetector {
	d := &irrelevanceDetector{th: th}
	for _, term := range offTopicTerms {
		d.compact = append(d.compact, string(textnorm.NormalizeTerm(term)))
	}
	return d
}

func (d *irrelevanceDetector) Category() complaint.Category {
	return complaint.CategoryIrrelevance
}

func (d *irrelevanceDetector) Detect(t *textnorm.Text, _ []string) *complaint.Finding {
	haystack := string(t.Compact)
	var hits []string
	for i, term := range d.compact {
		if term != "" && strings.Contains(haystack, term) {
			hits = append(hits, offTopicTerms[i])
		}
	}
	if len(hits) == 0 {
		return nil
	}

	severity := complaint.SeverityLow
	if reRequest.MatchString(t.Folded) {
		severity = complaint.SeverityMedium
	}

	return &complaint.Finding{
		Category:    complaint.CategoryIrrelevance,
		Severity:    severity,
		Confidence:  0.6 + 0.1*float64(len(hits)),
		Description: fmt.Sprintf("서비스 범위와 무관한 주제 %d건 감지", len(hits)),
		Evidence:    hits,
	}
}
