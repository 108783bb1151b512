package detect

import (
	"reflect"
	"testing"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

func findingFor(findings []complaint.Finding, cat complaint.Category) *complaint.Finding {
	for i := range findings {
		if findings[i].Category == cat {
			return &findings[i]
		}
	}
	return nil
}

func TestClassifyTextScenarios(t *testing.T) {
	r := Get()

	testCases := []struct {
		name        string
		text        string
		context     []string
		wantCats    []complaint.Category
		minSeverity map[complaint.Category]complaint.Severity
	}{
		{
			name:     "profanity with belittlement",
			text:     "X팔 너 거기 앉아서 뭐 배웠느냐? 고등학교는 나왔느냐?",
			wantCats: []complaint.Category{complaint.CategoryProfanity, complaint.CategoryInsult},
			minSeverity: map[complaint.Category]complaint.Severity{
				complaint.CategoryProfanity: complaint.SeverityMedium,
				complaint.CategoryInsult:    complaint.SeverityMedium,
			},
		},
		{
			name:     "repetition with prior turns",
			text:     "앞선 통화에서도 말씀드렸다시피, 또 같은 얘기인데요.",
			context:  []string{"이전 대화 내용 1", "이전 대화 내용 2"},
			wantCats: []complaint.Category{complaint.CategoryRepetition},
		},
		{
			name:     "explicit violent threat",
			text:     "죽여버리겠다. 찾아가서 복수하겠어.",
			wantCats: []complaint.Category{complaint.CategoryViolenceThreat},
			minSeverity: map[complaint.Category]complaint.Severity{
				complaint.CategoryViolenceThreat: complaint.SeverityCritical,
			},
		},
		{
			name: "unreasonable off-topic demand",
			text: "공짜로 독도에 보내달라. 돈이 없는데 특별히 해줘.",
			wantCats: []complaint.Category{
				complaint.CategoryUnreasonableDemand,
				complaint.CategoryIrrelevance,
			},
		},
		{
			name:     "self-declared prank call",
			text:     "이건 장난이에요. 테스트로 전화한 거예요.",
			wantCats: []complaint.Category{complaint.CategoryPrankCall},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			findings := r.ClassifyText(tc.text, tc.context)

			for _, want := range tc.wantCats {
				f := findingFor(findings, want)
				if f == nil {
					t.Fatalf("expected finding for %s, got %v", want, findings)
				}
				if f.Severity == complaint.SeverityNormal {
					t.Errorf("%s: firing detector must not emit NORMAL", want)
				}
				if f.Confidence <= 0 || f.Confidence > 1 {
					t.Errorf("%s: confidence %f out of range", want, f.Confidence)
				}
				if min, ok := tc.minSeverity[want]; ok && f.Severity < min {
					t.Errorf("%s: severity %s below expected minimum %s", want, f.Severity, min)
				}
			}
		})
	}
}

func TestClassifyTextCleanUtterance(t *testing.T) {
	r := Get()

	findings := r.ClassifyText("정상적인 민원 문의입니다. 도움이 필요합니다.", nil)
	if len(findings) != 0 {
		t.Errorf("expected no findings for a normal inquiry, got %v", findings)
	}
}

func TestClassifyTextBlankInput(t *testing.T) {
	r := Get()

	for _, text := range []string{"", "   ", "\t\n"} {
		if findings := r.ClassifyText(text, nil); findings != nil {
			t.Errorf("blank input %q should yield nil, got %v", text, findings)
		}
	}
}

func TestRepetitionRequiresContext(t *testing.T) {
	r := Get()
	const text = "앞선 통화에서도 말씀드렸다시피, 또 같은 얘기인데요."

	for _, ctx := range [][]string{nil, {}} {
		findings := r.ClassifyText(text, ctx)
		if f := findingFor(findings, complaint.CategoryRepetition); f != nil {
			t.Errorf("REPETITION must not fire without context (context=%v)", ctx)
		}
	}
}

func TestRepetitionConfidenceGrowsWithMatchingTurns(t *testing.T) {
	r := Get()
	const text = "같은 문제로 또 같은 얘기 드립니다."

	one := r.ClassifyText(text, []string{"같은 문제로 문의했었어요"})
	many := r.ClassifyText(text, []string{
		"같은 문제로 문의했었어요",
		"같은 문제로 전화드립니다",
	})

	f1 := findingFor(one, complaint.CategoryRepetition)
	f2 := findingFor(many, complaint.CategoryRepetition)
	if f1 == nil || f2 == nil {
		t.Fatal("expected repetition findings in both runs")
	}
	if f2.Confidence <= f1.Confidence {
		t.Errorf("confidence should grow with matching turns: %f -> %f", f1.Confidence, f2.Confidence)
	}
}

func TestClassifyTextIdempotent(t *testing.T) {
	r := Get()
	const text = "X팔 너 거기 앉아서 뭐 배웠느냐? 고등학교는 나왔느냐?"
	ctx := []string{"이전 통화 내용"}

	first := r.ClassifyText(text, ctx)
	second := r.ClassifyText(text, ctx)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification must be a pure function of (text, context)\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestDetectorRegistryComplete(t *testing.T) {
	r := Get()
	if got, want := r.DetectorCount(), len(complaint.AllCategories()); got != want {
		t.Errorf("expected one detector per non-normal category (%d), got %d", want, got)
	}
}

func BenchmarkClassifyText(b *testing.B) {
	r := Get()
	const text = "공짜로 독도에 보내달라. 돈이 없는데 특별히 해줘."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.ClassifyText(text, nil)
	}
}
