package risk

import (
	"regexp"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

var (
	// Closure wording in the consultation result field.
	reResolved = regexp.MustCompile(
		`완료|해결(됐|되었|됨)|종결|처리됨|처리\s*완료|조치\s*완료|안내\s*완료`)
	// Open-dispute wording in the consultation content field.
	reOngoing = regexp.MustCompile(
		`아직|해결되지\s*않|해결이?\s*안|안\s*됐|계속|여전히|미해결|그대로|불만|항의`)
)

// CheckMetadata inspects the structured consultation fields for internal
// contradictions. The checks are purely cross-field; nothing here reads the
// caller utterance. Empty or consistent metadata yields nil.
func CheckMetadata(meta *complaint.ConsultationMetadata) []string {
	if meta.Empty() {
		return nil
	}

	var issues []string

	if meta.ConsultationResult != "" && meta.ConsultationContent != "" &&
		reResolved.MatchString(meta.ConsultationResult) &&
		reOngoing.MatchString(meta.ConsultationContent) {
		issues = append(issues, "상담 결과는 완료이나 상담 내용에 미해결 정황")
	}

	if unrelatedToContent(meta.RequirementType, meta.ConsultationContent) {
		issues = append(issues, "요구 유형이 상담 내용과 무관")
	}
	if unrelatedToContent(meta.ConsultationReason, meta.ConsultationContent) {
		issues = append(issues, "상담 사유가 상담 내용과 무관")
	}

	return issues
}

// unrelatedToContent reports whether a short descriptor field shares no key
// phrase at all with the consultation content. Both sides must carry usable
// phrases; a descriptor of only particles and single syllables is skipped
// rather than flagged.
func unrelatedToContent(field, content string) bool {
	if field == "" || content == "" {
		return false
	}
	fieldPhrases := textnorm.KeyPhrases(field)
	contentPhrases := textnorm.KeyPhrases(content)
	if len(fieldPhrases) == 0 || len(contentPhrases) == 0 {
		return false
	}
	return textnorm.Overlap(fieldPhrases, contentPhrases) == 0
}
