package complaint

// Finding is one detector's verdict for a single utterance. Findings are
// produced fresh per call and owned by the caller.
type Finding struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"` // 0.0 - 1.0
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"` // matched spans from the original text
}

// ConsultationMetadata carries the structured consultation fields supplied by
// an upstream system. Every field is optional free text; none is ever
// inferred from the utterance.
type ConsultationMetadata struct {
	ConsultationContent string `json:"consultation_content,omitempty"`
	ConsultationResult  string `json:"consultation_result,omitempty"`
	RequirementType     string `json:"requirement_type,omitempty"`
	ConsultationReason  string `json:"consultation_reason,omitempty"`
}

// Empty reports whether no metadata field is populated.
func (m *ConsultationMetadata) Empty() bool {
	if m == nil {
		return true
	}
	return m.ConsultationContent == "" && m.ConsultationResult == "" &&
		m.RequirementType == "" && m.ConsultationReason == ""
}

// RiskScoreResult is the aggregate decision for one utterance.
type RiskScoreResult struct {
	RiskScore         int      `json:"risk_score"` // 0 - 10
	RiskLevel         Severity `json:"risk_level"`
	ProfanityDetected bool     `json:"profanity_detected"`
	ProfanityCategory string   `json:"profanity_category,omitempty"`
	BaselineIssues    []string `json:"baseline_issues,omitempty"` // distinct category labels, report order
	MetadataIssues    []string `json:"metadata_issues,omitempty"`
	Confidence        float64  `json:"confidence"` // 0.0 - 1.0
	Recommendation    string   `json:"recommendation"`
}
