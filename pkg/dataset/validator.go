package dataset

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/minwonlab/sentinel/pkg/complaint"
)

// Recommended dataset shape. Violations of these are warnings, not errors.
const (
	minDatasetSize    = 500
	goodDatasetSize   = 1000
	minLabelSamples   = 20
	minNormalRatio    = 0.3
	maxNormalRatio    = 0.8
	minTextRunes      = 3
	maxTextRunes      = 1000
	minLangCheckRunes = 10
)

var (
	rePhone = regexp.MustCompile(`\d{2,3}-\d{3,4}-\d{4}`)
	reEmail = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Report is the outcome of a validation run. Errors make the dataset
// unusable; warnings flag quality issues worth fixing before training.
type Report struct {
	Valid       bool     `json:"valid"`
	RecordCount int      `json:"record_count"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Validator checks dataset structure and quality.
type Validator struct {
	requiredColumns []string

	errors   []string
	warnings []string
}

// NewValidator builds a validator. With no arguments the required columns
// default to text and label.
func NewValidator(requiredColumns ...string) *Validator {
	if len(requiredColumns) == 0 {
		requiredColumns = []string{ColText, ColLabel}
	}
	return &Validator{requiredColumns: requiredColumns}
}

// Validate runs every check over the dataset.
func (v *Validator) Validate(ds *Dataset) *Report {
	v.errors = nil
	v.warnings = nil

	v.checkRequiredColumns(ds)
	v.checkEmptyValues(ds)
	v.checkLabelValidity(ds)
	v.checkDataSize(ds)
	v.checkLabelDistribution(ds)
	v.checkSessionInfo(ds)
	v.checkTextQuality(ds)
	v.checkLanguage(ds)

	return &Report{
		Valid:       len(v.errors) == 0,
		RecordCount: ds.Len(),
		Errors:      v.errors,
		Warnings:    v.warnings,
	}
}

func (v *Validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *Validator) checkRequiredColumns(ds *Dataset) {
	var missing []string
	for _, col := range v.requiredColumns {
		if !ds.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		v.errorf("필수 컬럼 누락: %s", strings.Join(missing, ", "))
	}
}

func (v *Validator) checkEmptyValues(ds *Dataset) {
	if ds.HasColumn(ColText) {
		empty := 0
		for i := range ds.Records {
			if strings.TrimSpace(ds.Records[i].Text) == "" {
				empty++
			}
		}
		if empty > 0 {
			v.errorf("text 컬럼에 빈 값 %d개 존재", empty)
		}
	}
	if ds.HasColumn(ColLabel) {
		empty := 0
		for i := range ds.Records {
			if strings.TrimSpace(ds.Records[i].Label) == "" {
				empty++
			}
		}
		if empty > 0 {
			v.errorf("label 컬럼에 빈 값 %d개 존재", empty)
		}
	}
}

func (v *Validator) checkLabelValidity(ds *Dataset) {
	if !ds.HasColumn(ColLabel) {
		return
	}

	type invalid struct {
		row   int
		label string
	}
	var invalids []invalid
	for i := range ds.Records {
		for _, label := range ds.Records[i].Labels() {
			if _, err := complaint.ParseCategory(label); err != nil {
				invalids = append(invalids, invalid{row: i, label: label})
			}
		}
	}
	if len(invalids) == 0 {
		return
	}

	var examples []string
	for _, iv := range invalids[:min(5, len(invalids))] {
		examples = append(examples, fmt.Sprintf("행 %d: %q", iv.row, iv.label))
	}
	v.errorf("잘못된 라벨 %d개 발견. 예시: %s", len(invalids), strings.Join(examples, ", "))
}

func (v *Validator) checkDataSize(ds *Dataset) {
	total := ds.Len()
	switch {
	case total < minDatasetSize:
		v.warnf("데이터가 너무 적음: %d개 (최소 %d개 권장)", total, minDatasetSize)
	case total < goodDatasetSize:
		v.warnf("데이터 규모가 작음: %d개 (%d개 이상 권장)", total, goodDatasetSize)
	}
}

func (v *Validator) checkLabelDistribution(ds *Dataset) {
	if !ds.HasColumn(ColLabel) {
		return
	}

	counts := ds.LabelCounts()
	for _, cat := range append([]complaint.Category{complaint.CategoryNormal}, complaint.AllCategories()...) {
		if count, ok := counts[string(cat)]; ok && count < minLabelSamples {
			v.warnf("라벨 '%s' 샘플 부족: %d개 (최소 %d개 권장)", cat, count, minLabelSamples)
		}
	}

	total := ds.Len()
	if total == 0 {
		return
	}
	ratio := float64(counts[string(complaint.CategoryNormal)]) / float64(total)
	if ratio < minNormalRatio {
		v.warnf("정상 샘플 비율이 낮음: %.1f%% (%.0f%% 이상 권장)", ratio*100, minNormalRatio*100)
	} else if ratio > maxNormalRatio {
		v.warnf("정상 샘플 비율이 너무 높음: %.1f%% (클래스 불균형 가능)", ratio*100)
	}
}

func (v *Validator) checkSessionInfo(ds *Dataset) {
	if !ds.HasColumn(ColSession) || !ds.HasColumn(ColTurn) {
		return
	}

	turnsPerSession := make(map[string]int)
	for i := range ds.Records {
		if id := ds.Records[i].SessionID; id != "" {
			turnsPerSession[id]++
		}
	}
	singleTurn := 0
	for _, turns := range turnsPerSession {
		if turns == 1 {
			singleTurn++
		}
	}
	if singleTurn > 0 {
		v.warnf("턴이 1개인 세션 %d개 (반복성 감지 어려움)", singleTurn)
	}
}

func (v *Validator) checkTextQuality(ds *Dataset) {
	if !ds.HasColumn(ColText) {
		return
	}

	var tooShort, tooLong, phones, emails int
	for i := range ds.Records {
		text := ds.Records[i].Text
		runes := utf8.RuneCountInString(text)
		if runes > 0 && runes < minTextRunes {
			tooShort++
		}
		if runes > maxTextRunes {
			tooLong++
		}
		if rePhone.MatchString(text) {
			phones++
		}
		if reEmail.MatchString(text) {
			emails++
		}
	}

	if tooShort > 0 {
		v.warnf("너무 짧은 텍스트 %d개 (%d자 미만)", tooShort, minTextRunes)
	}
	if tooLong > 0 {
		v.warnf("너무 긴 텍스트 %d개 (%d자 초과)", tooLong, maxTextRunes)
	}
	if phones > 0 {
		v.warnf("전화번호 패턴 발견 %d개 (개인정보 마스킹 필요)", phones)
	}
	if emails > 0 {
		v.warnf("이메일 패턴 발견 %d개 (개인정보 마스킹 필요)", emails)
	}
}

// checkLanguage flags rows whose text is confidently detected as a language
// other than Korean. Short rows are skipped; detection noise on a few words
// is not worth a warning.
func (v *Validator) checkLanguage(ds *Dataset) {
	if !ds.HasColumn(ColText) {
		return
	}

	foreign := 0
	for i := range ds.Records {
		text := ds.Records[i].Text
		if utf8.RuneCountInString(text) < minLangCheckRunes {
			continue
		}
		info := whatlanggo.Detect(text)
		if info.Lang != whatlanggo.Kor && info.IsReliable() {
			foreign++
		}
	}
	if foreign > 0 {
		v.warnf("한국어가 아닌 것으로 보이는 텍스트 %d개", foreign)
	}
}
