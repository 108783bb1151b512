// Package complaint defines the closed category and severity vocabulary for
// malicious civil-complaint screening, plus the finding and risk result types
// shared by every detector and the aggregator.
//
// Design principles:
// - CLOSED SETS: categories and severities are fixed enums; every consumer
//   (resolver, aggregator, recommendation lookup) switches exhaustively
// - IMMUTABLE RESULTS: findings and risk results are created per call and
//   never mutated after being returned
package complaint

import "fmt"

// Category is one complaint category tag. The string values are the Korean
// dataset labels, so findings serialize directly into the label vocabulary
// used by training and validation data.
type Category string

const (
	CategoryNormal             Category = "정상"
	CategoryProfanity          Category = "욕설_저주"
	CategoryInsult             Category = "모욕_조롱"
	CategoryViolenceThreat     Category = "폭력_위협_범죄조장"
	CategorySexualHarassment   Category = "외설_성희롱"
	CategoryHateSpeech         Category = "혐오표현"
	CategoryRepetition         Category = "반복성"
	CategoryUnreasonableDemand Category = "무리한_요구"
	CategoryUnfairness         Category = "부당성"
	CategoryFalseComplaint     Category = "허위_민원"
	CategoryPrankCall          Category = "장난전화"
	CategoryFearInducement     Category = "공포심_불안감_유발"
	CategoryIrrelevance        Category = "주제_무관"
)

// AllCategories returns every category except CategoryNormal, in the fixed
// order detectors are registered and findings are reported.
func AllCategories() []Category {
	return []Category{
		CategoryProfanity,
		CategoryInsult,
		CategoryViolenceThreat,
		CategoryFearInducement,
		CategorySexualHarassment,
		CategoryHateSpeech,
		CategoryRepetition,
		CategoryUnreasonableDemand,
		CategoryIrrelevance,
		CategoryPrankCall,
		CategoryFalseComplaint,
		CategoryUnfairness,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	if c == CategoryNormal {
		return true
	}
	for _, cat := range AllCategories() {
		if c == cat {
			return true
		}
	}
	return false
}

// IsLexical reports whether c is detected by lexicon membership. These are
// the categories that count as "profanity detected" in the risk result.
func (c Category) IsLexical() bool {
	switch c {
	case CategoryProfanity, CategoryHateSpeech, CategorySexualHarassment:
		return true
	default:
		return false
	}
}

// ParseCategory maps a dataset label to its Category.
func ParseCategory(label string) (Category, error) {
	c := Category(label)
	if !c.Valid() {
		return CategoryNormal, fmt.Errorf("unknown category label: %q", label)
	}
	return c, nil
}
