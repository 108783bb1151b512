// Package detect implements the per-category complaint detectors and the
// registry that runs them.
//
// Design principles:
// - COMPILE ONCE: all regexes and automatons are built at registry
//   construction, not per call
// - INDEPENDENT DETECTORS: detectors never read each other's output; each is
//   a pure function of (text, context)
// - EXTENSIBLE: adding a category means adding one Detector implementation
//   and one registration line; the aggregator never changes
package detect

import (
	"sync"

	"github.com/minwonlab/sentinel/pkg/complaint"
	"github.com/minwonlab/sentinel/pkg/lexicon"
	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// Detector is the capability interface every category analyzer implements.
// Detect returns nil when the category is not present; it never returns a
// NORMAL-severity finding.
type Detector interface {
	Category() complaint.Category
	Detect(t *textnorm.Text, context []string) *complaint.Finding
}

// Registry holds the detector set in its fixed reporting order.
type Registry struct {
	detectors []Detector
	th        *complaint.Thresholds
	lex       *lexicon.Matcher
}

// global singleton with built-in lexicon and default thresholds
var (
	globalRegistry *Registry
	globalErr      error
	initOnce       sync.Once
)

// Get returns the default registry (built-in term lists, default
// thresholds). The automaton build cannot fail on the built-in lists; a
// failure here indicates a broken build and panics.
func Get() *Registry {
	initOnce.Do(func() {
		lex, err := lexicon.New()
		if err != nil {
			globalErr = err
			return
		}
		globalRegistry = NewRegistry(complaint.DefaultThresholds(), lex)
	})
	if globalErr != nil {
		panic("detect: built-in lexicon failed to build: " + globalErr.Error())
	}
	return globalRegistry
}

// NewRegistry builds a registry with explicit thresholds and lexicon.
func NewRegistry(th *complaint.Thresholds, lex *lexicon.Matcher) *Registry {
	if th == nil {
		th = complaint.DefaultThresholds()
	}
	r := &Registry{th: th, lex: lex}

	// Registration order is the reporting order of findings.
	r.register(&lexicalDetector{
		kind:     lexicon.KindProfanity,
		category: complaint.CategoryProfanity,
		label:    "욕설·저주",
		th:       th,
		lex:      lex,
	})
	r.register(newInsultDetector(th, lex))
	r.register(newViolenceDetector(th))
	r.register(newFearDetector(th))
	r.register(&lexicalDetector{
		kind:     lexicon.KindSexualHarassment,
		category: complaint.CategorySexualHarassment,
		label:    "외설·성희롱",
		th:       th,
		lex:      lex,
	})
	r.register(&lexicalDetector{
		kind:     lexicon.KindHateSpeech,
		category: complaint.CategoryHateSpeech,
		label:    "혐오",
		th:       th,
		lex:      lex,
	})
	r.register(newRepetitionDetector(th))
	r.register(newDemandDetector(th))
	r.register(newIrrelevanceDetector(th))
	r.register(newPrankDetector(th))
	r.register(newFalseComplaintDetector(th))
	r.register(newUnfairnessDetector(th))

	return r
}

func (r *Registry) register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// Thresholds exposes the registry's active threshold set.
func (r *Registry) Thresholds() *complaint.Thresholds {
	return r.th
}

// ClassifyText runs every detector over one utterance. Context carries the
// prior turns of the session for context-aware detectors; nil or empty means
// single-turn classification. A clean utterance yields a nil slice.
//
// The call is a pure function of (text, context): no detector retains state,
// so concurrent calls over independent inputs need no coordination.
func (r *Registry) ClassifyText(text string, context []string) []complaint.Finding {
	t := textnorm.Normalize(text)
	if t.Blank() {
		return nil
	}

	var findings []complaint.Finding
	for _, d := range r.detectors {
		f := d.Detect(t, context)
		if f == nil {
			continue
		}
		f.Confidence = clampConfidence(f.Confidence)
		findings = append(findings, *f)
	}
	return findings
}

// DetectorCount returns the number of registered detectors.
func (r *Registry) DetectorCount() int {
	return len(r.detectors)
}
