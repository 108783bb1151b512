// Package lexicon provides curated-term matching for the lexical complaint
// categories (profanity, hate speech, sexual harassment).
//
// Terms and utterances are both pushed through the same compact
// normalization (textnorm), then matched with an Aho-Corasick automaton so a
// single scan finds every term regardless of spacing, punctuation, case or
// leet obfuscation. Matched spans are recovered from the original text for
// evidence reporting.
package lexicon

import (
	"fmt"
	"sort"

	goahocorasick "github.com/anknown/ahocorasick"

	"github.com/minwonlab/sentinel/pkg/textnorm"
)

// Kind identifies one curated term list.
type Kind string

const (
	KindProfanity        Kind = "profanity"
	KindHateSpeech       Kind = "hate_speech"
	KindSexualHarassment Kind = "sexual_harassment"
)

// Match is one lexicon hit inside an utterance.
type Match struct {
	Kind Kind
	Term string // normalized term that matched
	Span string // verbatim span from the original text
	Pos  int    // compact rune offset
}

// Matcher holds one automaton per term list. Immutable after construction
// and safe for concurrent use.
type Matcher struct {
	machines map[Kind]*goahocorasick.Machine
}

// New builds a matcher over the built-in term lists.
func New() (*Matcher, error) {
	return NewFromLists(builtinTerms())
}

// NewFromLists builds a matcher from explicit term lists, normalizing every
// term through the compact pipeline. Empty lists are skipped.
func NewFromLists(lists map[Kind][]string) (*Matcher, error) {
	m := &Matcher{machines: make(map[Kind]*goahocorasick.Machine)}
	for kind, terms := range lists {
		patterns := make([][]rune, 0, len(terms))
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			norm := textnorm.NormalizeTerm(term)
			if len(norm) == 0 || seen[string(norm)] {
				continue
			}
			seen[string(norm)] = true
			patterns = append(patterns, norm)
		}
		if len(patterns) == 0 {
			continue
		}
		// The double-array trie wants its dictionary sorted.
		sort.Slice(patterns, func(i, j int) bool {
			return string(patterns[i]) < string(patterns[j])
		})
		machine := new(goahocorasick.Machine)
		if err := machine.Build(patterns); err != nil {
			return nil, fmt.Errorf("build %s automaton: %w", kind, err)
		}
		m.machines[kind] = machine
	}
	return m, nil
}

// Scan returns every term of the given kind found in the normalized text.
func (m *Matcher) Scan(t *textnorm.Text, kind Kind) []Match {
	machine, ok := m.machines[kind]
	if !ok || len(t.Compact) == 0 {
		return nil
	}
	terms := machine.MultiPatternSearch(t.Compact, false)
	if len(terms) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(terms))
	for _, hit := range terms {
		start := hit.Pos
		end := start + len(hit.Word)
		if start < 0 || end > len(t.OrigIdx) {
			continue
		}
		matches = append(matches, Match{
			Kind: kind,
			Term: string(hit.Word),
			Span: t.Span(start, end),
			Pos:  start,
		})
	}
	return matches
}

// Contains reports whether the text holds at least one term of the kind.
// Cheaper to read at call sites that only need co-location checks.
func (m *Matcher) Contains(t *textnorm.Text, kind Kind) bool {
	return len(m.Scan(t, kind)) > 0
}
