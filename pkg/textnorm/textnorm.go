// Package textnorm normalizes Korean utterances for pattern matching.
//
// Two views of the text are produced from one pass:
//   - Folded: NFKC + width-folded + lowercased, spacing and punctuation kept.
//     Template detectors run their regexes against this view.
//   - Compact: the folded runes with punctuation, spacing and symbols removed
//     and common leet substitutions undone, plus an index map back to the
//     original runes. Lexicon matching runs against this view so that
//     obfuscations like "씨.발" or spaced-out terms still hit, and matched
//     spans can be reported verbatim from the original text.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Text is the normalized form of one utterance.
type Text struct {
	Original string
	Folded   string // NFKC, width-folded, lowercased; spacing preserved

	Compact []rune // folded runes minus noise, leet-simplified
	OrigIdx []int  // Compact index -> original rune index

	origRunes []rune
}

// Normalize builds both views of the input. Safe for concurrent use of the
// result; a Text is never mutated after construction.
func Normalize(s string) *Text {
	t := &Text{
		Original:  s,
		origRunes: []rune(s),
	}
	t.Folded = strings.ToLower(norm.NFKC.String(width.Fold.String(s)))

	t.Compact = make([]rune, 0, len(t.origRunes))
	t.OrigIdx = make([]int, 0, len(t.origRunes))
	for i, r := range t.origRunes {
		// Per-rune folding keeps the index map exact even when NFKC
		// expands a rune into several.
		for _, fr := range norm.NFKC.String(width.Fold.String(string(r))) {
			clean := simplifyRune(unicode.ToLower(fr))
			if isNoise(clean) {
				continue
			}
			t.Compact = append(t.Compact, clean)
			t.OrigIdx = append(t.OrigIdx, i)
		}
	}
	return t
}

// NormalizeTerm normalizes a lexicon term through the same compact pipeline,
// so terms and utterances always meet in the same alphabet.
func NormalizeTerm(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range norm.NFKC.String(width.Fold.String(s)) {
		clean := simplifyRune(unicode.ToLower(r))
		if isNoise(clean) {
			continue
		}
		out = append(out, clean)
	}
	return out
}

// Span recovers the original substring covered by Compact[start:end].
func (t *Text) Span(start, end int) string {
	if start < 0 || end > len(t.OrigIdx) || start >= end {
		return ""
	}
	origStart := t.OrigIdx[start]
	origEnd := t.OrigIdx[end-1] + 1
	return string(t.origRunes[origStart:origEnd])
}

// Blank reports whether the utterance is empty or whitespace-only.
func (t *Text) Blank() bool {
	return strings.TrimSpace(t.Original) == ""
}

// RuneLen returns the compact rune count, used for coverage-based confidence.
func (t *Text) RuneLen() int {
	return len(t.Compact)
}

// Clauses splits the folded text on sentence-ending punctuation. Threat
// escalation rules look at verb/target co-occurrence within one clause.
func (t *Text) Clauses() []string {
	parts := strings.FieldsFunc(t.Folded, func(r rune) bool {
		switch r {
		case '.', '!', '?', '\n', '…', ';':
			return true
		}
		return false
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// KeyPhrases extracts the word tokens (two or more runes) of the folded text
// as a set. Used for cross-turn repetition overlap.
func KeyPhrases(s string) map[string]struct{} {
	folded := strings.ToLower(norm.NFKC.String(width.Fold.String(s)))
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(folded) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if len([]rune(tok)) >= 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Overlap returns the shared-token ratio of two key-phrase sets, scaled by
// the smaller set. Zero when either set is empty.
func Overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	shared := 0
	for tok := range smaller {
		if _, ok := larger[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(smaller))
}

// simplifyRune maps common leet substitutions back to their letters so that
// "pa$$" or "씨1발"-style obfuscations normalize consistently on both the
// term and utterance side.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters dropped from the compact view.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
