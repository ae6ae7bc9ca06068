package match

import (
	"strings"

	"github.com/screensentry/platform/internal/ocr"
)

// FuzzyThreshold is the minimum similarity ratio for fuzzy matches.
const FuzzyThreshold = 0.6

// Match is a fragment accepted against a target under the active mode.
// One fragment may yield several matches, one per satisfied target; they
// are not deduplicated.
type Match struct {
	Fragment   ocr.Fragment `json:"fragment"`
	Pattern    string       `json:"pattern"`
	Note       string       `json:"note"`
	Mode       Mode         `json:"-"`
	ModeLabel  string       `json:"mode"`
	Confidence int          `json:"confidence"`
}

// Find returns every fragment/target pairing that satisfies the mode's
// predicate. Fragments below the confidence threshold or with empty
// trimmed text never match. An empty target set yields an empty result.
func Find(fragments []ocr.Fragment, targets []Target, mode Mode, threshold int) []Match {
	if len(targets) == 0 {
		return nil
	}

	var matches []Match
	for _, f := range fragments {
		if f.Confidence < threshold {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(f.Text))
		if text == "" {
			continue
		}

		for _, t := range targets {
			if t.Pattern == "" {
				continue
			}
			if !accepts(mode, text, t.Pattern) {
				continue
			}
			matches = append(matches, Match{
				Fragment:   f,
				Pattern:    t.Pattern,
				Note:       t.Note,
				Mode:       mode,
				ModeLabel:  mode.String(),
				Confidence: f.Confidence,
			})
		}
	}
	return matches
}

// accepts applies the mode predicate to a lowercased text/pattern pair.
func accepts(mode Mode, text, pattern string) bool {
	switch mode {
	case ModeExact:
		return text == pattern
	case ModeContains:
		// Symmetric containment: either string may be the longer one.
		return strings.Contains(text, pattern) || strings.Contains(pattern, text)
	case ModeFuzzy:
		return Similarity(text, pattern) >= FuzzyThreshold
	default:
		return false
	}
}
