// Package similarity scores how closely a raw cut name matches a candidate
// name. Both inputs are fold-normalized before comparison, so matching is
// insensitive to case, diacritics (Hebrew niqqud included) and extra
// whitespace.
package similarity

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops combining marks and recomposes
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes a string for comparison and lookup: diacritics stripped,
// consecutive whitespace collapsed to single spaces, trimmed, lower-cased.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw input
		folded = s
	}

	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Scorer computes a similarity score in [0,1] between two strings.
// Implementations must be pure and safe for concurrent use.
type Scorer interface {
	Score(a, b string) float64
}

// Engine is the default scorer. It takes the maximum of a token-set overlap
// signal (same words, different order) and an edit-distance signal (same
// word, minor typo), so either kind of near-match ranks equally well.
type Engine struct{}

// NewEngine creates the default similarity scorer
func NewEngine() *Engine {
	return &Engine{}
}

// Score returns the similarity between a and b after fold-normalization
func (e *Engine) Score(a, b string) float64 {
	fa := Fold(a)
	fb := Fold(b)

	if fa == "" || fb == "" {
		return 0.0
	}

	if fa == fb {
		return 1.0
	}

	score := tokenSetOverlap(fa, fb)
	if edit := editSimilarity(fa, fb); edit > score {
		score = edit
	}

	return clamp01(score)
}

// tokenSetOverlap is the Jaccard index over whitespace-separated tokens
func tokenSetOverlap(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}

	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// editSimilarity is 1 minus the Levenshtein distance normalized by the
// longer input's rune length
func editSimilarity(a, b string) float64 {
	distance := edlib.LevenshteinDistance(a, b)

	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 0.0
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// JaroWinklerScorer is an alternative scorer that weights matching prefixes
// heavily. Useful for autocomplete-style queries where users get the start
// of the name right.
type JaroWinklerScorer struct{}

// Score returns the Jaro-Winkler similarity between a and b after
// fold-normalization
func (s *JaroWinklerScorer) Score(a, b string) float64 {
	fa := Fold(a)
	fb := Fold(b)

	if fa == "" || fb == "" {
		return 0.0
	}

	if fa == fb {
		return 1.0
	}

	return clamp01(float64(edlib.JaroWinklerSimilarity(fa, fb)))
}
