package faq

import (
	"regexp"
	"strings"
)

// Anything that is not an ASCII digit/letter, a Hangul syllable or
// whitespace separates words.
var nonWordPattern = regexp.MustCompile(`[^0-9a-z\x{AC00}-\x{D7A3}\s]`)

// WordSet lowercases text, turns punctuation into separators and returns the
// distinct words. Repeated words count once.
func WordSet(text string) map[string]struct{} {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// SimilarityScore is the Jaccard similarity of the word sets of a and b.
// It is symmetric and returns 0 when either side has no words, so two blank
// strings never count as a match.
func SimilarityScore(a, b string) float64 {
	setA := WordSet(a)
	setB := WordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	// iterate the smaller set
	if len(setA) > len(setB) {
		setA, setB = setB, setA
	}
	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
