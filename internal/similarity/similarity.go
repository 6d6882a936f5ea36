// Package similarity implements the token-set Jaccard similarity
// primitives used by the coordination detector to spot copy-pasted miner
// summaries.
//
// Grounded on kokistudios/CARD's internal/capsule similarity helpers:
// same lowercase-and-split-on-whitespace approach to building token
// sets, same intersection/union Jaccard formula.
package similarity

import "strings"

// Jaccard returns the token-set Jaccard similarity of a and b: each text
// is split on whitespace into a set of lowercase tokens, and the result
// is |A∩B| / |A∪B|.
//
// Two empty texts are defined to be identical (returns 1.0); one empty
// and one non-empty text share nothing (returns 0.0).
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// PairwiseMeanSimilarity computes Jaccard over every unordered pair of
// texts and returns the arithmetic mean. With fewer than two non-empty
// texts supplied, it returns 0.0.
func PairwiseMeanSimilarity(texts []string) float64 {
	nonEmpty := 0
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return 0.0
	}

	var sum float64
	count := 0
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			sum += Jaccard(texts[i], texts[j])
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// tokenSet lowercases text and splits it on whitespace into a set of
// tokens, deduplicating as it goes.
func tokenSet(text string) map[string]bool {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
