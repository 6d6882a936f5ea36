// Package coordination implements the Coordination Detector (spec §4.2):
// given a group of responses known to share a coldkey, it returns a
// scalar penalty in [0,1] combining three mostly-orthogonal indicators
// of coordinated (Sybil) behavior.
//
// Grounded on original_source/validator/weights.py's
// _detect_response_coordination, translated from ad-hoc list
// accumulation into three named, independently testable indicator
// functions.
package coordination

import (
	"math"
	"strings"

	"github.com/veritas-net/validator-core/internal/similarity"
	"github.com/veritas-net/validator-core/internal/types"
)

const (
	verdictAgreementThreshold  = 0.9
	verdictAgreementWeight     = 0.4
	confidenceVarianceCutoff   = 5.0
	confidenceVarianceWeight   = 0.3
	summarySimilarityThreshold = 0.7
	summarySimilarityWeight    = 0.3

	// DetectedThreshold is the penalty above which a group is considered
	// "detected" for logging purposes only; it has no effect on scoring.
	DetectedThreshold = 0.3
)

// Penalty computes the coordination penalty for a group of responses
// believed to share a single coldkey. Groups of fewer than two responses
// can't exhibit coordination and always score 0.
func Penalty(group []types.MinerResponse) float64 {
	if len(group) < 2 {
		return 0.0
	}

	var score float64
	score += verdictAgreementContribution(group)
	score += confidenceVarianceContribution(group)
	score += summarySimilarityContribution(group)

	if score > 1.0 {
		return 1.0
	}
	return score
}

// Detected reports whether a previously computed penalty crosses the
// logging threshold used to flag a group as suspicious.
func Detected(penalty float64) bool {
	return penalty > DetectedThreshold
}

func verdictAgreementContribution(group []types.MinerResponse) float64 {
	first := group[0].Resolution
	agree := 0
	for _, r := range group {
		if r.Resolution == first {
			agree++
		}
	}
	agreement := float64(agree) / float64(len(group))
	if agreement < verdictAgreementThreshold {
		return 0
	}
	return verdictAgreementWeight * agreement
}

func confidenceVarianceContribution(group []types.MinerResponse) float64 {
	mean := 0.0
	for _, r := range group {
		mean += r.Confidence
	}
	mean /= float64(len(group))

	var variance float64
	for _, r := range group {
		d := r.Confidence - mean
		variance += d * d
	}
	variance /= float64(len(group))
	stdDev := math.Sqrt(variance)

	if stdDev >= confidenceVarianceCutoff {
		return 0
	}
	return confidenceVarianceWeight * (1 - stdDev/confidenceVarianceCutoff)
}

func summarySimilarityContribution(group []types.MinerResponse) float64 {
	summaries := make([]string, len(group))
	for i, r := range group {
		summaries[i] = strings.ToLower(r.Summary)
	}
	sim := similarity.PairwiseMeanSimilarity(summaries)
	if sim <= summarySimilarityThreshold {
		return 0
	}
	return summarySimilarityWeight * sim
}
