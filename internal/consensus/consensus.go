// Package consensus implements the weighted verdict fusion step
// (spec.md §4.6): given a set of admitted responses, it produces a
// single consensus resolution and confidence by summing each verdict's
// normalized-confidence weight and taking the argmax.
//
// Grounded on original_source/validator/weights.py's
// _calculate_weighted_consensus, with the map-iteration tie-break
// replaced by an explicit ordered verdict domain so the result is
// deterministic regardless of Go's randomized map order.
package consensus

import "github.com/veritas-net/validator-core/internal/types"

// Result is the fused outcome of a consensus pass over a set of
// responses, before per-response scoring is attached. Confidence is the
// mean raw confidence of the survivors whose verdict agrees with the
// winning resolution, not the weighted vote total itself.
type Result struct {
	Resolution types.Resolution
	Confidence float64
	Weights    map[types.Resolution]float64
	Sources    []string
}

// Compute fuses responses into a single weighted consensus: each
// verdict accumulates Σ(confidence/100) from responses naming it, and
// the verdict with the highest accumulated weight wins, with ties
// broken by the fixed ordering of types.Resolutions rather than map
// iteration order. Responses with an invalid resolution are ignored.
// If no response survives, Result.Resolution is types.ResolutionPending
// with zero confidence.
func Compute(responses []types.MinerResponse) Result {
	weights := make(map[types.Resolution]float64, len(types.Resolutions))
	for _, v := range types.Resolutions {
		weights[v] = 0
	}

	seenSources := make(map[string]bool)
	var sources []string

	any := false
	for _, r := range responses {
		if !r.Resolution.Valid() {
			continue
		}
		any = true
		weights[r.Resolution] += r.Confidence / 100.0
		for _, s := range r.Sources {
			if s == "" || seenSources[s] {
				continue
			}
			seenSources[s] = true
			sources = append(sources, s)
		}
	}

	if !any {
		return Result{Resolution: types.ResolutionPending, Confidence: 0, Weights: weights, Sources: sources}
	}

	winner := types.Resolutions[0]
	for _, v := range types.Resolutions[1:] {
		if weights[v] > weights[winner] {
			winner = v
		}
	}

	var sum float64
	var count int
	for _, r := range responses {
		if !r.Resolution.Valid() || r.Resolution != winner {
			continue
		}
		sum += r.Confidence
		count++
	}
	confidence := 0.0
	if count > 0 {
		confidence = sum / float64(count)
	}

	return Result{Resolution: winner, Confidence: confidence, Weights: weights, Sources: sources}
}
