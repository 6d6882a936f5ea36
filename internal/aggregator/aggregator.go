// Package aggregator implements the single public entry point of the
// consensus core (spec.md §4.8): calculate_consensus, which drives the
// tiered anti-Sybil filter chain, runs weighted consensus, scores every
// valid response, and folds the normalized scores into a rolling
// per-miner window.
//
// Grounded on original_source/validator/weights.py's WeightsCalculator
// class, split into small top-level functions plus one small mutable
// accumulator type instead of one class holding everything.
package aggregator

import (
	"sync"

	"github.com/veritas-net/validator-core/internal/consensus"
	"github.com/veritas-net/validator-core/internal/identity"
	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/scoring"
	"github.com/veritas-net/validator-core/internal/types"
)

const (
	accumulatorWindow   = 100
	maxConsensusSources = 10
)

// TierEvent is emitted via OnTierSelected whenever an aggregation pass
// picks a filtering tier, letting callers observe the permissive basic
// tier (spec.md §9 Open Question) without the core refusing to produce
// a verdict.
type TierEvent struct {
	Statement types.Statement
	Tier      types.Tier
}

// Aggregator is the WeightsCalculator of spec.md §4.8: it owns the
// score accumulator for the process lifetime and exposes Calculate and
// MinerScores. Construct with New; the zero value is not usable because
// its scorer is nil and its window map is unallocated.
type Aggregator struct {
	scorer Scorer
	source prng.Source

	mu             sync.Mutex
	windows        map[uint64][]float64
	OnTierSelected func(TierEvent)
}

// Scorer is the subset of scoring.Scorer's surface the aggregator
// depends on, so tests can substitute a stub scorer if desired.
type Scorer interface {
	Score(response types.MinerResponse, consensusResolution *types.Resolution, peers []types.MinerResponse) float64
}

// New builds an Aggregator with the given scorer config and pseudo-random
// source. The source drives the identity-volume and stake-bucket
// subsampling filters and must not be shared with a process-global
// generator per spec.md's determinism requirement.
func New(cfg types.ScorerConfig, source prng.Source) *Aggregator {
	s := scoring.New(cfg)
	return &Aggregator{
		scorer:  s,
		source:  source,
		windows: make(map[uint64][]float64),
	}
}

// Calculate runs one full aggregation pass over responses for statement,
// consulting view for identity and stake metadata. It never returns an
// error: every recoverable fault is absorbed via tier demotion per §7.
func (a *Aggregator) Calculate(statement types.Statement, responses []types.MinerResponse, view types.NetworkView) types.ValidationResult {
	valid := make([]types.MinerResponse, 0, len(responses))
	for _, r := range responses {
		if r.IsValid() {
			valid = append(valid, r)
		}
	}

	survivors, tier := a.filter(valid, view)
	if a.OnTierSelected != nil {
		a.OnTierSelected(TierEvent{Statement: statement, Tier: tier})
	}

	result := consensus.Compute(survivors)

	var consensusPtr *types.Resolution
	if len(survivors) > 0 {
		r := result.Resolution
		consensusPtr = &r
	}

	rawScores := make(map[uint64]float64, len(valid))
	for _, r := range valid {
		uid, ok := r.UID()
		if !ok {
			continue
		}
		rawScores[uid] = a.scorer.Score(r, consensusPtr, valid)
	}

	normalized := normalize(rawScores)

	a.record(normalized)

	sources := result.Sources
	if len(sources) > maxConsensusSources {
		sources = sources[:maxConsensusSources]
	}

	return types.ValidationResult{
		ConsensusResolution: result.Resolution,
		ConsensusConfidence: result.Confidence,
		TotalResponses:      len(responses),
		ValidResponses:      len(valid),
		MinerScores:         normalized,
		ConsensusSources:    sources,
	}
}

// filter runs the tiered anti-Sybil chain described in §4.8 step 2:
// coldkey cap -> volume filter when coldkey data exists, falling back
// to the stake-bucket filter, falling back to the unfiltered basic
// tier when neither metadata side-table is available.
func (a *Aggregator) filter(valid []types.MinerResponse, view types.NetworkView) ([]types.MinerResponse, types.Tier) {
	capped, err := identity.ColdkeyCap(valid, view)
	if err == nil {
		survivors := identity.VolumeFilter(capped, view, a.source)
		return survivors, types.TierColdkey
	}

	bucketed, err := identity.StakeBucketFilter(valid, view, a.source)
	if err == nil {
		return bucketed, types.TierStake
	}

	return valid, types.TierBasic
}

// record appends each entry of normalized to its miner's rolling
// window, truncating to the last accumulatorWindow entries. Guards the
// shared window map so an Aggregator may be driven by concurrent
// aggregation passes.
func (a *Aggregator) record(normalized map[uint64]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for uid, score := range normalized {
		window := append(a.windows[uid], score)
		if len(window) > accumulatorWindow {
			window = window[len(window)-accumulatorWindow:]
		}
		a.windows[uid] = window
	}
}

// MinerScores collapses each miner's rolling window to its arithmetic
// mean and renormalizes the resulting vector. Returns an empty map if
// the accumulator holds no entries yet.
func (a *Aggregator) MinerScores() map[uint64]float64 {
	a.mu.Lock()
	means := make(map[uint64]float64, len(a.windows))
	for uid, window := range a.windows {
		if len(window) == 0 {
			continue
		}
		var sum float64
		for _, v := range window {
			sum += v
		}
		means[uid] = sum / float64(len(window))
	}
	a.mu.Unlock()

	return normalize(means)
}

// normalize divides every entry of scores by their sum; if the sum is
// zero (including the empty map), every entry is replaced with the
// uniform weight 1/len(scores). normalize never mutates its input.
func normalize(scores map[uint64]float64) map[uint64]float64 {
	out := make(map[uint64]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	var sum float64
	for _, v := range scores {
		sum += v
	}

	if sum > 0 {
		for uid, v := range scores {
			out[uid] = v / sum
		}
		return out
	}

	uniform := 1.0 / float64(len(scores))
	for uid := range scores {
		out[uid] = uniform
	}
	return out
}
