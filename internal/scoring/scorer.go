// Package scoring implements the per-response scorer (spec.md §4.7): a
// configurable convex combination of four sub-scores that grades a
// single response against the consensus verdict and its peers.
//
// Grounded on original_source/validator/weights.py's
// _calculate_response_score and its four _score_* helpers, kept as
// separate named methods on Scorer rather than one long function.
package scoring

import (
	"strings"

	"github.com/veritas-net/validator-core/internal/types"
)

const (
	sourceCountSaturation    = 3.0
	reliableSourceSaturation = 2.0
	consistencyPeerThreshold = 80.0
)

// reliableSources is the §6 reliable-source dictionary: lowercase
// substrings whose presence in a source string counts it as reliable.
var reliableSources = []string{
	"coingecko",
	"coinmarketcap",
	"yahoo",
	"bloomberg",
	"reuters",
	"binance",
	"coinbase",
	"kraken",
}

// Scorer grades individual responses against a known consensus verdict
// using the four weighted sub-scores. The weights are renormalized at
// construction so they always sum to 1.
type Scorer struct {
	accuracyWeight      float64
	confidenceWeight    float64
	consistencyWeight   float64
	sourceQualityWeight float64
}

// New builds a Scorer from cfg, renormalizing the four weights to sum
// to 1. If all four weights are zero, New substitutes the documented
// defaults.
func New(cfg types.ScorerConfig) Scorer {
	sum := cfg.AccuracyWeight + cfg.ConfidenceWeight + cfg.ConsistencyWeight + cfg.SourceQualityWeight
	if sum <= 0 {
		cfg = types.DefaultScorerConfig()
		sum = cfg.AccuracyWeight + cfg.ConfidenceWeight + cfg.ConsistencyWeight + cfg.SourceQualityWeight
	}
	return Scorer{
		accuracyWeight:      cfg.AccuracyWeight / sum,
		confidenceWeight:    cfg.ConfidenceWeight / sum,
		consistencyWeight:   cfg.ConsistencyWeight / sum,
		sourceQualityWeight: cfg.SourceQualityWeight / sum,
	}
}

// Score grades response against consensus, using peers (the full valid
// response list, including response itself) for the consistency
// sub-score. Returns a scalar clamped to [0,1].
func (s Scorer) Score(response types.MinerResponse, consensus *types.Resolution, peers []types.MinerResponse) float64 {
	accuracy := accuracyScore(response, consensus)
	confidence := confidenceScore(response, consensus)
	consistency := consistencyScore(response, peers)
	sourceQuality := sourceQualityScore(response)

	total := s.accuracyWeight*accuracy +
		s.confidenceWeight*confidence +
		s.consistencyWeight*consistency +
		s.sourceQualityWeight*sourceQuality

	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

func accuracyScore(response types.MinerResponse, consensus *types.Resolution) float64 {
	if consensus == nil {
		return 0.5
	}
	// A PENDING verdict never claims agreement with the crowd, even when
	// the crowd itself landed on PENDING: it reported no real resolution,
	// so it is scored as neutral rather than correct.
	if response.Resolution == types.ResolutionPending {
		return 0.5
	}
	if response.Resolution == *consensus {
		return 1.0
	}
	return 0.0
}

func confidenceScore(response types.MinerResponse, consensus *types.Resolution) float64 {
	c := response.Confidence / 100.0
	// Mirrors accuracyScore's branch order: a PENDING verdict is always
	// graded on calibration around 0.5, even when the consensus itself
	// landed on PENDING.
	if response.Resolution == types.ResolutionPending {
		d := c - 0.5
		if d < 0 {
			d = -d
		}
		return 1 - d
	}
	if consensus != nil && response.Resolution == *consensus {
		return c
	}
	return 1 - c
}

func consistencyScore(response types.MinerResponse, peers []types.MinerResponse) float64 {
	var highConfidencePeers []types.MinerResponse
	for _, p := range peers {
		if samePeer(p, response) {
			continue
		}
		if p.Confidence > consistencyPeerThreshold {
			highConfidencePeers = append(highConfidencePeers, p)
		}
	}
	if len(highConfidencePeers) == 0 {
		return 1.0
	}
	agree := 0
	for _, p := range highConfidencePeers {
		if p.Resolution == response.Resolution {
			agree++
		}
	}
	return float64(agree) / float64(len(highConfidencePeers))
}

func samePeer(a, b types.MinerResponse) bool {
	aUID, aOK := a.UID()
	bUID, bOK := b.UID()
	if aOK && bOK {
		return aUID == bUID
	}
	return false
}

func sourceQualityScore(response types.MinerResponse) float64 {
	if len(response.Sources) == 0 {
		return 0.0
	}
	countScore := float64(len(response.Sources)) / sourceCountSaturation
	if countScore > 1 {
		countScore = 1
	}

	reliable := 0
	for _, src := range response.Sources {
		lower := strings.ToLower(src)
		for _, marker := range reliableSources {
			if strings.Contains(lower, marker) {
				reliable++
				break
			}
		}
	}
	reliabilityScore := float64(reliable) / reliableSourceSaturation
	if reliabilityScore > 1 {
		reliabilityScore = 1
	}

	return (countScore + reliabilityScore) / 2
}
