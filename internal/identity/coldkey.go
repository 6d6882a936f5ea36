// Package identity implements the three tiered anti-Sybil filters from
// spec.md §4.3-§4.5: the per-coldkey population cap, the cross-identity
// volume filter, and the stake-bucket fallback filter.
//
// Grounded on original_source/validator/weights.py's
// _apply_coldkey_consensus_cap / _detect_cross_coldkey_similarity /
// _apply_stake_based_protection, translated into small single-purpose
// functions instead of one long method each doing grouping, penalty
// application, and selection together.
package identity

import (
	"math"
	"sort"

	"github.com/veritas-net/validator-core/internal/coordination"
	"github.com/veritas-net/validator-core/internal/types"
)

const coldkeyCapFraction = 0.07

// ColdkeyCap groups responses by coldkey and caps each group's influence
// to 7% of the network, attenuating confidence within any multi-member
// group via the coordination detector before the cap is enforced.
//
// Responses whose UID or coldkey cannot be resolved bypass the cap
// unchanged. Returns types.ErrNoColdkeyData if view has no coldkey
// side-table at all, signaling the caller to demote to the stake tier.
func ColdkeyCap(responses []types.MinerResponse, view types.NetworkView) ([]types.MinerResponse, error) {
	if !view.HasColdkeys() {
		return nil, types.ErrNoColdkeyData
	}

	networkSize := view.NetworkSize()
	if networkSize <= 0 {
		networkSize = len(responses)
	}
	cap := int(math.Floor(coldkeyCapFraction * float64(networkSize)))
	if cap < 1 {
		cap = 1
	}

	groups := make(map[string][]types.MinerResponse)
	order := make([]string, 0)
	var passthrough []types.MinerResponse

	for _, r := range responses {
		uid, ok := r.UID()
		if !ok {
			passthrough = append(passthrough, r)
			continue
		}
		coldkey, ok := view.ColdkeyOf(uid)
		if !ok {
			passthrough = append(passthrough, r)
			continue
		}
		if _, seen := groups[coldkey]; !seen {
			order = append(order, coldkey)
		}
		groups[coldkey] = append(groups[coldkey], r)
	}

	admitted := make([]types.MinerResponse, 0, len(responses))
	admitted = append(admitted, passthrough...)

	for _, coldkey := range order {
		group := groups[coldkey]
		if len(group) > 1 {
			penalty := coordination.Penalty(group)
			if penalty > 0 {
				for i, r := range group {
					group[i] = r.WithConfidence(attenuate(r.Confidence, penalty))
				}
			}
		}

		if len(group) <= cap {
			admitted = append(admitted, group...)
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Confidence > group[j].Confidence
		})
		admitted = append(admitted, group[:cap]...)
	}

	return admitted, nil
}

// attenuate implements the §4.3 step-3 formula: conf <- max(25, conf*(1-penalty)).
func attenuate(confidence, penalty float64) float64 {
	attenuated := confidence * (1 - penalty)
	if attenuated < 25 {
		return 25
	}
	return attenuated
}
