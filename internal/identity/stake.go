package identity

import (
	"math"

	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/types"
)

const (
	stakeBucketMinSuspicious = 15
	stakeBucketMaxSuspicious = 100
	stakeGroupMinSize        = 15
	stakeKeepFraction        = 0.15
	stakeMinKeep             = 1
)

// StakeBucketFilter is the fallback anti-Sybil filter used when coldkey
// metadata is unavailable (ColdkeyCap returned types.ErrNoColdkeyData).
// Responses are bucketed by floor(stake); a bucket is suspicious when its
// index falls in [15,100] and it holds at least 15 responses, in which
// case it is downsampled to max(1, floor(0.15*|bucket|)) members chosen
// uniformly at random via src. Responses with no stake entry fall into
// bucket 0, which is never suspicious by construction.
//
// Returns types.ErrNoStakeData if view has no stake side-table at all,
// signaling the caller to skip straight to unfiltered (basic tier)
// consensus.
func StakeBucketFilter(responses []types.MinerResponse, view types.NetworkView, src prng.Source) ([]types.MinerResponse, error) {
	if !view.HasStakes() {
		return nil, types.ErrNoStakeData
	}

	buckets := make(map[int][]types.MinerResponse)
	order := make([]int, 0)
	var passthrough []types.MinerResponse

	for _, r := range responses {
		bucket := 0
		if uid, ok := r.UID(); ok {
			if stake, ok := view.StakeOf(uid); ok {
				bucket = int(math.Floor(stake))
			}
		} else {
			passthrough = append(passthrough, r)
			continue
		}
		if _, seen := buckets[bucket]; !seen {
			order = append(order, bucket)
		}
		buckets[bucket] = append(buckets[bucket], r)
	}

	result := make([]types.MinerResponse, 0, len(responses))
	result = append(result, passthrough...)

	for _, bucket := range order {
		group := buckets[bucket]
		suspicious := bucket >= stakeBucketMinSuspicious && bucket <= stakeBucketMaxSuspicious && len(group) >= stakeGroupMinSize
		if !suspicious {
			result = append(result, group...)
			continue
		}

		keep := int(math.Floor(stakeKeepFraction * float64(len(group))))
		if keep < stakeMinKeep {
			keep = stakeMinKeep
		}
		indices := prng.SampleIndices(src, len(group), keep)
		for _, idx := range indices {
			result = append(result, group[idx])
		}
	}

	return result, nil
}
