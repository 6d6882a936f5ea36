package identity

import (
	"math"
	"sort"

	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/types"
)

const (
	volumeSuspicionThreshold = 15
	volumeKeepFraction       = 0.20
	volumeMinKeep            = 2
)

// VolumeFilter re-groups survivors (post-ColdkeyCap) by coldkey. Any
// coldkey still contributing at least 15 responses is labeled suspicious
// and downsampled to max(2, floor(0.20*|group|)) members, chosen
// uniformly at random via src. Non-suspicious groups pass through
// untouched.
//
// Only meaningful when view has coldkey data; callers should skip this
// filter when view.HasColdkeys() is false.
func VolumeFilter(responses []types.MinerResponse, view types.NetworkView, src prng.Source) []types.MinerResponse {
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

	result := make([]types.MinerResponse, 0, len(responses))
	result = append(result, passthrough...)

	for _, coldkey := range order {
		group := groups[coldkey]
		if len(group) < volumeSuspicionThreshold {
			result = append(result, group...)
			continue
		}

		keep := int(math.Floor(volumeKeepFraction * float64(len(group))))
		if keep < volumeMinKeep {
			keep = volumeMinKeep
		}
		indices := prng.SampleIndices(src, len(group), keep)
		sort.Ints(indices)
		for _, idx := range indices {
			result = append(result, group[idx])
		}
	}

	return result
}
