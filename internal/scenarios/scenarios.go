// Package scenarios builds the five single-pass reference scenarios run
// by cmd/demo: unanimous consensus, a 2-1 split, a coldkey-tier Sybil
// swarm, its stake-tier fallback counterpart, and a single PENDING
// response. The sixth, repeated accumulation, is UnanimousClean replayed
// by the caller. The package tests build their own fixtures.
//
// Grounded on the teacher's demo coordinator, which built fixed
// populations of simulated miners to drive the validator outside of a
// live network.
package scenarios

import (
	"github.com/veritas-net/validator-core/internal/netview"
	"github.com/veritas-net/validator-core/internal/types"
)

// Scenario bundles a statement, its miner responses, and the network
// view those responses should be evaluated against.
type Scenario struct {
	Name      string
	Statement types.Statement
	Responses []types.MinerResponse
	View      types.NetworkView
}

func uidPtr(u uint64) *uint64 { return &u }

// UnanimousClean is S1: three responses from three distinct coldkeys,
// all verdict TRUE, confidences 80/85/90, one reliable source each.
func UnanimousClean() Scenario {
	return Scenario{
		Name:      "unanimous-clean",
		Statement: "BTC will close above $60k this week",
		Responses: []types.MinerResponse{
			{MinerUID: uidPtr(1), Resolution: types.ResolutionTrue, Confidence: 80, Sources: []string{"coingecko.com"}},
			{MinerUID: uidPtr(2), Resolution: types.ResolutionTrue, Confidence: 85, Sources: []string{"coingecko.com"}},
			{MinerUID: uidPtr(3), Resolution: types.ResolutionTrue, Confidence: 90, Sources: []string{"coingecko.com"}},
		},
		View: netview.NewStatic(map[uint64]string{1: "ck1", 2: "ck2", 3: "ck3"}, nil, 10),
	}
}

// Split is S2: a 2-1 split between TRUE and FALSE across three
// distinct coldkeys.
func Split() Scenario {
	return Scenario{
		Name:      "split",
		Statement: "ETH merge will complete before Q3",
		Responses: []types.MinerResponse{
			{MinerUID: uidPtr(1), Resolution: types.ResolutionTrue, Confidence: 90},
			{MinerUID: uidPtr(2), Resolution: types.ResolutionTrue, Confidence: 70},
			{MinerUID: uidPtr(3), Resolution: types.ResolutionFalse, Confidence: 60},
		},
		View: netview.NewStatic(map[uint64]string{1: "ck1", 2: "ck2", 3: "ck3"}, nil, 10),
	}
}

// SybilSwarmColdkeyTier is S3: a 20-miner network where one coldkey
// controls 16 identical FALSE responses and four independent coldkeys
// vote TRUE.
func SybilSwarmColdkeyTier() Scenario {
	coldkeys := map[uint64]string{}
	responses := make([]types.MinerResponse, 0, 20)

	for i := uint64(1); i <= 16; i++ {
		coldkeys[i] = "attacker-x"
		responses = append(responses, types.MinerResponse{
			MinerUID:   uidPtr(i),
			Resolution: types.ResolutionFalse,
			Confidence: 95,
			Summary:    "Independent analysis confirms this claim will not come to pass",
		})
	}
	honest := []string{"honest-a", "honest-b", "honest-c", "honest-d"}
	for idx, i := 0, uint64(17); i <= 20; i, idx = i+1, idx+1 {
		coldkeys[i] = honest[idx]
		responses = append(responses, types.MinerResponse{
			MinerUID: uidPtr(i), Resolution: types.ResolutionTrue, Confidence: 70,
		})
	}

	return Scenario{
		Name:      "sybil-swarm-coldkey-tier",
		Statement: "A single entity can sway verdicts without detection",
		Responses: responses,
		View:      netview.NewStatic(coldkeys, nil, 20),
	}
}

// SybilSwarmStakeTier is S4: the same population as S3, but with
// coldkey metadata unavailable and the attackers sharing a single
// mid-range stake bucket instead.
func SybilSwarmStakeTier() Scenario {
	stakes := map[uint64]float64{}
	responses := make([]types.MinerResponse, 0, 20)

	for i := uint64(1); i <= 16; i++ {
		stakes[i] = 42.0
		responses = append(responses, types.MinerResponse{
			MinerUID: uidPtr(i), Resolution: types.ResolutionFalse, Confidence: 95,
		})
	}
	honestStakes := []float64{200, 250, 300, 350}
	for idx, i := 0, uint64(17); i <= 20; i, idx = i+1, idx+1 {
		stakes[i] = honestStakes[idx]
		responses = append(responses, types.MinerResponse{
			MinerUID: uidPtr(i), Resolution: types.ResolutionTrue, Confidence: 70,
		})
	}

	return Scenario{
		Name:      "sybil-swarm-stake-tier",
		Statement: "A single entity can sway verdicts without coldkey data",
		Responses: responses,
		View:      netview.NewStatic(nil, stakes, 0),
	}
}

// PendingCalibration is S5: a single PENDING response at 50 confidence.
func PendingCalibration() Scenario {
	return Scenario{
		Name:      "pending-calibration",
		Statement: "Outcome depends on an event that has not yet occurred",
		Responses: []types.MinerResponse{
			{MinerUID: uidPtr(1), Resolution: types.ResolutionPending, Confidence: 50},
		},
		View: netview.NewStatic(map[uint64]string{1: "ck1"}, nil, 5),
	}
}

// All returns the five single-pass scenarios in presentation order. S6
// (accumulation) is UnanimousClean replayed 101 times by the caller and
// has no distinct fixture of its own.
func All() []Scenario {
	return []Scenario{
		UnanimousClean(),
		Split(),
		SybilSwarmColdkeyTier(),
		SybilSwarmStakeTier(),
		PendingCalibration(),
	}
}
