package aggregator

import (
	"math"
	"testing"

	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/types"
)

type stubView struct {
	coldkeys map[uint64]string
	stakes   map[uint64]float64
	size     int
}

func (v *stubView) ColdkeyOf(uid uint64) (string, bool) {
	if v.coldkeys == nil {
		return "", false
	}
	c, ok := v.coldkeys[uid]
	return c, ok
}

func (v *stubView) StakeOf(uid uint64) (float64, bool) {
	if v.stakes == nil {
		return 0, false
	}
	s, ok := v.stakes[uid]
	return s, ok
}

func (v *stubView) HasColdkeys() bool { return v.coldkeys != nil }
func (v *stubView) HasStakes() bool   { return v.stakes != nil }
func (v *stubView) NetworkSize() int  { return v.size }

func uid(u uint64) *uint64 { return &u }

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) < eps }

// --- S1: unanimous clean verdict ---

func TestCalculate_S1_UnanimousClean(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{1: "ck1", 2: "ck2", 3: "ck3"}, size: 10}
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 85, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(3), Resolution: types.ResolutionTrue, Confidence: 90, Sources: []string{"coingecko.com"}},
	}

	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))
	result := agg.Calculate("statement-1", responses, view)

	if result.ConsensusResolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE", result.ConsensusResolution)
	}
	if result.ConsensusConfidence != 85.0 {
		t.Errorf("confidence = %v, want 85.0", result.ConsensusConfidence)
	}
	var sum float64
	for _, score := range result.MinerScores {
		if score <= 0 {
			t.Errorf("expected non-zero score, got %v", score)
		}
		if score >= 1.0 {
			t.Errorf("each of three normalized scores should be strictly below 1, got %v", score)
		}
		sum += score
	}
	if !approxEqual(sum, 1.0, 1e-9) {
		t.Errorf("scores sum to %v, want 1.0", sum)
	}
}

// --- S2: split 2-1 ---

func TestCalculate_S2_Split(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{1: "ck1", 2: "ck2", 3: "ck3"}, size: 10}
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 90},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 70},
		{MinerUID: uid(3), Resolution: types.ResolutionFalse, Confidence: 60},
	}

	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))
	result := agg.Calculate("statement-2", responses, view)

	if result.ConsensusResolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE", result.ConsensusResolution)
	}
}

// --- S3: Sybil swarm, coldkey tier ---

func TestCalculate_S3_SybilSwarmColdkeyTier(t *testing.T) {
	coldkeys := map[uint64]string{}
	responses := make([]types.MinerResponse, 0, 20)

	for i := uint64(1); i <= 16; i++ {
		coldkeys[i] = "attacker-x"
		responses = append(responses, types.MinerResponse{
			MinerUID: uid(i), Resolution: types.ResolutionFalse, Confidence: 95,
			Summary: "Independent analysis confirms this claim will not come to pass",
		})
	}
	honestColdkeys := []string{"honest-a", "honest-b", "honest-c", "honest-d"}
	for idx, i := 0, uint64(17); i <= 20; i, idx = i+1, idx+1 {
		coldkeys[i] = honestColdkeys[idx]
		responses = append(responses, types.MinerResponse{
			MinerUID: uid(i), Resolution: types.ResolutionTrue, Confidence: 70,
		})
	}

	view := &stubView{coldkeys: coldkeys, size: 20}
	agg := New(types.DefaultScorerConfig(), prng.NewDefault(7))
	result := agg.Calculate("statement-3", responses, view)

	if result.ConsensusResolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE (Sybil cohort should be capped into irrelevance)", result.ConsensusResolution)
	}
}

// --- S4: Sybil swarm, stake-tier fallback ---

func TestCalculate_S4_SybilSwarmStakeTier(t *testing.T) {
	stakes := map[uint64]float64{}
	responses := make([]types.MinerResponse, 0, 20)

	for i := uint64(1); i <= 16; i++ {
		stakes[i] = 42.0
		responses = append(responses, types.MinerResponse{
			MinerUID: uid(i), Resolution: types.ResolutionFalse, Confidence: 95,
		})
	}
	honestStakes := []float64{200, 250, 300, 350}
	for idx, i := 0, uint64(17); i <= 20; i, idx = i+1, idx+1 {
		stakes[i] = honestStakes[idx]
		responses = append(responses, types.MinerResponse{
			MinerUID: uid(i), Resolution: types.ResolutionTrue, Confidence: 70,
		})
	}

	view := &stubView{stakes: stakes} // no coldkey table: forces stake-tier fallback
	agg := New(types.DefaultScorerConfig(), prng.NewDefault(3))

	var gotTier types.Tier
	agg.OnTierSelected = func(e TierEvent) { gotTier = e.Tier }

	result := agg.Calculate("statement-4", responses, view)

	if gotTier != types.TierStake {
		t.Fatalf("tier = %v, want stake (coldkey table absent)", gotTier)
	}
	if result.ConsensusResolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE", result.ConsensusResolution)
	}
}

// --- S5: PENDING calibration ---

func TestCalculate_S5_PendingCalibration(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{1: "ck1"}, size: 5}
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionPending, Confidence: 50},
	}

	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))
	result := agg.Calculate("statement-5", responses, view)

	if result.ConsensusResolution != types.ResolutionPending {
		t.Fatalf("resolution = %v, want PENDING", result.ConsensusResolution)
	}
	if score, ok := result.MinerScores[1]; !ok || !approxEqual(score, 1.0, 1e-9) {
		t.Errorf("lone miner should receive the full normalized weight, got %v (ok=%v)", score, ok)
	}
}

// --- S6: score accumulation ---

func TestCalculate_S6_AccumulatorTruncatesToWindow(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{1: "ck1", 2: "ck2", 3: "ck3"}, size: 10}
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 85, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(3), Resolution: types.ResolutionTrue, Confidence: 90, Sources: []string{"coingecko.com"}},
	}

	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))
	for i := 0; i < 101; i++ {
		agg.Calculate("statement-1", responses, view)
	}

	if len(agg.windows[1]) != accumulatorWindow {
		t.Fatalf("window length = %d, want %d", len(agg.windows[1]), accumulatorWindow)
	}

	scores := agg.MinerScores()
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if !approxEqual(sum, 1.0, 1e-9) {
		t.Errorf("miner scores sum to %v, want 1.0", sum)
	}
}

// --- Universal invariants ---

func TestInvariant_Determinism(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{1: "ck1", 2: "ck2"}, size: 10}
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80},
		{MinerUID: uid(2), Resolution: types.ResolutionFalse, Confidence: 60},
	}

	agg1 := New(types.DefaultScorerConfig(), prng.NewDefault(99))
	agg2 := New(types.DefaultScorerConfig(), prng.NewDefault(99))

	r1 := agg1.Calculate("s", responses, view)
	r2 := agg2.Calculate("s", responses, view)

	if r1.ConsensusResolution != r2.ConsensusResolution || r1.ConsensusConfidence != r2.ConsensusConfidence {
		t.Fatalf("non-deterministic results: %+v vs %+v", r1, r2)
	}
}

func TestInvariant_UniformFallbackWhenAllScoresZero(t *testing.T) {
	zero := map[uint64]float64{1: 0, 2: 0, 3: 0}
	got := normalize(zero)
	for uid, score := range got {
		if !approxEqual(score, 1.0/3.0, 1e-9) {
			t.Errorf("miner %d score = %v, want uniform 1/3", uid, score)
		}
	}
}

func TestInvariant_TierMonotonicity(t *testing.T) {
	coldkeyView := &stubView{coldkeys: map[uint64]string{1: "ck1"}, size: 10}
	noColdkeyView := &stubView{stakes: map[uint64]float64{1: 10}}
	responses := []types.MinerResponse{{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80}}

	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))

	var tier1, tier2 types.Tier
	agg.OnTierSelected = func(e TierEvent) { tier1 = e.Tier }
	agg.Calculate("s", responses, coldkeyView)
	if tier1 != types.TierColdkey {
		t.Fatalf("expected coldkey tier with coldkey data, got %v", tier1)
	}

	agg.OnTierSelected = func(e TierEvent) { tier2 = e.Tier }
	agg.Calculate("s", responses, noColdkeyView)
	if tier2 == types.TierColdkey {
		t.Fatalf("removing coldkey data must never reselect the coldkey tier, got %v", tier2)
	}
}

func TestInvariant_EmptyResponseSetIsNotAnError(t *testing.T) {
	view := &stubView{coldkeys: map[uint64]string{}, size: 0}
	agg := New(types.DefaultScorerConfig(), prng.NewDefault(1))
	result := agg.Calculate("s", nil, view)

	if result.ConsensusResolution != types.ResolutionPending {
		t.Fatalf("resolution = %v, want PENDING", result.ConsensusResolution)
	}
	if result.ConsensusConfidence != 0 {
		t.Errorf("confidence = %v, want 0", result.ConsensusConfidence)
	}
	if len(result.MinerScores) != 0 {
		t.Errorf("expected empty score map, got %v", result.MinerScores)
	}
}
