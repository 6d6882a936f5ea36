package consensus

import (
	"testing"

	"github.com/veritas-net/validator-core/internal/types"
)

func uid(u uint64) *uint64 { return &u }

func TestCompute_UnanimousClean(t *testing.T) {
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 85, Sources: []string{"coingecko.com"}},
		{MinerUID: uid(3), Resolution: types.ResolutionTrue, Confidence: 90, Sources: []string{"coingecko.com"}},
	}
	got := Compute(responses)
	if got.Resolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE", got.Resolution)
	}
	if got.Confidence != 85.0 {
		t.Errorf("confidence = %v, want 85.0", got.Confidence)
	}
}

func TestCompute_Split(t *testing.T) {
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 90},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 70},
		{MinerUID: uid(3), Resolution: types.ResolutionFalse, Confidence: 60},
	}
	got := Compute(responses)
	if got.Resolution != types.ResolutionTrue {
		t.Fatalf("resolution = %v, want TRUE", got.Resolution)
	}
	if got.Weights[types.ResolutionTrue] != 1.6 {
		t.Errorf("TRUE weight = %v, want 1.6", got.Weights[types.ResolutionTrue])
	}
	if got.Weights[types.ResolutionFalse] != 0.6 {
		t.Errorf("FALSE weight = %v, want 0.6", got.Weights[types.ResolutionFalse])
	}
}

func TestCompute_NoSurvivors(t *testing.T) {
	got := Compute(nil)
	if got.Resolution != types.ResolutionPending {
		t.Fatalf("resolution = %v, want PENDING", got.Resolution)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}

func TestCompute_SinglePending(t *testing.T) {
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionPending, Confidence: 50},
	}
	got := Compute(responses)
	if got.Resolution != types.ResolutionPending {
		t.Fatalf("resolution = %v, want PENDING", got.Resolution)
	}
	if got.Confidence != 50 {
		t.Errorf("confidence = %v, want 50", got.Confidence)
	}
}

func TestCompute_DeterministicTieBreak(t *testing.T) {
	responses := []types.MinerResponse{
		{MinerUID: uid(1), Resolution: types.ResolutionFalse, Confidence: 50},
		{MinerUID: uid(2), Resolution: types.ResolutionTrue, Confidence: 50},
	}
	got := Compute(responses)
	if got.Resolution != types.ResolutionTrue {
		t.Fatalf("tied weights should resolve to TRUE (first in domain order), got %v", got.Resolution)
	}
}
