package batch

import (
	"testing"

	"github.com/veritas-net/validator-core/internal/aggregator"
	"github.com/veritas-net/validator-core/internal/netview"
	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/types"
)

func uid(u uint64) *uint64 { return &u }

func TestRun_ProcessesAllJobs(t *testing.T) {
	view := netview.NewStatic(map[uint64]string{1: "ck1", 2: "ck2"}, nil, 10)
	agg := aggregator.New(types.DefaultScorerConfig(), prng.NewDefault(1))

	jobs := []Job{
		{Statement: "s1", Responses: []types.MinerResponse{{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80}}, View: view},
		{Statement: "s2", Responses: []types.MinerResponse{{MinerUID: uid(2), Resolution: types.ResolutionFalse, Confidence: 60}}, View: view},
	}

	outcomes := Run(agg, jobs, 4)
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	seen := map[types.Statement]bool{}
	for _, o := range outcomes {
		seen[o.Statement] = true
	}
	if !seen["s1"] || !seen["s2"] {
		t.Errorf("expected both statements represented in outcomes, got %+v", outcomes)
	}
}

func TestRun_EmptyJobList(t *testing.T) {
	agg := aggregator.New(types.DefaultScorerConfig(), prng.NewDefault(1))
	outcomes := Run(agg, nil, 4)
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
}
