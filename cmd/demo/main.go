// Command demo runs the five scenario fixtures plus the S6 repeated
// accumulation scenario against a fresh Aggregator and prints each
// ValidationResult, so the consensus core's behavior can be inspected
// without standing up the HTTP service or a Dgraph cluster.
//
// Grounded on the teacher's root main.go, which ran a fixed demo
// population through the validator and logged the outcome.
package main

import (
	"fmt"

	"github.com/veritas-net/validator-core/internal/aggregator"
	"github.com/veritas-net/validator-core/internal/prng"
	"github.com/veritas-net/validator-core/internal/scenarios"
	"github.com/veritas-net/validator-core/internal/types"
)

func main() {
	agg := aggregator.New(types.DefaultScorerConfig(), prng.NewDefault(42))
	agg.OnTierSelected = func(e aggregator.TierEvent) {
		fmt.Printf("  [tier] %s -> %s\n", e.Statement, e.Tier)
	}

	for _, sc := range scenarios.All() {
		result := agg.Calculate(sc.Statement, sc.Responses, sc.View)
		printResult(sc.Name, result)
	}

	fmt.Println("\nrunning S6 accumulation: replaying the clean-unanimous scenario 101 times")
	clean := scenarios.UnanimousClean()
	accAgg := aggregator.New(types.DefaultScorerConfig(), prng.NewDefault(1))
	for i := 0; i < 101; i++ {
		accAgg.Calculate(clean.Statement, clean.Responses, clean.View)
	}
	fmt.Printf("miner scores after 101 passes (window caps each miner at 100 entries): %v\n", accAgg.MinerScores())
}

func printResult(name string, result types.ValidationResult) {
	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("consensus: %s (confidence %.1f)\n", result.ConsensusResolution, result.ConsensusConfidence)
	fmt.Printf("responses: %d total, %d valid\n", result.TotalResponses, result.ValidResponses)
	fmt.Printf("miner scores: %v\n", result.MinerScores)
	fmt.Printf("sources: %v\n", result.ConsensusSources)
}
