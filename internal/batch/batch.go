// Package batch drives concurrent aggregation passes over many
// statements at once, sharing a single aggregator.Aggregator (and its
// mutex-guarded score accumulator) across a fixed worker pool.
//
// Grounded on the teacher's miner-gateway batch verifier's fixed
// worker-count pool over a job channel, adapted from "verify one
// submission" jobs to "aggregate one statement" jobs.
package batch

import (
	"sync"

	"github.com/veritas-net/validator-core/internal/types"
)

// Calculator is the subset of aggregator.Aggregator's surface a batch
// run depends on.
type Calculator interface {
	Calculate(statement types.Statement, responses []types.MinerResponse, view types.NetworkView) types.ValidationResult
}

// Job is one statement's worth of work for the pool.
type Job struct {
	Statement types.Statement
	Responses []types.MinerResponse
	View      types.NetworkView
}

// Outcome pairs a Job's statement with its computed result, so callers
// can match results back to the input job despite out-of-order
// completion across workers.
type Outcome struct {
	Statement types.Statement
	Result    types.ValidationResult
}

// Run fans jobs out across workerCount goroutines, all calling
// calc.Calculate, and returns one Outcome per job. workerCount is
// clamped to at least 1 and to len(jobs) at most, since a pool wider
// than the job count cannot do useful additional work.
func Run(calc Calculator, jobs []Job, workerCount int) []Outcome {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}
	if workerCount == 0 {
		return nil
	}

	jobCh := make(chan int, len(jobs))
	for i := range jobs {
		jobCh <- i
	}
	close(jobCh)

	outcomes := make([]Outcome, len(jobs))
	var wg sync.WaitGroup
	wg.Add(workerCount)

	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for i := range jobCh {
				job := jobs[i]
				result := calc.Calculate(job.Statement, job.Responses, job.View)
				outcomes[i] = Outcome{Statement: job.Statement, Result: result}
			}
		}()
	}

	wg.Wait()
	return outcomes
}
