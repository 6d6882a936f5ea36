// Package ingest is the intake boundary between untrusted miner
// submissions and the pure aggregation core: replay protection and
// per-miner rate limiting, applied before a MinerResponse is ever
// passed to aggregator.Aggregator.
//
// Grounded on the teacher's validation service's seen-request tracking
// and its middleware rate limiter, both hand-rolled over
// sync.Mutex/time.Time rather than a third-party limiter — the pack
// carries no rate-limiting library, so this stays on the standard
// library like the teacher's own middleware did.
package ingest

import (
	"sync"
	"time"

	"github.com/veritas-net/validator-core/internal/types"
)

// ReplayGuard rejects a (statement, miner UID) pair that has already
// been submitted within its retention window, mirroring the teacher's
// validation service's duplicate-submission check.
type ReplayGuard struct {
	retention time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewReplayGuard builds a guard that remembers a submission for
// retention before allowing it to be resubmitted.
func NewReplayGuard(retention time.Duration) *ReplayGuard {
	return &ReplayGuard{retention: retention, seen: make(map[string]time.Time)}
}

// Admit reports whether (statement, uid) has not been seen within the
// retention window, recording it as seen if so.
func (g *ReplayGuard) Admit(statement types.Statement, uid uint64, now time.Time) bool {
	key := replayKey(statement, uid)

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.seen[key]; ok && now.Sub(last) < g.retention {
		return false
	}
	g.seen[key] = now
	return true
}

func replayKey(statement types.Statement, uid uint64) string {
	return string(statement) + "|" + uintToString(uid)
}

func uintToString(u uint64) string {
	if u == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[i:])
}

// RateLimiter caps the number of submissions a single miner UID may
// make within a sliding window, protecting the pipeline from a single
// compromised or misbehaving worker flooding one statement.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	hits  map[uint64][]time.Time
}

// NewRateLimiter builds a limiter allowing at most limit submissions
// per UID within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, hits: make(map[uint64][]time.Time)}
}

// Allow reports whether uid may submit now. Only allowed attempts are
// recorded; a denied attempt does not count toward the window.
func (r *RateLimiter) Allow(uid uint64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-r.window)
	history := r.hits[uid]
	fresh := history[:0]
	for _, t := range history {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= r.limit {
		r.hits[uid] = fresh
		return false
	}

	r.hits[uid] = append(fresh, now)
	return true
}

// Intake combines replay protection and rate limiting into the single
// gate a transport handler runs an incoming response through before it
// reaches the aggregator.
type Intake struct {
	replay  *ReplayGuard
	limiter *RateLimiter
}

// NewIntake builds an Intake with the given replay retention and
// per-miner rate limit/window.
func NewIntake(replayRetention time.Duration, rateLimit int, rateWindow time.Duration) *Intake {
	return &Intake{
		replay:  NewReplayGuard(replayRetention),
		limiter: NewRateLimiter(rateLimit, rateWindow),
	}
}

// Accept runs response through validity, rate-limit, and replay
// checks, in that order (cheapest check first). It returns false if
// any check rejects the submission.
func (in *Intake) Accept(statement types.Statement, response types.MinerResponse, now time.Time) bool {
	if !response.IsValid() {
		return false
	}
	uid, ok := response.UID()
	if !ok {
		return false
	}
	if !in.limiter.Allow(uid, now) {
		return false
	}
	if !in.replay.Admit(statement, uid, now) {
		return false
	}
	return true
}
