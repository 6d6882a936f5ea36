package ingest

import (
	"testing"
	"time"

	"github.com/veritas-net/validator-core/internal/types"
)

func uid(u uint64) *uint64 { return &u }

func TestReplayGuard_RejectsDuplicateWithinRetention(t *testing.T) {
	guard := NewReplayGuard(time.Minute)
	now := time.Unix(1000, 0)

	if !guard.Admit("s1", 1, now) {
		t.Fatal("first submission should be admitted")
	}
	if guard.Admit("s1", 1, now.Add(10*time.Second)) {
		t.Fatal("duplicate within retention should be rejected")
	}
	if !guard.Admit("s1", 1, now.Add(2*time.Minute)) {
		t.Fatal("submission after retention window should be admitted again")
	}
}

func TestReplayGuard_DistinctStatementsDoNotCollide(t *testing.T) {
	guard := NewReplayGuard(time.Minute)
	now := time.Unix(1000, 0)

	if !guard.Admit("s1", 1, now) {
		t.Fatal("expected admit")
	}
	if !guard.Admit("s2", 1, now) {
		t.Fatal("different statement from same miner should not collide")
	}
}

func TestRateLimiter_EnforcesLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Unix(1000, 0)

	if !limiter.Allow(1, now) {
		t.Fatal("expected first submission allowed")
	}
	if !limiter.Allow(1, now.Add(time.Second)) {
		t.Fatal("expected second submission allowed")
	}
	if limiter.Allow(1, now.Add(2*time.Second)) {
		t.Fatal("expected third submission within window to be denied")
	}
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	now := time.Unix(1000, 0)

	if !limiter.Allow(1, now) {
		t.Fatal("expected first submission allowed")
	}
	if !limiter.Allow(1, now.Add(2*time.Minute)) {
		t.Fatal("expected submission outside the window to be allowed")
	}
}

func TestIntake_Accept(t *testing.T) {
	in := NewIntake(time.Minute, 5, time.Minute)
	now := time.Unix(1000, 0)

	valid := types.MinerResponse{MinerUID: uid(1), Resolution: types.ResolutionTrue, Confidence: 80}
	if !in.Accept("s1", valid, now) {
		t.Fatal("valid response should be accepted")
	}
	if in.Accept("s1", valid, now.Add(time.Second)) {
		t.Fatal("replayed response should be rejected")
	}

	invalid := types.MinerResponse{MinerUID: uid(2), Resolution: "BOGUS", Confidence: 80}
	if in.Accept("s1", invalid, now) {
		t.Fatal("invalid response should be rejected before it touches rate/replay state")
	}
}
