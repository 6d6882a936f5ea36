// Package types holds the data model shared across the consensus and
// scoring core: statements, resolutions, miner responses, the read-only
// network view, and the result of one aggregation pass.
package types

import (
	"errors"
	"fmt"
)

// Statement is an opaque identifier for the claim under evaluation. The
// core never parses it; it is only ever compared for equality or used as
// a map key.
type Statement string

// Resolution is the verdict space a miner can vote for.
type Resolution string

const (
	ResolutionTrue    Resolution = "TRUE"
	ResolutionFalse   Resolution = "FALSE"
	ResolutionPending Resolution = "PENDING"
)

// Valid reports whether r is one of the three recognized resolutions.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionTrue, ResolutionFalse, ResolutionPending:
		return true
	default:
		return false
	}
}

// Resolutions enumerates the verdict domain in a fixed, deterministic
// order. Consensus tie-breaking iterates this slice rather than ranging
// over a map, so the result never depends on map iteration order.
var Resolutions = []Resolution{ResolutionTrue, ResolutionFalse, ResolutionPending}

// MinerResponse is one miner's judgment about a Statement.
//
// MinerUID is a pointer so that "no UID set" (nil) is distinguishable
// from UID 0, matching the §3 requirement that a missing UID is handled
// explicitly rather than aliased to a real miner.
//
// Responses are treated as immutable by every package in this module:
// the one place the spec calls for mutation (confidence attenuation
// during coordination-penalty application, §4.3) is implemented as a
// method that returns a new value rather than mutating in place.
type MinerResponse struct {
	MinerUID   *uint64
	Resolution Resolution
	Confidence float64 // in [0, 100]
	Summary    string
	Sources    []string
}

// IsValid implements the §6 validity contract: a response is valid iff
// it carries a recognized resolution, a confidence in [0,100], and a
// miner UID.
func (r MinerResponse) IsValid() bool {
	if !r.Resolution.Valid() {
		return false
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return false
	}
	if r.MinerUID == nil {
		return false
	}
	return true
}

// UID returns the miner UID, or ok=false if unset.
func (r MinerResponse) UID() (uint64, bool) {
	if r.MinerUID == nil {
		return 0, false
	}
	return *r.MinerUID, true
}

// WithConfidence returns a copy of r with its confidence replaced. Used
// by the coordination-attenuation step so the pipeline stays referentially
// transparent: callers always hold a new value, never a mutated alias.
func (r MinerResponse) WithConfidence(confidence float64) MinerResponse {
	r.Confidence = confidence
	return r
}

// UIDOrZero returns the UID for display/logging purposes, defaulting to
// 0 when unset. Never used for identity decisions, only log lines.
func (r MinerResponse) UIDOrZero() uint64 {
	uid, _ := r.UID()
	return uid
}

// NetworkView is a read-only capability over per-UID coldkey and stake
// metadata. Implementations may back this with an in-memory map (tests,
// internal/netview.Static) or a remote store (internal/netview.Dgraph).
//
// Per the §9 design note, "probe an attribute and catch if it isn't
// there" is replaced by this explicit optional-returning interface: both
// the whole-table and the per-UID lookup can report absence without a
// panic or a sentinel value that could be confused with real data.
type NetworkView interface {
	// ColdkeyOf returns the coldkey controlling uid, or ok=false if the
	// coldkey table is absent or has no entry for uid.
	ColdkeyOf(uid uint64) (coldkey string, ok bool)
	// StakeOf returns the stake held by uid, or ok=false if the stake
	// table is absent or has no entry for uid.
	StakeOf(uid uint64) (stake float64, ok bool)
	// HasColdkeys reports whether the coldkey side-table is present at all.
	HasColdkeys() bool
	// HasStakes reports whether the stake side-table is present at all.
	HasStakes() bool
	// NetworkSize returns the total miner count known to the network, used
	// as N in the 7% coldkey cap. Implementations typically return the
	// size of the coldkey table.
	NetworkSize() int
}

// ValidationResult is the output of one aggregation pass.
type ValidationResult struct {
	ConsensusResolution Resolution
	ConsensusConfidence float64
	TotalResponses      int
	ValidResponses      int
	MinerScores         map[uint64]float64
	ConsensusSources    []string
}

// Tier names the anti-Sybil filtering regime that produced a given
// ValidationResult, exposed so callers can observe when the permissive
// basic tier was used (see spec.md §9 Open Question).
type Tier int

const (
	TierColdkey Tier = iota
	TierStake
	TierBasic
)

func (t Tier) String() string {
	switch t {
	case TierColdkey:
		return "coldkey"
	case TierStake:
		return "stake"
	case TierBasic:
		return "basic"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Sentinel errors modeling the two recoverable fault kinds from §7. These
// are the only errors the identity filters return; the aggregator demotes
// to the next tier on any non-nil error from a filter.
var (
	// ErrNoColdkeyData is returned by the coldkey-cap filter when the
	// coldkey side-table is absent or cannot be consulted.
	ErrNoColdkeyData = errors.New("types: coldkey metadata unavailable")
	// ErrNoStakeData is returned by the stake-bucket filter when the
	// stake side-table is absent.
	ErrNoStakeData = errors.New("types: stake metadata unavailable")
)

// ScorerConfig holds the four configurable sub-score weights recognized
// by the per-response scorer (§6 Configuration table). A zero field gives
// that sub-score no weight; only when all four are zero does the scorer
// substitute DefaultScorerConfig at construction time.
type ScorerConfig struct {
	AccuracyWeight      float64
	ConfidenceWeight    float64
	ConsistencyWeight   float64
	SourceQualityWeight float64
}

// DefaultScorerConfig returns the documented defaults (0.4/0.2/0.3/0.1).
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		AccuracyWeight:      0.4,
		ConfidenceWeight:    0.2,
		ConsistencyWeight:   0.3,
		SourceQualityWeight: 0.1,
	}
}
