// Package netview provides NetworkView implementations: an in-memory
// Static table for tests and small deployments, and a Dgraph-backed
// view for production use (dgraph.go).
package netview

// Static is an in-memory types.NetworkView backed by two plain maps.
// Either map may be left nil to model "side-table entirely absent".
type Static struct {
	coldkeys map[uint64]string
	stakes   map[uint64]float64
	size     int
}

// NewStatic builds a Static view. Pass nil for coldkeys or stakes to
// model that side-table being unavailable.
func NewStatic(coldkeys map[uint64]string, stakes map[uint64]float64, networkSize int) *Static {
	return &Static{coldkeys: coldkeys, stakes: stakes, size: networkSize}
}

func (s *Static) ColdkeyOf(uid uint64) (string, bool) {
	if s.coldkeys == nil {
		return "", false
	}
	c, ok := s.coldkeys[uid]
	return c, ok
}

func (s *Static) StakeOf(uid uint64) (float64, bool) {
	if s.stakes == nil {
		return 0, false
	}
	v, ok := s.stakes[uid]
	return v, ok
}

func (s *Static) HasColdkeys() bool { return s.coldkeys != nil }
func (s *Static) HasStakes() bool   { return s.stakes != nil }

func (s *Static) NetworkSize() int {
	if s.size > 0 {
		return s.size
	}
	return len(s.coldkeys)
}
