package knowledge

import "sync/atomic"

// Gate implements the discard-stale-result policy for one UI surface: the
// newest submitted query wins, and results from superseded runs are dropped
// without stopping their background work. Safe for concurrent use.
type Gate struct {
	current atomic.Uint64
}

// Begin registers a new run and supersedes all earlier ones.
func (g *Gate) Begin() Token {
	return Token{gate: g, generation: g.current.Add(1)}
}

// Token identifies one run against its gate.
type Token struct {
	gate       *Gate
	generation uint64
}

// Live reports whether this run is still the newest one. A snapshot from a
// non-live token must not reach the UI.
func (t Token) Live() bool {
	return t.gate != nil && t.gate.current.Load() == t.generation
}
