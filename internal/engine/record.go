// Package engine scores and ranks basketball stat records.
//
// A StatRecord holds one entity's totals over a period. The engine derives
// per-game rates, folds them into a weighted score, ranks entities by that
// score and tags records that cross configured thresholds. Everything here
// is a pure transform over values the caller already fetched.
package engine

import "math"

// StatRecord is one row of per-period aggregates for a player or team.
type StatRecord struct {
	EntityID    string
	EntityName  string
	GamesPlayed int
	Totals      map[string]float64

	// Rates is derived by ComputeRates; nil until then.
	Rates map[string]float64
}

// Total returns a raw total and whether the record carries it.
func (r StatRecord) Total(key string) (float64, bool) {
	v, ok := r.Totals[key]
	return v, ok
}

// Clone returns a deep copy so derived values never alias caller maps.
func (r StatRecord) Clone() StatRecord {
	out := r
	out.Totals = cloneMap(r.Totals)
	out.Rates = cloneMap(r.Rates)
	return out
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
