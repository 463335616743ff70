package engine

import (
	"fmt"
	"sort"
)

// Weights maps a stat key to its signed coefficient in the performance
// score. A weights table is static configuration, never derived from data.
type Weights map[string]float64

// Keys returns the weighted stat keys in sorted order.
func (w Weights) Keys() []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ComputeRates returns a copy of record with Rates[key] = Totals[key] /
// GamesPlayed for every key present in both Totals and weights, plus any
// extra display keys the caller asks for.
//
// Returns ErrDivisionUndefined when GamesPlayed is not positive and
// ErrNonFinite when a used total is NaN or infinite.
func ComputeRates(record StatRecord, weights Weights, extra ...string) (StatRecord, error) {
	if record.GamesPlayed <= 0 {
		return StatRecord{}, fmt.Errorf("%w (games=%d)", ErrDivisionUndefined, record.GamesPlayed)
	}

	want := make(map[string]bool, len(weights)+len(extra))
	for k := range weights {
		want[k] = true
	}
	for _, k := range extra {
		want[k] = true
	}

	out := record.Clone()
	out.Rates = make(map[string]float64, len(want))
	gp := float64(record.GamesPlayed)
	for k := range want {
		total, ok := record.Totals[k]
		if !ok {
			continue
		}
		if !finite(total) {
			return StatRecord{}, fmt.Errorf("%w: %s=%v", ErrNonFinite, k, total)
		}
		out.Rates[k] = total / gp
	}
	return out, nil
}

// ComputeScore returns Σ rates[k] × weights[k] over the weights table.
// Missing rate keys contribute zero, so sources that omit a column (an
// offensive/defensive rebound split, say) still score. Terms are summed in
// sorted key order, which makes the result bit-for-bit reproducible.
func ComputeScore(rates map[string]float64, weights Weights) float64 {
	score := 0.0
	for _, k := range weights.Keys() {
		score += rates[k] * weights[k]
	}
	return score
}

// Scored is the per-record outcome of scoring a batch: either a record with
// its rates and score, or the reason it was excluded.
type Scored struct {
	Record StatRecord
	Score  float64
	Err    error
}

// OK reports whether the record was scored.
func (s Scored) OK() bool { return s.Err == nil }

// ScoreAll computes rates and score for every record, in input order.
// Failures are returned per record as *RecordError values.
func ScoreAll(records []StatRecord, weights Weights, extra ...string) []Scored {
	out := make([]Scored, len(records))
	for i, rec := range records {
		withRates, err := ComputeRates(rec, weights, extra...)
		if err != nil {
			out[i] = Scored{
				Record: rec,
				Err:    &RecordError{EntityID: rec.EntityID, EntityName: rec.EntityName, Err: err},
			}
			continue
		}
		score := ComputeScore(withRates.Rates, weights)
		if !finite(score) {
			out[i] = Scored{
				Record: rec,
				Err: &RecordError{EntityID: rec.EntityID, EntityName: rec.EntityName,
					Err: fmt.Errorf("%w: score=%v", ErrNonFinite, score)},
			}
			continue
		}
		out[i] = Scored{Record: withRates, Score: score}
	}
	return out
}
