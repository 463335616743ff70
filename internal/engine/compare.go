package engine

import "sort"

// SeasonDelta is one entity's per-game change between two periods.
type SeasonDelta struct {
	EntityID   string
	EntityName string
	Current    map[string]float64
	Previous   map[string]float64
	Diff       map[string]float64
	Overall    float64 // weighted sum of Diff
}

// CompareSeasons joins two periods on entity ID and scores the per-game
// differences with weights (unit weights give the plain sum). It returns the
// n largest improvements and the n largest declines. Entities present in only
// one period are skipped; records that cannot produce rates are reported.
func CompareSeasons(current, previous []StatRecord, weights Weights, n int) (improvements, declines []SeasonDelta, report Report) {
	if n < 0 {
		n = 0
	}

	prevRates := make(map[string]StatRecord, len(previous))
	for _, s := range ScoreAll(previous, weights) {
		if !s.OK() {
			report.skipErr(s.Record.EntityID, s.Record.EntityName, s.Err)
			continue
		}
		prevRates[s.Record.EntityID] = s.Record
	}

	var deltas []SeasonDelta
	for _, s := range ScoreAll(current, weights) {
		if !s.OK() {
			report.skipErr(s.Record.EntityID, s.Record.EntityName, s.Err)
			continue
		}
		prev, ok := prevRates[s.Record.EntityID]
		if !ok {
			continue
		}
		diff := make(map[string]float64, len(weights))
		for _, k := range weights.Keys() {
			diff[k] = s.Record.Rates[k] - prev.Rates[k]
		}
		deltas = append(deltas, SeasonDelta{
			EntityID:   s.Record.EntityID,
			EntityName: s.Record.EntityName,
			Current:    s.Record.Rates,
			Previous:   prev.Rates,
			Diff:       diff,
			Overall:    ComputeScore(diff, weights),
		})
	}
	report.Accepted = len(deltas)

	k := n
	if k > len(deltas) {
		k = len(deltas)
	}

	up := append([]SeasonDelta(nil), deltas...)
	sort.SliceStable(up, func(i, j int) bool { return up[i].Overall > up[j].Overall })
	down := append([]SeasonDelta(nil), deltas...)
	sort.SliceStable(down, func(i, j int) bool { return down[i].Overall < down[j].Overall })

	return up[:k], down[:k], report
}

// Aggregate folds game-level records (most recent first) into one record
// covering the first limit games; limit <= 0 takes them all. The result's
// GamesPlayed is the sum of the inputs', so an empty slice yields a record
// that ComputeRates rejects with ErrDivisionUndefined.
func Aggregate(id, name string, games []StatRecord, limit int) StatRecord {
	if limit > 0 && limit < len(games) {
		games = games[:limit]
	}
	out := StatRecord{
		EntityID:   id,
		EntityName: name,
		Totals:     make(map[string]float64),
	}
	for _, g := range games {
		out.GamesPlayed += g.GamesPlayed
		for k, v := range g.Totals {
			out.Totals[k] += v
		}
	}
	return out
}
