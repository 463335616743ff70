package engine

import (
	"math"
	"sort"
)

// Side is a team's role in a game.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// GameScoreRow is one team's final score in one game.
type GameScoreRow struct {
	GameID string
	Side   Side
	Team   string
	Points float64
}

// GameDiff is a joined home/away pair with its point differential.
type GameDiff struct {
	GameID       string
	HomeTeam     string
	AwayTeam     string
	HomePoints   float64
	AwayPoints   float64
	Differential float64 // |home - away|
}

// PairGames joins home and away rows on game ID, in order of each game's
// first row. A game needs exactly one home and one away row; games with a
// missing or duplicated side are dropped and noted in the Report.
func PairGames(rows []GameScoreRow) ([]GameDiff, Report) {
	var report Report

	type pair struct {
		home, away   []GameScoreRow
		invalidSides int
	}
	var order []string
	byGame := make(map[string]*pair)
	for _, row := range rows {
		p, ok := byGame[row.GameID]
		if !ok {
			p = &pair{}
			byGame[row.GameID] = p
			order = append(order, row.GameID)
		}
		switch row.Side {
		case SideHome:
			p.home = append(p.home, row)
		case SideAway:
			p.away = append(p.away, row)
		default:
			p.invalidSides++
		}
	}

	diffs := make([]GameDiff, 0, len(order))
	for _, id := range order {
		p := byGame[id]
		if len(p.home) != 1 || len(p.away) != 1 || p.invalidSides > 0 {
			report.AddNotef("game %s dropped: home=%d away=%d unknown=%d",
				id, len(p.home), len(p.away), p.invalidSides)
			continue
		}
		h, a := p.home[0], p.away[0]
		if !finite(h.Points) || !finite(a.Points) {
			report.Skip(id, h.Team+" vs "+a.Team, ErrNonFinite)
			continue
		}
		diffs = append(diffs, GameDiff{
			GameID:       id,
			HomeTeam:     h.Team,
			AwayTeam:     a.Team,
			HomePoints:   h.Points,
			AwayPoints:   a.Points,
			Differential: math.Abs(h.Points - a.Points),
		})
	}
	report.Accepted = len(diffs)
	return diffs, report
}

// PairAndDiff returns the k largest differentials (blowouts) and the k
// smallest (close games). Equal differentials keep join order.
func PairAndDiff(rows []GameScoreRow, k int) (blowouts, closeGames []GameDiff) {
	diffs, _ := PairGames(rows)
	return TopDiffs(diffs, k)
}

// TopDiffs splits already-paired games into blowouts and close games.
func TopDiffs(diffs []GameDiff, k int) (blowouts, closeGames []GameDiff) {
	if k < 0 {
		k = 0
	}
	if k > len(diffs) {
		k = len(diffs)
	}

	desc := append([]GameDiff(nil), diffs...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Differential > desc[j].Differential })
	asc := append([]GameDiff(nil), diffs...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Differential < asc[j].Differential })

	return desc[:k], asc[:k]
}
