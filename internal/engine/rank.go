package engine

import (
	"fmt"
	"sort"
	"strings"
)

// DisplayStat names one rate rendered in a leaderboard row, e.g.
// {Stat: "PTS", Label: "ppg"} renders as "27.3 ppg".
type DisplayStat struct {
	Stat  string `yaml:"stat"`
	Label string `yaml:"label"`
}

// RankedEntry is one row of a leaderboard.
type RankedEntry struct {
	Rank        int
	EntityID    string
	EntityName  string
	GamesPlayed int
	Values      map[string]float64 // rates used for scoring and display
	Formatted   string
	Score       float64 // unrounded; ranking uses this value
}

// DisplayScore is the score rounded to one decimal place.
func (e RankedEntry) DisplayScore() float64 {
	return Round1(e.Score)
}

// RankOptions controls what each entry carries beyond the score.
type RankOptions struct {
	Display []DisplayStat
}

// RankTop scores every record and returns the n highest, best first.
//
// Ties keep input order. Records that cannot be scored (zero games,
// non-finite totals) are excluded and listed in the Report; they never abort
// the batch. n == 0 or an empty input yields an empty slice; n larger than
// the number of scorable records yields all of them.
func RankTop(records []StatRecord, weights Weights, n int, opts RankOptions) ([]RankedEntry, Report) {
	var report Report
	if n < 0 {
		n = 0
	}

	extra := make([]string, 0, len(opts.Display))
	for _, d := range opts.Display {
		extra = append(extra, d.Stat)
	}

	scored := make([]Scored, 0, len(records))
	for _, s := range ScoreAll(records, weights, extra...) {
		if !s.OK() {
			report.skipErr(s.Record.EntityID, s.Record.EntityName, s.Err)
			continue
		}
		scored = append(scored, s)
	}
	report.Accepted = len(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if n > len(scored) {
		n = len(scored)
	}
	entries := make([]RankedEntry, 0, n)
	for i := 0; i < n; i++ {
		s := scored[i]
		entries = append(entries, RankedEntry{
			Rank:        i + 1,
			EntityID:    s.Record.EntityID,
			EntityName:  s.Record.EntityName,
			GamesPlayed: s.Record.GamesPlayed,
			Values:      s.Record.Rates,
			Formatted:   FormatValues(s.Record.Rates, opts.Display),
			Score:       s.Score,
		})
	}
	return entries, report
}

// FormatValues renders rates as "27.3 ppg, 8.1 rpg". Stats the record does
// not carry are left out rather than shown as zero.
func FormatValues(values map[string]float64, display []DisplayStat) string {
	parts := make([]string, 0, len(display))
	for _, d := range display {
		v, ok := values[d.Stat]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%.1f %s", v, d.Label))
	}
	return strings.Join(parts, ", ")
}

// FilterMinGames keeps records with at least min games played, in order.
func FilterMinGames(records []StatRecord, min int) []StatRecord {
	if min <= 0 {
		return records
	}
	out := make([]StatRecord, 0, len(records))
	for _, r := range records {
		if r.GamesPlayed >= min {
			out = append(out, r)
		}
	}
	return out
}
