// Package report renders the daily text report.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/sink"
)

// Daily holds everything one day's report shows. Sections with no rows
// print "(none)". YoungKnown is false when the source carried no ages;
// TeamsKnown is false when team season stats could not be fetched.
type Daily struct {
	Date       string
	Standouts  []engine.Classified
	Blowouts   []engine.GameDiff
	CloseGames []engine.GameDiff
	Rookies    []engine.StatRecord
	Young      []engine.StatRecord
	YoungKnown bool
	Teams      []engine.StatRecord // season to date, most wins first
	TeamsKnown bool
	Top        []engine.RankedEntry
}

var (
	standoutStats = []string{provider.StatPoints, provider.StatRebounds, provider.StatAssists, provider.StatSteals, provider.StatBlocks}
	watchStats    = []string{provider.StatPoints, provider.StatRebounds, provider.StatAssists}
	teamStats     = []string{provider.StatRebounds, provider.StatAssists, provider.StatTurnovers}
)

// FileName is the report's file name for date.
func FileName(date string) string {
	return "daily_report_" + date + ".txt"
}

// WriteFile writes the report to dir and returns its path.
func WriteFile(dir string, d Daily) (string, error) {
	path := filepath.Join(dir, FileName(d.Date))
	err := sink.WriteFile(path, func(w io.Writer) error { return Write(w, d) })
	return path, err
}

// Write renders the report as plain text.
func Write(w io.Writer, d Daily) error {
	title := "Daily NBA Report for " + d.Date
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", title, strings.Repeat("=", 30)); err != nil {
		return err
	}

	sections := []struct {
		heading string
		render  func(io.Writer) (int, error)
	}{
		{"Standout Performances:", func(w io.Writer) (int, error) { return standouts(w, d.Standouts) }},
		{"Game Trends:\nLargest Blowouts:", func(w io.Writer) (int, error) { return games(w, d.Blowouts) }},
		{"Closest Games:", func(w io.Writer) (int, error) { return games(w, d.CloseGames) }},
		{"Rookie Watch:", func(w io.Writer) (int, error) { return watch(w, d.Rookies) }},
		{"Young Players Watch:", func(w io.Writer) (int, error) {
			if !d.YoungKnown {
				_, err := fmt.Fprintln(w, "(ages not available from this source)")
				return 1, err // the note stands in for rows
			}
			return watch(w, d.Young)
		}},
		{"Team Stats:", func(w io.Writer) (int, error) {
			if !d.TeamsKnown {
				_, err := fmt.Fprintln(w, "(team stats not available)")
				return 1, err
			}
			return teams(w, d.Teams)
		}},
		{"Top Performances:", func(w io.Writer) (int, error) { return top(w, d.Top) }},
	}

	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s.heading); err != nil {
			return err
		}
		n, err := s.render(w)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := fmt.Fprintln(w, "(none)"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Sections; each returns the number of rows it rendered
// --------------------------------------------------------------------------

func standouts(w io.Writer, items []engine.Classified) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "PLAYER_NAME\t%s\tLABELS\n", strings.Join(standoutStats, "\t"))
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Record.EntityName, totals(c.Record, standoutStats), strings.Join(c.Labels, ","))
	}
	return len(items), tw.Flush()
}

func games(w io.Writer, diffs []engine.GameDiff) (int, error) {
	if len(diffs) == 0 {
		return 0, nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "GAME_ID\tHOME\tPTS_HOME\tVISITOR\tPTS_VISITOR\tPoint Differential")
	for _, g := range diffs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", g.GameID,
			g.HomeTeam, number(g.HomePoints), g.AwayTeam, number(g.AwayPoints), number(g.Differential))
	}
	return len(diffs), tw.Flush()
}

func watch(w io.Writer, records []engine.StatRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "PLAYER_NAME\t%s\n", strings.Join(watchStats, "\t"))
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", r.EntityName, totals(r, watchStats))
	}
	return len(records), tw.Flush()
}

func teams(w io.Writer, records []engine.StatRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "TEAM_NAME\tW\tL\tFG_PCT\t%s\n", strings.Join(teamStats, "\t"))
	for _, r := range records {
		pct := "-"
		if v, ok := r.Total(provider.StatFGPct); ok {
			pct = fmt.Sprintf("%.3f", v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.EntityName,
			totals(r, []string{provider.StatWins, provider.StatLosses}), pct, totals(r, teamStats))
	}
	return len(records), tw.Flush()
}

func top(w io.Writer, entries []engine.RankedEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tPLAYER_NAME\tLINE\tSCORE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\n", e.Rank, e.EntityName, e.Formatted, e.DisplayScore())
	}
	return len(entries), tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func totals(r engine.StatRecord, stats []string) string {
	cells := make([]string, len(stats))
	for i, s := range stats {
		if v, ok := r.Total(s); ok {
			cells[i] = number(engine.Round1(v))
		} else {
			cells[i] = "-"
		}
	}
	return strings.Join(cells, "\t")
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
