package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/albapepper/courtrank/internal/engine"
)

// LeaderboardHeader is the column layout of a leaderboard CSV.
var LeaderboardHeader = []string{"Player", "Games_Played", "Formatted_Stats", "Performance_Score"}

// WriteLeaderboardCSV writes one row per entry, best first. The score is
// shown to one decimal place.
func WriteLeaderboardCSV(w io.Writer, entries []engine.RankedEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(LeaderboardHeader); err != nil {
		return err
	}
	for _, e := range entries {
		err := cw.Write([]string{
			e.EntityName,
			strconv.Itoa(e.GamesPlayed),
			e.Formatted,
			fmt.Sprintf("%.1f", e.DisplayScore()),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Comparison describes how a season comparison is laid out.
type Comparison struct {
	Stats         []string // rate keys, one column each
	CurrentLabel  string   // "2024-25"
	PreviousLabel string   // "2023-24"
}

// WriteComparisonCSV writes three rows per entity: the current season's
// per-game rates, the difference, then the previous season's.
func WriteComparisonCSV(w io.Writer, deltas []engine.SeasonDelta, layout Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Player"}, layout.Stats...)); err != nil {
		return err
	}
	for _, d := range deltas {
		rows := []struct {
			suffix string
			values map[string]float64
		}{
			{layout.CurrentLabel, d.Current},
			{"Difference", d.Diff},
			{layout.PreviousLabel, d.Previous},
		}
		for _, r := range rows {
			record := make([]string, 0, len(layout.Stats)+1)
			record = append(record, fmt.Sprintf("%s (%s)", d.EntityName, r.suffix))
			for _, stat := range layout.Stats {
				record = append(record, fmt.Sprintf("%.1f", r.values[stat]))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// KeyValue is one line of a two-column stat sheet.
type KeyValue struct {
	Title string
	Value string
}

// WriteKeyValueCSV writes a Title/Stat sheet.
func WriteKeyValueCSV(w io.Writer, rows []KeyValue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Stat"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Title, r.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRowsCSV writes a header and pre-formatted rows.
func WriteRowsCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteClassifiedCSV writes classified records with the raw totals in stats
// and the labels each record earned. Totals the record lacks are blank.
func WriteClassifiedCSV(w io.Writer, items []engine.Classified, stats []string) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Player"}, stats...)
	if err := cw.Write(append(header, "Labels")); err != nil {
		return err
	}
	for _, c := range items {
		record := make([]string, 0, len(stats)+2)
		record = append(record, c.Record.EntityName)
		for _, stat := range stats {
			v, ok := c.Record.Total(stat)
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, strings.Join(c.Labels, ";"))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
