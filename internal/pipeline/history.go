package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/sink"
)

// HistorySeasons is how many seasons a player history covers by default,
// ending with the current one.
const HistorySeasons = 3

// ErrNoHistory is returned when a player has no line in any requested season.
var ErrNoHistory = errors.New("no season data for player")

// HistorySource resolves a player and serves whole-league season tables.
type HistorySource interface {
	SeasonSource
	PlayerSource
}

var historyStats = []string{provider.StatPoints, provider.StatAssists, provider.StatRebounds}

// PlayerHistory writes one row of per-game averages per season for a
// player, from through to inclusive, followed by the average of each stat
// across the seasons found. A season without a line for the player is
// noted and left out.
func PlayerHistory(ctx context.Context, src HistorySource, name string, from, to int, dir string, logger *slog.Logger) (Result, error) {
	var result Result
	if from > to {
		return result, fmt.Errorf("player history: first season %d after last season %d", from, to)
	}

	player, err := ResolvePlayer(ctx, src, name)
	if err != nil {
		return result, fmt.Errorf("resolve %q: %w", name, err)
	}
	id := strconv.Itoa(player.ID)

	header := append([]string{"Player", "Season", "GP"}, historyStats...)
	header = append(header, provider.StatFGPct)

	var rows [][]string
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for season := from; season <= to; season++ {
		label := config.SeasonLabel(season)
		records, err := seasonRecords(ctx, src, season, &result, logger)
		if err != nil {
			return result, err
		}
		rec, ok := findPlayer(records, id, player.Name)
		if !ok {
			result.AddNotef("no %s line for %s", label, player.Name)
			logger.Warn("No season data for player", "player", player.Name, "season", label)
			continue
		}
		rates, err := engine.ComputeRates(rec, nil, historyStats...)
		if err != nil {
			result.Skip(label, player.Name, err)
			logger.Warn("Record skipped", "step", "history", "entity", player.Name, "season", label, "reason", err)
			continue
		}

		row := []string{player.Name, label, strconv.Itoa(rec.GamesPlayed)}
		for _, stat := range historyStats {
			v, ok := rates.Rates[stat]
			row = append(row, rateCell(v, ok))
			if ok {
				sums[stat] += v
				counts[stat]++
			}
		}
		pct, ok := fieldGoalPct(rec)
		row = append(row, pctCell(pct, ok))
		if ok {
			sums[provider.StatFGPct] += pct
			counts[provider.StatFGPct]++
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return result, fmt.Errorf("%w: %s %s to %s", ErrNoHistory, player.Name,
			config.SeasonLabel(from), config.SeasonLabel(to))
	}

	avg := []string{player.Name, "Average", ""}
	for _, stat := range historyStats {
		avg = append(avg, rateCell(mean(sums[stat], counts[stat])))
	}
	avg = append(avg, pctCell(mean(sums[provider.StatFGPct], counts[provider.StatFGPct])))
	rows = append(rows, avg)

	path := filepath.Join(dir, sink.Slug(player.Name)+"_all_seasons_stats.csv")
	if err := sink.WriteFile(path, func(w io.Writer) error { return sink.WriteRowsCSV(w, header, rows) }); err != nil {
		return result, err
	}
	result.Accepted = len(rows) - 1
	result.AddOutput(path)
	logger.Info("Player history written", "player", player.Name, "seasons", result.Accepted, "path", path)
	return result, nil
}

// findPlayer picks the player's record by ID, falling back to the name for
// sources keyed differently.
func findPlayer(records []engine.StatRecord, id, name string) (engine.StatRecord, bool) {
	for _, r := range records {
		if r.EntityID == id {
			return r, true
		}
	}
	for _, r := range records {
		if strings.EqualFold(r.EntityName, name) {
			return r, true
		}
	}
	return engine.StatRecord{}, false
}

// fieldGoalPct prefers the source's FG_PCT and derives it from makes and
// attempts otherwise.
func fieldGoalPct(r engine.StatRecord) (float64, bool) {
	if v, ok := r.Total(provider.StatFGPct); ok {
		return v, true
	}
	fgm, okM := r.Total(provider.StatFGM)
	fga, okA := r.Total(provider.StatFGA)
	if !okM || !okA || fga <= 0 {
		return 0, false
	}
	return fgm / fga, true
}

func mean(sum float64, n int) (float64, bool) {
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func pctCell(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
