package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/sink"
)

// ComparisonStats are the per-game rates a season comparison covers. The
// overall change is their plain sum.
var ComparisonStats = []string{
	provider.StatPoints, provider.StatRebounds, provider.StatAssists, provider.StatSteals, provider.StatBlocks,
}

// DefaultComparisonTop is how many improvements and declines are kept.
const DefaultComparisonTop = 25

func comparisonWeights() engine.Weights {
	w := make(engine.Weights, len(ComparisonStats))
	for _, s := range ComparisonStats {
		w[s] = 1
	}
	return w
}

// CompareSeasons writes the n biggest per-game improvements and declines
// between two seasons to dir.
func CompareSeasons(ctx context.Context, src SeasonSource, current, previous, n int, dir string, logger *slog.Logger) (Result, error) {
	var result Result

	cur, err := seasonRecords(ctx, src, current, &result, logger)
	if err != nil {
		return result, err
	}
	prev, err := seasonRecords(ctx, src, previous, &result, logger)
	if err != nil {
		return result, err
	}

	improvements, declines, report := engine.CompareSeasons(cur, prev, comparisonWeights(), n)
	logReport(logger, "compare", report)
	result.absorb(report)
	result.Accepted = report.Accepted
	logger.Info("Seasons compared", "current", config.SeasonLabel(current),
		"previous", config.SeasonLabel(previous), "players_in_both", report.Accepted)

	layout := sink.Comparison{
		Stats:         ComparisonStats,
		CurrentLabel:  config.SeasonLabel(current),
		PreviousLabel: config.SeasonLabel(previous),
	}
	files := []struct {
		name   string
		deltas []engine.SeasonDelta
	}{
		{fmt.Sprintf("top_%d_improvements.csv", n), improvements},
		{fmt.Sprintf("top_%d_declines.csv", n), declines},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		deltas := f.deltas
		err := sink.WriteFile(path, func(w io.Writer) error {
			return sink.WriteComparisonCSV(w, deltas, layout)
		})
		if err != nil {
			return result, err
		}
		result.AddOutput(path)
		logger.Info("Comparison written", "path", path, "players", len(deltas))
	}
	return result, nil
}

func seasonRecords(ctx context.Context, src SeasonSource, season int, result *Result, logger *slog.Logger) ([]engine.StatRecord, error) {
	label := config.SeasonLabel(season)
	logger.Info("Fetching season stats...", "season", label)
	table, err := src.SeasonPlayerTable(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetch season %s: %w", label, err)
	}
	records, report, err := engine.FromTable(table, engine.PlayerSchema)
	logReport(logger, "season "+label, report)
	result.absorb(report)
	if err != nil {
		return nil, fmt.Errorf("season %s: %w", label, err)
	}
	return records, nil
}
