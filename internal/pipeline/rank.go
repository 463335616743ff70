package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/provider/csvfile"
	"github.com/albapepper/courtrank/internal/provider/htmltable"
	"github.com/albapepper/courtrank/internal/sink"
)

// FileSource locates a saved stats export.
type FileSource struct {
	Dir        string
	Extensions []string // preference order, e.g. .csv before .html
	TableID    string   // HTML table id; empty takes the first table
	Aliases    map[string]string
}

// ReadExport finds the preferred export in the source directory and reads
// it. Traded players appear once per team plus a combined line first; only
// the first line per player is kept.
func (s FileSource) ReadExport() (string, *provider.Table, error) {
	path, err := provider.FindExport(s.Dir, s.Extensions)
	if err != nil {
		return "", nil, err
	}

	var table *provider.Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		table, err = csvfile.ReadFile(path, s.Aliases)
	case ".html", ".htm":
		table, err = htmltable.ParseFile(path, s.TableID, s.Aliases)
	default:
		return "", nil, fmt.Errorf("%s: unsupported export format", path)
	}
	if err != nil {
		return "", nil, err
	}
	return path, table, nil
}

// dedupeColumn is the identity column duplicates are detected on.
func dedupeColumn(table *provider.Table) string {
	if table.HasColumn(provider.ColPlayerID) {
		return provider.ColPlayerID
	}
	return provider.ColPlayerName
}

// RankFile ranks the players in a saved export.
func RankFile(ctx context.Context, src FileSource, opts RankOptions, out sink.LeaderboardWriter, logger *slog.Logger) (Result, error) {
	path, table, err := src.ReadExport()
	if err != nil {
		return Result{}, fmt.Errorf("read export: %w", err)
	}
	logger.Info("Export loaded", "path", path, "rows", table.Len())

	dropped := table.DedupeBy(dedupeColumn(table))
	if dropped > 0 {
		logger.Info("Per-team rows for traded players dropped", "count", dropped)
	}

	name := fmt.Sprintf("top_%d_performances_reformatted", opts.top())
	return publish(ctx, table, engine.PlayerSchema, opts, name, filepath.Base(path), out, logger)
}

// RankSeason ranks every player's season from src.
func RankSeason(ctx context.Context, src SeasonSource, season int, opts RankOptions, out sink.LeaderboardWriter, logger *slog.Logger) (Result, error) {
	label := config.SeasonLabel(season)
	logger.Info("Fetching season stats...", "season", label)
	table, err := src.SeasonPlayerTable(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("fetch season %s: %w", label, err)
	}
	logger.Info("Season stats fetched", "season", label, "players", table.Len())

	name := fmt.Sprintf("top_%d_players_%s", opts.top(), label)
	return publish(ctx, table, engine.PlayerSchema, opts, name, label, out, logger)
}

// RankTeams ranks every team's season from src.
func RankTeams(ctx context.Context, src TeamSource, season int, opts RankOptions, out sink.LeaderboardWriter, logger *slog.Logger) (Result, error) {
	label := config.SeasonLabel(season)
	logger.Info("Fetching team stats...", "season", label)
	table, err := src.TeamSeasonTable(ctx, season)
	if err != nil {
		return Result{}, fmt.Errorf("fetch team stats %s: %w", label, err)
	}
	logger.Info("Team stats fetched", "season", label, "teams", table.Len())

	name := fmt.Sprintf("top_%d_teams_%s", opts.top(), label)
	return publish(ctx, table, engine.TeamSchema, opts, name, label, out, logger)
}

// RankDay ranks single-game performances on date (YYYY-MM-DD).
func RankDay(ctx context.Context, src GameSource, date string, opts RankOptions, out sink.LeaderboardWriter, logger *slog.Logger) (Result, error) {
	table, games, err := boxScores(ctx, src, date, logger)
	if err != nil {
		return Result{}, err
	}
	if len(games) == 0 {
		logger.Info("No finished games", "date", date)
	}
	name := "top_performances_" + date
	return publish(ctx, table, engine.PlayerSchema, opts, name, date, out, logger)
}

// boxScores fetches the finished games on date and their box scores.
func boxScores(ctx context.Context, src GameSource, date string, logger *slog.Logger) (*provider.Table, []provider.Game, error) {
	logger.Info("Fetching games...", "date", date)
	all, err := src.GamesOn(ctx, date)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch games on %s: %w", date, err)
	}
	games := finished(all)
	if skipped := len(all) - len(games); skipped > 0 {
		logger.Info("Games without a score left out", "date", date, "count", skipped)
	}

	ids := make([]int, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	table, err := src.BoxScoreTable(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch box scores for %s: %w", date, err)
	}
	logger.Info("Box scores fetched", "date", date, "games", len(games), "player_lines", table.Len())
	return table, games, nil
}

// finished keeps games that have a score.
func finished(games []provider.Game) []provider.Game {
	out := make([]provider.Game, 0, len(games))
	for _, g := range games {
		if g.HomeScore+g.VisitorScore > 0 {
			out = append(out, g)
		}
	}
	return out
}
