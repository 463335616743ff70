package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/report"
	"github.com/albapepper/courtrank/internal/sink"
)

// Daily report section sizes.
const (
	GameTrendCount = 3 // blowouts and close games shown
	WatchCount     = 5 // rookie and young players shown
)

var standoutColumns = []string{
	provider.StatPoints, provider.StatRebounds, provider.StatAssists, provider.StatSteals, provider.StatBlocks,
}

// DailySource serves everything the daily report reads: the day's games
// and box scores, plus team season stats.
type DailySource interface {
	GameSource
	TeamSource
}

// StandoutsFileName is the CSV export of date's standout performances.
func StandoutsFileName(date string) string {
	return "standouts_" + date + ".csv"
}

// DailyReport builds the report for date from src and writes it to dir,
// with the standout performances also exported as CSV. season picks the
// team stats shown. A failed team stats fetch leaves that section out and
// is noted; any other fetch failure aborts.
func DailyReport(ctx context.Context, src DailySource, date string, season int, profiles *config.Profiles, dir string, logger *slog.Logger) (Result, error) {
	var result Result

	standout, err := profiles.ThresholdTable(config.ThresholdsStandout)
	if err != nil {
		return result, err
	}
	rookie, err := profiles.ThresholdTable(config.ThresholdsRookie)
	if err != nil {
		return result, err
	}
	young, err := profiles.ThresholdTable(config.ThresholdsYoung)
	if err != nil {
		return result, err
	}
	game, err := profiles.Profile(config.ProfileGame)
	if err != nil {
		return result, err
	}

	table, games, err := boxScores(ctx, src, date, logger)
	if err != nil {
		return result, err
	}
	d := report.Daily{Date: date}

	// 1. Game trends
	diffs, gameReport := engine.PairGames(scoreRows(games))
	logReport(logger, "games", gameReport)
	result.absorb(gameReport)
	d.Blowouts, d.CloseGames = engine.TopDiffs(diffs, GameTrendCount)

	// 2. Player lines
	records, recReport, err := engine.FromTable(table, engine.PlayerSchema)
	logReport(logger, "box scores", recReport)
	result.absorb(recReport)
	if err != nil {
		return result, fmt.Errorf("box scores for %s: %w", date, err)
	}
	result.Accepted = len(records)

	standouts, classReport := engine.ClassifyAll(records, standout)
	logReport(logger, "standouts", classReport)
	result.absorb(classReport)
	d.Standouts = standouts

	rookies, rookieReport := engine.ClassifyAll(records, rookie)
	logReport(logger, "rookies", rookieReport)
	result.absorb(rookieReport)
	d.Rookies = leaders(rookies, provider.StatPoints, WatchCount)

	if d.YoungKnown = carries(records, provider.StatAge); d.YoungKnown {
		youngsters, youngReport := engine.ClassifyAll(records, young)
		logReport(logger, "young players", youngReport)
		result.absorb(youngReport)
		d.Young = leaders(youngsters, provider.StatPoints, WatchCount)
	}

	// 3. Team season stats
	d.Teams, d.TeamsKnown = teamStandings(ctx, src, season, &result, logger)

	// 4. Top performances
	top, rankReport := engine.RankTop(records, game.Weights, game.Top, engine.RankOptions{Display: game.Display})
	logReport(logger, "top performances", rankReport)
	result.absorb(rankReport)
	d.Top = top

	path, err := report.WriteFile(dir, d)
	if err != nil {
		return result, err
	}
	result.AddOutput(path)
	logger.Info("Daily report written", "date", date, "path", path,
		"standouts", len(d.Standouts), "games", len(diffs))

	csvPath := filepath.Join(dir, StandoutsFileName(date))
	err = sink.WriteFile(csvPath, func(w io.Writer) error {
		return sink.WriteClassifiedCSV(w, d.Standouts, standoutColumns)
	})
	if err != nil {
		return result, err
	}
	result.AddOutput(csvPath)
	return result, nil
}

// teamStandings returns the season's teams, most wins first. The bool is
// false when the team stats could not be fetched or read.
func teamStandings(ctx context.Context, src TeamSource, season int, result *Result, logger *slog.Logger) ([]engine.StatRecord, bool) {
	label := config.SeasonLabel(season)
	table, err := src.TeamSeasonTable(ctx, season)
	if err != nil {
		logger.Warn("Team stats unavailable", "season", label, "error", err)
		result.AddNotef("team stats %s: %v", label, err)
		return nil, false
	}
	records, teamReport, err := engine.FromTable(table, engine.TeamSchema)
	logReport(logger, "team stats", teamReport)
	result.absorb(teamReport)
	if err != nil {
		logger.Warn("Team stats unreadable", "season", label, "error", err)
		result.AddNotef("team stats %s: %v", label, err)
		return nil, false
	}
	sortByTotal(records, provider.StatWins)
	return records, true
}

// scoreRows splits each game into its home and away score rows.
func scoreRows(games []provider.Game) []engine.GameScoreRow {
	rows := make([]engine.GameScoreRow, 0, 2*len(games))
	for _, g := range games {
		id := strconv.Itoa(g.ID)
		rows = append(rows,
			engine.GameScoreRow{GameID: id, Side: engine.SideHome, Team: g.HomeTeam, Points: float64(g.HomeScore)},
			engine.GameScoreRow{GameID: id, Side: engine.SideAway, Team: g.VisitorTeam, Points: float64(g.VisitorScore)},
		)
	}
	return rows
}

// leaders returns the n records with the highest stat total, ties in input
// order. Records without the stat sort last.
func leaders(items []engine.Classified, stat string, n int) []engine.StatRecord {
	records := make([]engine.StatRecord, len(items))
	for i, c := range items {
		records[i] = c.Record
	}
	sortByTotal(records, stat)
	if len(records) > n {
		records = records[:n]
	}
	return records
}

// sortByTotal orders records by stat total, highest first, ties in input
// order. Records without the stat sort last.
func sortByTotal(records []engine.StatRecord, stat string) {
	value := func(r engine.StatRecord) float64 {
		if v, ok := r.Total(stat); ok {
			return v
		}
		return math.Inf(-1)
	}
	sort.SliceStable(records, func(i, j int) bool { return value(records[i]) > value(records[j]) })
}

// carries reports whether any record has a value for stat.
func carries(records []engine.StatRecord, stat string) bool {
	for _, r := range records {
		if _, ok := r.Total(stat); ok {
			return true
		}
	}
	return false
}
