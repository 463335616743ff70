// Package pipeline wires stats sources, the scoring engine and sinks into
// the fetch → transform → write flows each courtrank command runs.
//
// Every flow follows the same rules: a missing required column or a failed
// fetch aborts the flow; a bad record is skipped, logged and counted in the
// Result, and the rest of the batch carries on.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/sink"
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// SeasonSource returns one row of season totals per player. Both the
// BallDontLie handler and the Postgres pool implement it.
type SeasonSource interface {
	SeasonPlayerTable(ctx context.Context, season int) (*provider.Table, error)
}

// GameSource returns a day's games and their box scores.
type GameSource interface {
	GamesOn(ctx context.Context, date string) ([]provider.Game, error)
	BoxScoreTable(ctx context.Context, gameIDs []int) (*provider.Table, error)
}

// TeamSource returns one row of season totals per team.
type TeamSource interface {
	TeamSeasonTable(ctx context.Context, season int) (*provider.Table, error)
}

// PlayerSource finds players and their game logs.
type PlayerSource interface {
	SearchPlayers(ctx context.Context, name string) ([]provider.Player, error)
	PlayerGameLog(ctx context.Context, playerID, season int, includePostseason bool) (*provider.Table, error)
}

// --------------------------------------------------------------------------
// Result
// --------------------------------------------------------------------------

// Result tracks what a flow accepted, skipped and wrote.
type Result struct {
	engine.Report
	Outputs []string
}

// AddOutput records a written file or database run.
func (r *Result) AddOutput(location string) {
	r.Outputs = append(r.Outputs, location)
}

// Summary returns a human-readable summary of the flow.
func (r *Result) Summary() string {
	return fmt.Sprintf("%s outputs=%d", r.Report.Summary(), len(r.Outputs))
}

// absorb keeps a step's skips and notes without touching Accepted.
func (r *Result) absorb(step engine.Report) {
	r.Skipped = append(r.Skipped, step.Skipped...)
	r.Notes = append(r.Notes, step.Notes...)
}

// logReport logs every skipped record and note of one step, then the skip
// counts per reason.
func logReport(logger *slog.Logger, step string, report engine.Report) {
	for _, s := range report.Skipped {
		logger.Warn("Record skipped", "step", step, "entity", s.EntityName, "id", s.EntityID, "reason", s.Err)
	}
	for _, n := range report.Notes {
		logger.Warn("Data note", "step", step, "note", n)
	}
	if len(report.Skipped) > 0 {
		logger.Info("Skipped by reason", append([]any{"step", step}, ReasonCounts(report)...)...)
	}
}

// ReasonCounts returns alternating reason/count pairs for every skip
// reason that occurred, ready for slog.
func ReasonCounts(report engine.Report) []any {
	reasons := []struct {
		key string
		err error
	}{
		{"zero_games", engine.ErrDivisionUndefined},
		{"invalid_value", engine.ErrInvalidValue},
		{"non_finite", engine.ErrNonFinite},
	}
	var out []any
	for _, r := range reasons {
		if n := report.Count(r.err); n > 0 {
			out = append(out, r.key, n)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Ranking core
// --------------------------------------------------------------------------

// RankOptions picks the scoring profile and overrides its defaults.
type RankOptions struct {
	Profile  config.Profile
	Top      int // 0 uses the profile's
	MinGames int // 0 uses the profile's
}

func (o RankOptions) top() int {
	if o.Top > 0 {
		return o.Top
	}
	return o.Profile.Top
}

func (o RankOptions) minGames() int {
	if o.MinGames > 0 {
		return o.MinGames
	}
	return o.Profile.MinGames
}

// rankTable builds records from table and ranks them with opts.
func rankTable(table *provider.Table, schema engine.Schema, opts RankOptions) ([]engine.RankedEntry, engine.Report, error) {
	records, report, err := engine.FromTable(table, schema)
	if err != nil {
		return nil, report, err
	}

	if floor := opts.minGames(); floor > 0 {
		kept := engine.FilterMinGames(records, floor)
		if dropped := len(records) - len(kept); dropped > 0 {
			report.AddNotef("%d %s under %d games played left out", dropped, noun(schema), floor)
		}
		records = kept
	}

	entries, rankReport := engine.RankTop(records, opts.Profile.Weights, opts.top(),
		engine.RankOptions{Display: opts.Profile.Display})
	report.Then(rankReport)
	return entries, report, nil
}

func noun(schema engine.Schema) string {
	if schema == engine.TeamSchema {
		return "teams"
	}
	return "players"
}

// publish ranks table and hands the leaderboard to out.
func publish(ctx context.Context, table *provider.Table, schema engine.Schema, opts RankOptions, name, period string,
	out sink.LeaderboardWriter, logger *slog.Logger) (Result, error) {
	var result Result

	entries, report, err := rankTable(table, schema, opts)
	result.Report = report
	logReport(logger, "rank", report)
	if err != nil {
		return result, fmt.Errorf("rank %s: %w", period, err)
	}

	lb := sink.Leaderboard{Name: name, Profile: opts.Profile.Name, Period: period, Entries: entries}
	loc, err := out.WriteLeaderboard(ctx, lb)
	if err != nil {
		return result, fmt.Errorf("write leaderboard %s: %w", name, err)
	}
	result.AddOutput(loc)
	logger.Info("Leaderboard written", "name", name, "entries", len(entries), "to", loc)
	return result, nil
}
