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
	"github.com/albapepper/courtrank/internal/lookup"
	"github.com/albapepper/courtrank/internal/provider"
	"github.com/albapepper/courtrank/internal/sink"
)

// MaxWindow is the longest last-N window a player sheet accepts.
const MaxWindow = 30

// ErrInvalidWindow is returned for a window outside 1..MaxWindow.
var ErrInvalidWindow = errors.New("invalid game window")

// perGameLine is one row of a player stat sheet.
type perGameLine struct {
	Label string
	Stat  string
}

var perGameLines = []perGameLine{
	{"PPG", provider.StatPoints},
	{"RPG", provider.StatRebounds},
	{"APG", provider.StatAssists},
	{"SPG", provider.StatSteals},
	{"BPG", provider.StatBlocks},
	{"MPG", provider.StatMinutes},
	{"FGM", provider.StatFGM},
	{"FGA", provider.StatFGA},
	{"FG3M", provider.StatFG3M},
	{"FG3A", provider.StatFG3A},
	{"FTM", provider.StatFTM},
	{"FTA", provider.StatFTA},
	{"TO", provider.StatTurnovers},
	{"PF", provider.StatFouls},
	{"+/-", provider.StatPlusMinus},
}

// ParseWindow reads a game window: "1" through "30", or "season" for every
// game (returned as 0).
func ParseWindow(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "season" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxWindow {
		return 0, fmt.Errorf("%w: %q (want 1-%d or \"season\")", ErrInvalidWindow, s, MaxWindow)
	}
	return n, nil
}

func windowLabel(window int) string {
	if window > 0 {
		return fmt.Sprintf("Last %d Games", window)
	}
	return "Season"
}

// PlayerQuery selects a player's games.
type PlayerQuery struct {
	Name              string
	Season            int
	Window            int // last N games; 0 is the whole season
	IncludePostseason bool
}

// PlayerLast writes a player's per-game averages over a window as a
// Title/Stat sheet in dir.
func PlayerLast(ctx context.Context, src PlayerSource, q PlayerQuery, dir string, logger *slog.Logger) (Result, error) {
	var result Result

	player, rates, err := playerRates(ctx, src, q, &result, logger)
	if err != nil {
		return result, err
	}

	label := windowLabel(q.Window)
	rows := []sink.KeyValue{{Title: "Player", Value: player.Name}}
	for _, l := range perGameLines {
		v, ok := rates.Rates[l.Stat]
		if !ok {
			continue
		}
		rows = append(rows, sink.KeyValue{
			Title: label + " " + l.Label,
			Value: strconv.FormatFloat(engine.Round1(v), 'f', 1, 64),
		})
	}

	var name string
	if q.Window > 0 {
		name = fmt.Sprintf("%s_last_%d_games_stats.csv", sink.Slug(player.Name), q.Window)
	} else {
		name = fmt.Sprintf("%s_season_stats.csv", sink.Slug(player.Name))
	}
	path := filepath.Join(dir, name)
	if err := sink.WriteFile(path, func(w io.Writer) error { return sink.WriteKeyValueCSV(w, rows) }); err != nil {
		return result, err
	}
	result.Accepted = 1
	result.AddOutput(path)
	logger.Info("Player sheet written", "player", player.Name, "games", rates.GamesPlayed, "path", path)
	return result, nil
}

// PlayerVersus writes two players' per-game averages side by side, with
// each one's performance score under the given profile.
func PlayerVersus(ctx context.Context, src PlayerSource, a, b PlayerQuery, prof config.Profile, dir string, logger *slog.Logger) (Result, error) {
	var result Result

	pa, ra, err := playerRates(ctx, src, a, &result, logger)
	if err != nil {
		return result, err
	}
	pb, rb, err := playerRates(ctx, src, b, &result, logger)
	if err != nil {
		return result, err
	}

	header := []string{"Stat", pa.Name, pb.Name}
	rows := [][]string{{"Games", strconv.Itoa(ra.GamesPlayed), strconv.Itoa(rb.GamesPlayed)}}
	for _, l := range perGameLines {
		va, okA := ra.Rates[l.Stat]
		vb, okB := rb.Rates[l.Stat]
		if !okA && !okB {
			continue
		}
		rows = append(rows, []string{l.Label, rateCell(va, okA), rateCell(vb, okB)})
	}
	rows = append(rows, []string{
		"Performance Score",
		strconv.FormatFloat(engine.Round1(engine.ComputeScore(ra.Rates, prof.Weights)), 'f', 1, 64),
		strconv.FormatFloat(engine.Round1(engine.ComputeScore(rb.Rates, prof.Weights)), 'f', 1, 64),
	})

	name := fmt.Sprintf("%s_vs_%s_%s.csv", sink.Slug(pa.Name), sink.Slug(pb.Name), config.SeasonLabel(a.Season))
	path := filepath.Join(dir, name)
	if err := sink.WriteFile(path, func(w io.Writer) error { return sink.WriteRowsCSV(w, header, rows) }); err != nil {
		return result, err
	}
	result.Accepted = 2
	result.AddOutput(path)
	logger.Info("Comparison sheet written", "players", pa.Name+" vs "+pb.Name, "path", path)
	return result, nil
}

func rateCell(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(engine.Round1(v), 'f', 1, 64)
}

// ResolvePlayer searches src for name and insists on one exact match.
func ResolvePlayer(ctx context.Context, src PlayerSource, name string) (provider.Player, error) {
	candidates, err := src.SearchPlayers(ctx, name)
	if err != nil {
		return provider.Player{}, err
	}
	return lookup.Resolve(name, candidates)
}

// playerRates resolves the player, fetches the game log and averages the
// requested window. Rates cover every stat the log carries.
func playerRates(ctx context.Context, src PlayerSource, q PlayerQuery, result *Result, logger *slog.Logger) (provider.Player, engine.StatRecord, error) {
	player, err := ResolvePlayer(ctx, src, q.Name)
	if err != nil {
		return provider.Player{}, engine.StatRecord{}, fmt.Errorf("resolve %q: %w", q.Name, err)
	}
	logger.Info("Fetching game log...", "player", player.Name, "id", player.ID, "season", config.SeasonLabel(q.Season))

	table, err := src.PlayerGameLog(ctx, player.ID, q.Season, q.IncludePostseason)
	if err != nil {
		return player, engine.StatRecord{}, fmt.Errorf("game log for %s: %w", player.Name, err)
	}
	games, report, err := engine.FromTable(table, engine.PlayerSchema)
	logReport(logger, "game log", report)
	result.absorb(report)
	if err != nil {
		return player, engine.StatRecord{}, fmt.Errorf("game log for %s: %w", player.Name, err)
	}
	if q.Window > len(games) {
		result.AddNotef("%s has played %d games, fewer than the %d requested", player.Name, len(games), q.Window)
		logger.Warn("Fewer games than requested", "player", player.Name, "played", len(games), "requested", q.Window)
	}

	id := strconv.Itoa(player.ID)
	agg := engine.Aggregate(id, player.Name, games, q.Window)
	rates, err := engine.ComputeRates(agg, nil, allStatKeys(agg)...)
	if err != nil {
		return player, engine.StatRecord{}, fmt.Errorf("%s: %w", player.Name, err)
	}
	return player, rates, nil
}

// allStatKeys lists every total the record carries.
func allStatKeys(r engine.StatRecord) []string {
	keys := make([]string, 0, len(r.Totals))
	for k := range r.Totals {
		keys = append(keys, k)
	}
	return keys
}
