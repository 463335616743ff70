// Command courtrank scores and ranks NBA players from saved exports, the
// BallDontLie API or a Postgres mirror.
//
// Usage:
//
//	courtrank rank file --profile monthly --top 35
//	courtrank rank season --season 2024 --sink both
//	courtrank rank day --date yesterday
//	courtrank rank teams --season 2024
//	courtrank report daily --date 2025-01-14
//	courtrank compare seasons --current 2024 --previous 2023
//	courtrank player last LeBron James --games 10
//	courtrank player versus "Jayson Tatum" "Jaylen Brown"
//	courtrank player history Nikola Jokic --from 2022 --to 2024
//	courtrank db init
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/db"
	"github.com/albapepper/courtrank/internal/pipeline"
	"github.com/albapepper/courtrank/internal/provider/bdl"
	"github.com/albapepper/courtrank/internal/sink"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "courtrank",
		Short:         "NBA performance scoring and ranking CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(rankCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(playerCmd())
	root.AddCommand(dbCmd())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// rank command
// --------------------------------------------------------------------------

// rankFlags are shared by every rank subcommand.
type rankFlags struct {
	profile  string
	top      int
	minGames int
	sink     string
}

func (f *rankFlags) register(cmd *cobra.Command, defaultProfile string) {
	cmd.Flags().StringVar(&f.profile, "profile", defaultProfile, "Scoring profile (basic, monthly, season, game, team or one from SCORING_PROFILE_FILE)")
	cmd.Flags().IntVar(&f.top, "top", 0, "Leaderboard size; 0 uses the profile's")
	cmd.Flags().IntVar(&f.minGames, "min-games", 0, "Leave out players with fewer games; 0 uses the profile's")
	cmd.Flags().StringVar(&f.sink, "sink", "csv", "Where to write the leaderboard (csv, postgres, both)")
}


func (f *rankFlags) options(a *app) (pipeline.RankOptions, error) {
	prof, err := a.profiles.Profile(f.profile)
	if err != nil {
		return pipeline.RankOptions{}, err
	}
	return pipeline.RankOptions{Profile: prof, Top: f.top, MinGames: f.minGames}, nil
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank players or teams by weighted per-game performance",
	}
	cmd.AddCommand(rankFileCmd())
	cmd.AddCommand(rankSeasonCmd())
	cmd.AddCommand(rankDayCmd())
	cmd.AddCommand(rankTeamsCmd())
	return cmd
}

func rankFileCmd() *cobra.Command {
	var (
		flags   rankFlags
		dir     string
		tableID string
	)
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Rank the players in a saved CSV or HTML export",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := sink.ParseMode(flags.sink)
			if err != nil {
				return err
			}
			return run(mode.NeedsDB(), func(ctx context.Context, a *app) error {
				opts, err := flags.options(a)
				if err != nil {
					return err
				}
				out, err := a.leaderboardWriter(ctx, mode)
				if err != nil {
					return err
				}
				if dir == "" {
					dir = a.cfg.StorageDir
				}
				src := pipeline.FileSource{
					Dir:        dir,
					Extensions: a.cfg.StorageExtensions,
					TableID:    tableID,
					Aliases:    a.profiles.HeaderAliases,
				}
				start := time.Now()
				result, err := pipeline.RankFile(ctx, src, opts, out, logger)
				finish("File ranking", start, result)
				return err
			})
		},
	}
	flags.register(cmd, config.ProfileMonthly)
	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding the export (default STORAGE_DIR)")
	cmd.Flags().StringVar(&tableID, "table-id", "", "HTML table id; empty takes the first table")
	return cmd
}

func rankSeasonCmd() *cobra.Command {
	var (
		flags  rankFlags
		season int
		fromDB bool
	)
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Rank every player's season",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := sink.ParseMode(flags.sink)
			if err != nil {
				return err
			}
			return run(mode.NeedsDB() || fromDB, func(ctx context.Context, a *app) error {
				opts, err := flags.options(a)
				if err != nil {
					return err
				}
				out, err := a.leaderboardWriter(ctx, mode)
				if err != nil {
					return err
				}
				var src pipeline.SeasonSource = a.pool
				if !fromDB {
					if src, err = a.nba(); err != nil {
						return err
					}
				}
				start := time.Now()
				result, err := pipeline.RankSeason(ctx, src, a.season(season), opts, out, logger)
				finish("Season ranking", start, result)
				return err
			})
		},
	}
	flags.register(cmd, config.ProfileSeason)
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (default CURRENT_SEASON)")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "Read season totals from Postgres instead of BallDontLie")
	return cmd
}

func rankDayCmd() *cobra.Command {
	var (
		flags rankFlags
		date  string
	)
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Rank single-game performances on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := pipeline.ResolveDate(date, time.Now())
			if err != nil {
				return err
			}
			mode, err := sink.ParseMode(flags.sink)
			if err != nil {
				return err
			}
			return run(mode.NeedsDB(), func(ctx context.Context, a *app) error {
				opts, err := flags.options(a)
				if err != nil {
					return err
				}
				out, err := a.leaderboardWriter(ctx, mode)
				if err != nil {
					return err
				}
				handler, err := a.nba()
				if err != nil {
					return err
				}
				start := time.Now()
				result, err := pipeline.RankDay(ctx, handler, day, opts, out, logger)
				finish("Day ranking", start, result)
				return err
			})
		},
	}
	flags.register(cmd, config.ProfileGame)
	cmd.Flags().StringVar(&date, "date", "yesterday", "Day to rank (today, yesterday or YYYY-MM-DD)")
	return cmd
}

func rankTeamsCmd() *cobra.Command {
	var (
		flags  rankFlags
		season int
	)
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Rank every team's season",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := sink.ParseMode(flags.sink)
			if err != nil {
				return err
			}
			return run(mode.NeedsDB(), func(ctx context.Context, a *app) error {
				opts, err := flags.options(a)
				if err != nil {
					return err
				}
				out, err := a.leaderboardWriter(ctx, mode)
				if err != nil {
					return err
				}
				handler, err := a.nba()
				if err != nil {
					return err
				}
				start := time.Now()
				result, err := pipeline.RankTeams(ctx, handler, a.season(season), opts, out, logger)
				finish("Team ranking", start, result)
				return err
			})
		},
	}
	flags.register(cmd, config.ProfileTeam)
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (default CURRENT_SEASON)")
	return cmd
}

// --------------------------------------------------------------------------
// report command
// --------------------------------------------------------------------------

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write text reports",
	}
	cmd.AddCommand(reportDailyCmd())
	return cmd
}

func reportDailyCmd() *cobra.Command {
	var (
		date, dir string
		season    int
	)
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Write the daily report: standouts, game trends, player watches and team stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := pipeline.ResolveDate(date, time.Now())
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, a *app) error {
				handler, err := a.nba()
				if err != nil {
					return err
				}
				if dir == "" {
					dir = a.cfg.ReportsDir
				}
				start := time.Now()
				result, err := pipeline.DailyReport(ctx, handler, day, a.season(season), a.profiles, dir, logger)
				finish("Daily report", start, result)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "yesterday", "Report day (today, yesterday or YYYY-MM-DD)")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default REPORTS_DIR)")
	cmd.Flags().IntVar(&season, "season", 0, "Season for the team stats section (default CURRENT_SEASON)")
	return cmd
}

// --------------------------------------------------------------------------
// compare command
// --------------------------------------------------------------------------

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare players across periods",
	}
	cmd.AddCommand(compareSeasonsCmd())
	return cmd
}

func compareSeasonsCmd() *cobra.Command {
	var (
		current, previous, top int
		fromDB                 bool
	)
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "List the biggest per-game improvements and declines between two seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(fromDB, func(ctx context.Context, a *app) error {
				cur := a.season(current)
				prev := previous
				if prev == 0 {
					prev = cur - 1
				}
				var src pipeline.SeasonSource = a.pool
				if !fromDB {
					handler, err := a.nba()
					if err != nil {
						return err
					}
					src = handler
				}
				start := time.Now()
				result, err := pipeline.CompareSeasons(ctx, src, cur, prev, top, a.cfg.OutputDir, logger)
				finish("Season comparison", start, result)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&current, "current", 0, "Current season start year (default CURRENT_SEASON)")
	cmd.Flags().IntVar(&previous, "previous", 0, "Previous season start year (default current - 1)")
	cmd.Flags().IntVar(&top, "top", pipeline.DefaultComparisonTop, "Players listed per direction")
	cmd.Flags().BoolVar(&fromDB, "from-db", false, "Read season totals from Postgres instead of BallDontLie")
	return cmd
}

// --------------------------------------------------------------------------
// player command
// --------------------------------------------------------------------------

func playerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Per-game stat sheets for individual players",
	}
	cmd.AddCommand(playerLastCmd())
	cmd.AddCommand(playerVersusCmd())
	cmd.AddCommand(playerHistoryCmd())
	return cmd
}

func playerLastCmd() *cobra.Command {
	var (
		games      string
		season     int
		postseason bool
	)
	cmd := &cobra.Command{
		Use:   "last NAME",
		Short: "Write a player's averages over the last N games (1-30) or the season",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := pipeline.ParseWindow(games)
			if err != nil {
				return err
			}
			return run(false, func(ctx context.Context, a *app) error {
				handler, err := a.nba()
				if err != nil {
					return err
				}
				q := pipeline.PlayerQuery{
					Name:              strings.Join(args, " "),
					Season:            a.season(season),
					Window:            window,
					IncludePostseason: postseason || a.cfg.IncludePostseason,
				}
				start := time.Now()
				result, err := pipeline.PlayerLast(ctx, handler, q, a.cfg.OutputDir, logger)
				finish("Player sheet", start, result)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&games, "games", "10", "Games to average (1-30) or \"season\"")
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (default CURRENT_SEASON)")
	cmd.Flags().BoolVar(&postseason, "postseason", false, "Include playoff games")
	return cmd
}

func playerVersusCmd() *cobra.Command {
	var (
		profile    string
		season     int
		postseason bool
	)
	cmd := &cobra.Command{
		Use:   "versus NAME NAME",
		Short: "Write two players' season averages side by side",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				prof, err := a.profiles.Profile(profile)
				if err != nil {
					return err
				}
				handler, err := a.nba()
				if err != nil {
					return err
				}
				s := a.season(season)
				post := postseason || a.cfg.IncludePostseason
				pa := pipeline.PlayerQuery{Name: args[0], Season: s, IncludePostseason: post}
				pb := pipeline.PlayerQuery{Name: args[1], Season: s, IncludePostseason: post}
				start := time.Now()
				result, err := pipeline.PlayerVersus(ctx, handler, pa, pb, prof, a.cfg.OutputDir, logger)
				finish("Player comparison", start, result)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&profile, "profile", config.ProfileBasic, "Scoring profile for the performance score row")
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (default CURRENT_SEASON)")
	cmd.Flags().BoolVar(&postseason, "postseason", false, "Include playoff games")
	return cmd
}

func playerHistoryCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "history NAME",
		Short: "Write a player's per-game averages season by season, with the average across them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(false, func(ctx context.Context, a *app) error {
				handler, err := a.nba()
				if err != nil {
					return err
				}
				last := a.season(to)
				first := from
				if first == 0 {
					first = last - pipeline.HistorySeasons + 1
				}
				start := time.Now()
				result, err := pipeline.PlayerHistory(ctx, handler, strings.Join(args, " "), first, last, a.cfg.OutputDir, logger)
				finish("Player history", start, result)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First season start year (default two seasons before --to)")
	cmd.Flags().IntVar(&to, "to", 0, "Last season start year (default CURRENT_SEASON)")
	return cmd
}

// --------------------------------------------------------------------------
// db command
// --------------------------------------------------------------------------

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the Postgres leaderboard tables",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the leaderboard tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(true, func(ctx context.Context, a *app) error {
				if err := a.pool.HealthCheck(ctx); err != nil {
					return fmt.Errorf("health check: %w", err)
				}
				if err := a.pool.EnsureSchema(ctx); err != nil {
					return err
				}
				logger.Info("Leaderboard tables ready",
					"runs", config.LeaderboardRunsTable, "entries", config.LeaderboardEntriesTable)
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// app carries what every command needs once setup has run. pool is nil
// unless the command asked for the database.
type app struct {
	cfg      *config.Config
	profiles *config.Profiles
	pool     *db.Pool
}

// run handles config and profile loading, the optional DB connection, and
// context cancellation.
func run(withDB bool, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	profiles, err := config.LoadProfiles(cfg.ProfileFile)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	a := &app{cfg: cfg, profiles: profiles}

	if withDB {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		a.pool = pool
	}

	return fn(ctx, a)
}

// nba builds the BallDontLie handler from config.
func (a *app) nba() (*bdl.NBAHandler, error) {
	if err := a.cfg.RequireBDL(); err != nil {
		return nil, err
	}
	retry := bdl.DefaultRetry()
	retry.MaxRetries = a.cfg.BDLMaxRetries
	retry.Backoff = a.cfg.BDLBackoff
	return bdl.NewNBAHandler(bdl.ClientOptions{
		BaseURL:           a.cfg.BDLBaseURL,
		APIKey:            a.cfg.BDLAPIKey,
		RequestsPerMinute: a.cfg.BDLRequestsPerMinute,
		Timeout:           a.cfg.BDLTimeout,
		Retry:             retry,
	}, logger), nil
}

// season returns the flag value, or CURRENT_SEASON when unset.
func (a *app) season(flag int) int {
	if flag > 0 {
		return flag
	}
	return a.cfg.CurrentSeason
}

// leaderboardWriter builds the sink for mode. Postgres sinks create their
// tables on first use.
func (a *app) leaderboardWriter(ctx context.Context, mode sink.Mode) (sink.LeaderboardWriter, error) {
	files := sink.CSVDir{Dir: a.cfg.OutputDir}
	if !mode.NeedsDB() {
		return files, nil
	}
	if err := a.pool.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	pg := db.NewLeaderboardSink(a.pool)
	if mode == sink.ModePostgres {
		return pg, nil
	}
	return sink.Multi{files, pg}, nil
}

// finish logs how a flow went, including partial results of a failed one.
func finish(what string, start time.Time, result pipeline.Result) {
	logger.Info(what+" finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"summary", result.Summary())
	if len(result.Skipped) > 0 {
		logger.Info("Skips by reason", pipeline.ReasonCounts(result.Report)...)
	}
	for _, out := range result.Outputs {
		logger.Info("Output written", "location", out)
	}
}
