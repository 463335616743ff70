// Package config provides centralized configuration loaded from environment
// variables, plus the scoring profiles every courtrank command ranks with.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Table names — single source of truth for the Postgres source and sink
// --------------------------------------------------------------------------

const (
	PlayersTable            = "players"
	PlayerStatsTable        = "player_stats"
	LeaderboardRunsTable    = "leaderboard_runs"
	LeaderboardEntriesTable = "leaderboard_entries"
)

// BDLBaseURL is the BallDontLie NBA API root.
const BDLBaseURL = "https://api.balldontlie.io/v1"

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// BallDontLie
	BDLAPIKey            string
	BDLBaseURL           string
	BDLRequestsPerMinute int
	BDLMaxRetries        int
	BDLBackoff           time.Duration
	BDLTimeout           time.Duration

	// Database (optional; only --from-db and --sink postgres need it)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// IncludePostseason keeps playoff games in player game logs.
	IncludePostseason bool

	// Filesystem layout
	OutputDir  string
	ReportsDir string
	StorageDir string

	// StorageExtensions are the export formats rank file looks for, in
	// preference order.
	StorageExtensions []string

	// Season is the start year of the current season (2024 means 2024-25).
	CurrentSeason int

	// ProfileFile optionally overrides the built-in scoring profiles.
	ProfileFile string

	LogLevel slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	level, err := parseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BDLAPIKey:            envOr("BALLDONTLIE_API_KEY", ""),
		BDLBaseURL:           envOr("BDL_BASE_URL", BDLBaseURL),
		BDLRequestsPerMinute: envInt("BDL_REQUESTS_PER_MINUTE", 600),
		BDLMaxRetries:        envInt("BDL_MAX_RETRIES", 5),
		BDLBackoff:           time.Duration(envInt("BDL_BACKOFF_SECONDS", 2)) * time.Second,
		BDLTimeout:           time.Duration(envInt("BDL_TIMEOUT_SECONDS", 120)) * time.Second,

		DatabaseURL:    envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", "")),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		IncludePostseason: envBool("INCLUDE_POSTSEASON", false),

		OutputDir:         envOr("OUTPUT_DIR", "output"),
		ReportsDir:        envOr("REPORTS_DIR", "reports/daily"),
		StorageDir:        envOr("STORAGE_DIR", "storage"),
		StorageExtensions: envList("STORAGE_EXTENSIONS", []string{".csv", ".html", ".htm"}),

		CurrentSeason: envInt("CURRENT_SEASON", 2024),
		ProfileFile:   envOr("SCORING_PROFILE_FILE", ""),
		LogLevel:      level,
	}

	if cfg.BDLRequestsPerMinute <= 0 {
		return nil, fmt.Errorf("BDL_REQUESTS_PER_MINUTE must be positive, got %d", cfg.BDLRequestsPerMinute)
	}
	if cfg.BDLMaxRetries < 0 {
		return nil, fmt.Errorf("BDL_MAX_RETRIES must not be negative, got %d", cfg.BDLMaxRetries)
	}
	return cfg, nil
}

// RequireBDL returns an error when no BallDontLie API key is configured.
func (c *Config) RequireBDL() error {
	if c.BDLAPIKey == "" {
		return fmt.Errorf("BALLDONTLIE_API_KEY is required")
	}
	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or NEON_DATABASE_URL must be set")
	}
	return nil
}

// SeasonLabel renders a season start year the way the league writes it:
// 2024 -> "2024-25".
func SeasonLabel(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
