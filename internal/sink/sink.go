// Package sink persists ranked and classified output as delimited text.
//
// Leaderboards go through the LeaderboardWriter interface so the same
// pipeline can write CSV files, Postgres rows or both. The other shapes
// (season comparisons, key/value stat sheets, classified records) are plain
// CSV writers over an io.Writer.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/albapepper/courtrank/internal/engine"
)

// Leaderboard is one ranked list ready to persist.
type Leaderboard struct {
	Name    string // file-safe base name, e.g. "top_35_performances_reformatted"
	Profile string // scoring profile the entries were ranked with
	Period  string // "2024-25", "2025-01-14", an export file name...
	Entries []engine.RankedEntry
}

// LeaderboardWriter persists a leaderboard and returns where it went (a
// file path, a run ID).
type LeaderboardWriter interface {
	WriteLeaderboard(ctx context.Context, lb Leaderboard) (string, error)
}

// Mode selects where leaderboards go.
type Mode string

// Leaderboard destinations.
const (
	ModeCSV      Mode = "csv"
	ModePostgres Mode = "postgres"
	ModeBoth     Mode = "both"
)

// ParseMode reads a --sink value.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCSV, ModePostgres, ModeBoth:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sink %q (want csv, postgres or both)", s)
	}
}

// NeedsDB reports whether the mode writes to Postgres.
func (m Mode) NeedsDB() bool {
	return m == ModePostgres || m == ModeBoth
}

// Multi writes to every writer in order and stops at the first failure.
type Multi []LeaderboardWriter

// WriteLeaderboard implements LeaderboardWriter.
func (m Multi) WriteLeaderboard(ctx context.Context, lb Leaderboard) (string, error) {
	locations := make([]string, 0, len(m))
	for _, w := range m {
		loc, err := w.WriteLeaderboard(ctx, lb)
		if err != nil {
			return strings.Join(locations, ", "), err
		}
		locations = append(locations, loc)
	}
	return strings.Join(locations, ", "), nil
}

// CSVDir writes each leaderboard to Dir/<name>.csv.
type CSVDir struct {
	Dir string
}

// WriteLeaderboard implements LeaderboardWriter.
func (d CSVDir) WriteLeaderboard(_ context.Context, lb Leaderboard) (string, error) {
	if lb.Name == "" {
		return "", fmt.Errorf("leaderboard has no name")
	}
	path := filepath.Join(d.Dir, lb.Name+".csv")
	err := WriteFile(path, func(w io.Writer) error {
		return WriteLeaderboardCSV(w, lb.Entries)
	})
	return path, err
}

// WriteFile creates path (and its directory) and hands the open file to fn.
func WriteFile(path string, fn func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Slug turns a display name into a file-name fragment:
// "Shai Gilgeous-Alexander" -> "Shai_Gilgeous-Alexander".
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.Join(strings.Fields(name), "_") {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			continue
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unnamed"
	}
	return b.String()
}
