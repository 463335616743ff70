package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/sink"
)

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.LeaderboardRunsTable + ` (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		profile    TEXT NOT NULL,
		period     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.LeaderboardEntriesTable + ` (
		run_id       UUID NOT NULL REFERENCES ` + config.LeaderboardRunsTable + `(id) ON DELETE CASCADE,
		rank         INTEGER NOT NULL,
		entity_id    TEXT NOT NULL,
		entity_name  TEXT NOT NULL,
		games_played INTEGER NOT NULL,
		formatted    TEXT NOT NULL,
		score        DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, rank)
	)`,
}

var entryColumns = []string{"run_id", "rank", "entity_id", "entity_name", "games_played", "formatted", "score"}

// EnsureSchema creates the leaderboard tables if they do not exist.
func (p *Pool) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// LeaderboardSink stores leaderboards as one run row plus one row per entry.
type LeaderboardSink struct {
	pool  *Pool
	newID func() uuid.UUID
}

// NewLeaderboardSink returns a sink writing through pool.
func NewLeaderboardSink(pool *Pool) *LeaderboardSink {
	return &LeaderboardSink{pool: pool, newID: uuid.New}
}

// WriteLeaderboard implements sink.LeaderboardWriter. The run and its
// entries are written in one transaction; the returned location is the run
// ID.
func (s *LeaderboardSink) WriteLeaderboard(ctx context.Context, lb sink.Leaderboard) (string, error) {
	runID := s.newID()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO `+config.LeaderboardRunsTable+` (id, name, profile, period) VALUES ($1, $2, $3, $4)`,
		runID, lb.Name, lb.Profile, lb.Period,
	)
	if err != nil {
		return "", fmt.Errorf("insert leaderboard run: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{config.LeaderboardEntriesTable},
		entryColumns,
		pgx.CopyFromRows(entryRows(runID, lb)),
	)
	if err != nil {
		return "", fmt.Errorf("copy leaderboard entries: %w", err)
	}
	if int(n) != len(lb.Entries) {
		return "", fmt.Errorf("copy leaderboard entries: wrote %d of %d", n, len(lb.Entries))
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit leaderboard: %w", err)
	}
	return "run " + runID.String(), nil
}

// entryRows lays entries out in entryColumns order. The stored score is the
// unrounded ranking score.
func entryRows(runID uuid.UUID, lb sink.Leaderboard) [][]interface{} {
	rows := make([][]interface{}, 0, len(lb.Entries))
	for _, e := range lb.Entries {
		rows = append(rows, []interface{}{
			runID, e.Rank, e.EntityID, e.EntityName, e.GamesPlayed, e.Formatted, e.Score,
		})
	}
	return rows
}
