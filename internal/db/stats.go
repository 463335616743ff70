package db

import (
	"context"
	"fmt"

	"github.com/albapepper/courtrank/internal/config"
	"github.com/albapepper/courtrank/internal/provider"
)

// Sport is the sport key player rows are stored under.
const Sport = "NBA"

// seasonStatsSQL reads the per-game season averages an ingestion job seeded
// into player_stats.stats (BDL keys: pts, reb, gp...).
var seasonStatsSQL = `
	SELECT p.id, p.name, ps.stats
	FROM ` + config.PlayerStatsTable + ` ps
	JOIN ` + config.PlayersTable + ` p ON p.id = ps.player_id AND p.sport = ps.sport
	WHERE ps.sport = $1 AND ps.season = $2
	ORDER BY p.id`

// SeasonPlayerTable returns one row per player with season totals, built
// the same way as the BallDontLie source so both rank identically.
func (p *Pool) SeasonPlayerTable(ctx context.Context, season int) (*provider.Table, error) {
	rows, err := p.Query(ctx, seasonStatsSQL, Sport, season)
	if err != nil {
		return nil, fmt.Errorf("query season stats %d: %w", season, err)
	}
	defer rows.Close()

	table := provider.NewTable(provider.ColPlayerID, provider.ColPlayerName, provider.StatGP)
	for rows.Next() {
		var (
			id    int
			name  string
			stats map[string]interface{}
		)
		if err := rows.Scan(&id, &name, &stats); err != nil {
			return nil, fmt.Errorf("scan season stats: %w", err)
		}
		table.Append(seasonRow(id, name, stats, season))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read season stats %d: %w", season, err)
	}
	return table, nil
}

func seasonRow(id int, name string, stats map[string]interface{}, season int) map[string]interface{} {
	return provider.SeasonTotalsRow(provider.Player{ID: id, Name: name}, stats, season)
}
