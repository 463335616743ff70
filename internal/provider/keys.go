package provider

import (
	"sort"
	"strings"
)

// bdlStatKeys maps BallDontLie (and the player_stats JSON seeded from it)
// stat keys onto canonical column names. Keys not listed are dropped.
var bdlStatKeys = map[string]string{
	"gp":           StatGP,
	"games_played": StatGP,
	"min":          StatMinutes,
	"pts":          StatPoints,
	"reb":          StatRebounds,
	"oreb":         StatOffReb,
	"dreb":         StatDefReb,
	"ast":          StatAssists,
	"stl":          StatSteals,
	"blk":          StatBlocks,
	"tov":          StatTurnovers,
	"turnover":     StatTurnovers,
	"pf":           StatFouls,
	"plus_minus":   StatPlusMinus,
	"fgm":          StatFGM,
	"fga":          StatFGA,
	"fg3m":         StatFG3M,
	"fg3a":         StatFG3A,
	"ftm":          StatFTM,
	"fta":          StatFTA,
	"age":          StatAge,
	"w":            StatWins,
	"wins":         StatWins,
	"l":            StatLosses,
	"losses":       StatLosses,
	"fg_pct":       StatFGPct,
}

// perGameStats are the canonical columns that season-average endpoints
// report per game. SeasonTotalsRow multiplies these by GP.
var perGameStats = map[string]bool{
	StatMinutes:   true,
	StatPoints:    true,
	StatRebounds:  true,
	StatOffReb:    true,
	StatDefReb:    true,
	StatAssists:   true,
	StatSteals:    true,
	StatBlocks:    true,
	StatTurnovers: true,
	StatFouls:     true,
	StatPlusMinus: true,
	StatFGM:       true,
	StatFGA:       true,
	StatFG3M:      true,
	StatFG3A:      true,
	StatFTM:       true,
	StatFTA:       true,
}

// CanonicalStatKey returns the canonical column for a provider stat key.
func CanonicalStatKey(key string) (string, bool) {
	c, ok := bdlStatKeys[strings.ToLower(key)]
	return c, ok
}

// NormalizeStatKeys renames provider stat keys to canonical names.
// Filters out nil values and unknown keys.
func NormalizeStatKeys(stats map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(stats))
	for k, v := range stats {
		if v == nil {
			continue
		}
		if c, ok := CanonicalStatKey(k); ok {
			out[c] = v
		}
	}
	return out
}

// SeasonTotalsRow builds a table row from a player and its season averages.
// Per-game values are converted to season totals (average × GP) so the
// engine can treat every source as totals over a period. Values that cannot
// be read as numbers are passed through untouched for the engine to reject.
func SeasonTotalsRow(player Player, averages map[string]interface{}, season int) map[string]interface{} {
	stats := NormalizeStatKeys(averages)
	row := map[string]interface{}{
		ColPlayerID:   player.ID,
		ColPlayerName: player.Name,
	}
	if player.TeamAbbr != "" {
		row[ColTeamAbbr] = player.TeamAbbr
	}
	if player.DraftYear != nil {
		rookie := 0
		if *player.DraftYear == season {
			rookie = 1
		}
		row[StatRookie] = rookie
	}

	gp, gpOK := ExtractValue(stats[StatGP])
	for k, v := range stats {
		if !perGameStats[k] || !gpOK {
			row[k] = v
			continue
		}
		avg, ok := ExtractValue(v)
		if !ok {
			row[k] = v
			continue
		}
		row[k] = avg * gp
	}
	return row
}

// TeamTotalsRow builds a team table row from season stats. Like
// SeasonTotalsRow, per-game values become totals over GP; wins, losses and
// percentages pass through.
func TeamTotalsRow(ts TeamStats) map[string]interface{} {
	stats := NormalizeStatKeys(ts.Stats)
	row := map[string]interface{}{ColTeamID: ts.TeamID}
	if ts.Team != nil {
		row[ColTeamName] = ts.Team.Name
		if ts.Team.Abbreviation != "" {
			row[ColTeamAbbr] = ts.Team.Abbreviation
		}
	}

	gp, gpOK := ExtractValue(stats[StatGP])
	for k, v := range stats {
		avg, ok := ExtractValue(v)
		if !perGameStats[k] || !gpOK || !ok {
			row[k] = v
			continue
		}
		row[k] = avg * gp
	}
	return row
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
