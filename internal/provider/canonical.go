// Package provider defines canonical data types that all stats sources
// normalize into. These structs are the contract between source handlers and
// the scoring pipeline: sources output these, the engine reads them.
//
// Adding a new source means implementing functions that return these types.
// The engine and the sinks never change.
package provider

// --------------------------------------------------------------------------
// Canonical column names
// --------------------------------------------------------------------------

// Identity columns.
const (
	ColPlayerID   = "PLAYER_ID"
	ColPlayerName = "PLAYER_NAME"
	ColTeamID     = "TEAM_ID"
	ColTeamName   = "TEAM_NAME"
	ColTeamAbbr   = "TEAM_ABBREVIATION"
	ColGameID     = "GAME_ID"
	ColGameDate   = "GAME_DATE"
)

// Stat columns. Counting stats are period totals; AGE and ROOKIE are
// attributes carried alongside so threshold tables can reference them.
const (
	StatGP        = "GP"
	StatMinutes   = "MIN"
	StatPoints    = "PTS"
	StatRebounds  = "REB"
	StatOffReb    = "OREB"
	StatDefReb    = "DREB"
	StatAssists   = "AST"
	StatSteals    = "STL"
	StatBlocks    = "BLK"
	StatTurnovers = "TOV"
	StatFouls     = "PF"
	StatPlusMinus = "PLUS_MINUS"
	StatFGM       = "FGM"
	StatFGA       = "FGA"
	StatFG3M      = "FG3M"
	StatFG3A      = "FG3A"
	StatFTM       = "FTM"
	StatFTA       = "FTA"
	StatAge       = "AGE"
	StatRookie    = "ROOKIE"
)

// Team season columns. W and L are season counts; FG_PCT is a ratio and
// is never scaled by games played.
const (
	StatWins   = "W"
	StatLosses = "L"
	StatFGPct  = "FG_PCT"
)

// --------------------------------------------------------------------------
// Table — the shape every stats source returns
// --------------------------------------------------------------------------

// Table is a set of named columns with one row per entity. Cell values keep
// whatever type the source produced (float64, int, string, nil) and are
// normalized later with ExtractValue.
type Table struct {
	Columns []string
	Rows    []map[string]interface{}
}

// NewTable creates an empty table with the given leading columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row, registering any column not seen before in first-seen
// order.
func (t *Table) Append(row map[string]interface{}) {
	for _, key := range sortedKeys(row) {
		if !t.HasColumn(key) {
			t.Columns = append(t.Columns, key)
		}
	}
	t.Rows = append(t.Rows, row)
}

// DedupeBy keeps the first row for each value of col and returns how many
// rows were dropped. Rows without a value in col are always kept. Season
// exports list a traded player's combined line first, then one line per team.
func (t *Table) DedupeBy(col string) int {
	seen := make(map[string]bool, len(t.Rows))
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		key, ok := row[col].(string)
		if !ok || key == "" {
			kept = append(kept, row)
			continue
		}
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	t.Rows = kept
	return dropped
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// --------------------------------------------------------------------------
// Entities
// --------------------------------------------------------------------------

// Team is the canonical team profile.
type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// TeamStats is the canonical shape for a team's season statistics.
// Stats is a flat map of canonical stat key to value.
type TeamStats struct {
	TeamID int                    `json:"team_id"`
	Team   *Team                  `json:"team,omitempty"`
	Stats  map[string]interface{} `json:"stats"`
}

// Player is the canonical player profile used for name resolution.
type Player struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Position  string `json:"position,omitempty"`
	TeamID    *int   `json:"team_id,omitempty"`
	TeamAbbr  string `json:"team_abbr,omitempty"`
	DraftYear *int   `json:"draft_year,omitempty"`
}

// Game is the canonical final-score shape for one game.
type Game struct {
	ID           int    `json:"id"`
	Date         string `json:"date"` // "YYYY-MM-DD"
	Season       int    `json:"season"`
	Status       string `json:"status,omitempty"`
	HomeTeam     string `json:"home_team"`
	VisitorTeam  string `json:"visitor_team"`
	HomeScore    int    `json:"home_team_score"`
	VisitorScore int    `json:"visitor_team_score"`
}
