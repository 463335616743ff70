package bdl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/albapepper/courtrank/internal/provider"
)

// NBAHandler fetches NBA players, season averages, games and box scores
// from BallDontLie and returns them as canonical provider types.
type NBAHandler struct {
	client *Client
	logger *slog.Logger
}

// NewNBAHandler creates an NBA handler over a configured client.
func NewNBAHandler(opts ClientOptions, logger *slog.Logger) *NBAHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NBAHandler{client: NewClient(opts, logger), logger: logger}
}

// --------------------------------------------------------------------------
// Wire types
// --------------------------------------------------------------------------

type bdlTeam struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

func (t bdlTeam) canonical() *provider.Team {
	return &provider.Team{ID: t.ID, Name: t.FullName, Abbreviation: t.Abbreviation}
}

type bdlPlayer struct {
	ID        int      `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Position  string   `json:"position"`
	Team      *bdlTeam `json:"team"`
	DraftYear *int     `json:"draft_year"`
}

func (p bdlPlayer) canonical() provider.Player {
	out := provider.Player{
		ID:        p.ID,
		Name:      strings.TrimSpace(p.FirstName + " " + p.LastName),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Position:  p.Position,
		DraftYear: p.DraftYear,
	}
	if p.Team != nil {
		id := p.Team.ID
		out.TeamID = &id
		out.TeamAbbr = p.Team.Abbreviation
	}
	return out
}

type bdlSeasonAverage struct {
	Player bdlPlayer              `json:"player"`
	Season int                    `json:"season"`
	Stats  map[string]interface{} `json:"stats"`
}

type bdlTeamSeasonAverage struct {
	Team  bdlTeam                `json:"team"`
	Stats map[string]interface{} `json:"stats"`
}

type bdlStanding struct {
	Team   bdlTeam `json:"team"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

type bdlGame struct {
	ID               int     `json:"id"`
	Date             string  `json:"date"`
	Season           int     `json:"season"`
	Status           string  `json:"status"`
	HomeTeam         bdlTeam `json:"home_team"`
	VisitorTeam      bdlTeam `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
}

// bdlStatLine is one player's box score line. The counting stats sit at the
// top level next to the nested player, team and game objects, so they are
// decoded twice: once into the struct, once into Stats.
type bdlStatLine struct {
	Player bdlPlayer `json:"player"`
	Team   bdlTeam   `json:"team"`
	Game   struct {
		ID     int    `json:"id"`
		Date   string `json:"date"`
		Season int    `json:"season"`
	} `json:"game"`
	Stats map[string]interface{} `json:"-"`
}

func (l *bdlStatLine) UnmarshalJSON(data []byte) error {
	type plain bdlStatLine
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "player")
	delete(raw, "team")
	delete(raw, "game")
	delete(raw, "id")
	*l = bdlStatLine(p)
	l.Stats = raw
	return nil
}

// --------------------------------------------------------------------------
// Endpoints
// --------------------------------------------------------------------------

// SearchPlayers returns players whose first or last name matches the last
// word of name. Exact resolution is left to the caller.
func (h *NBAHandler) SearchPlayers(ctx context.Context, name string) ([]provider.Player, error) {
	words := strings.Fields(name)
	if len(words) == 0 {
		return nil, nil
	}
	params := url.Values{}
	params.Set("search", words[len(words)-1])

	var players []provider.Player
	err := each(ctx, h.client, "/players", params, func(page []bdlPlayer) error {
		for _, p := range page {
			players = append(players, p.canonical())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search players %q: %w", name, err)
	}
	return players, nil
}

// SeasonPlayerTable returns one row per player with regular-season totals.
// BDL reports season averages per game; rows are converted to totals.
func (h *NBAHandler) SeasonPlayerTable(ctx context.Context, season int) (*provider.Table, error) {
	params := url.Values{}
	params.Set("season", strconv.Itoa(season))
	params.Set("season_type", "regular")
	params.Set("type", "base")

	table := provider.NewTable(provider.ColPlayerID, provider.ColPlayerName, provider.StatGP)
	pages := 0
	err := each(ctx, h.client, "/season_averages/general", params, func(page []bdlSeasonAverage) error {
		for _, avg := range page {
			table.Append(provider.SeasonTotalsRow(avg.Player.canonical(), avg.Stats, season))
		}
		pages++
		if pages%5 == 0 {
			h.logger.Info("BDL season averages progress", "season", season, "players", table.Len())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("season averages %d: %w", season, err)
	}
	return table, nil
}

// TeamStats returns regular-season averages for every team, with wins and
// losses taken from the standings.
func (h *NBAHandler) TeamStats(ctx context.Context, season int) ([]provider.TeamStats, error) {
	params := url.Values{}
	params.Set("season", strconv.Itoa(season))
	params.Set("season_type", "regular")
	params.Set("type", "base")

	var all []provider.TeamStats
	err := each(ctx, h.client, "/team_season_averages/general", params, func(page []bdlTeamSeasonAverage) error {
		for _, avg := range page {
			stats := avg.Stats
			if stats == nil {
				stats = map[string]interface{}{}
			}
			all = append(all, provider.TeamStats{TeamID: avg.Team.ID, Team: avg.Team.canonical(), Stats: stats})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("team season averages %d: %w", season, err)
	}

	standings, err := h.standings(ctx, season)
	if err != nil {
		return nil, err
	}
	for i := range all {
		st, ok := standings[all[i].TeamID]
		if !ok {
			h.logger.Warn("Team missing from standings", "team_id", all[i].TeamID, "season", season)
			continue
		}
		all[i].Stats["w"] = st.Wins
		all[i].Stats["l"] = st.Losses
	}
	return all, nil
}

// TeamSeasonTable returns one row per team with regular-season totals,
// wins, losses and field goal percentage.
func (h *NBAHandler) TeamSeasonTable(ctx context.Context, season int) (*provider.Table, error) {
	teams, err := h.TeamStats(ctx, season)
	if err != nil {
		return nil, err
	}
	table := provider.NewTable(provider.ColTeamID, provider.ColTeamName, provider.StatGP)
	for _, ts := range teams {
		table.Append(provider.TeamTotalsRow(ts))
	}
	return table, nil
}

func (h *NBAHandler) standings(ctx context.Context, season int) (map[int]bdlStanding, error) {
	params := url.Values{}
	params.Set("season", strconv.Itoa(season))

	out := make(map[int]bdlStanding)
	err := each(ctx, h.client, "/standings", params, func(page []bdlStanding) error {
		for _, st := range page {
			out[st.Team.ID] = st
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("standings %d: %w", season, err)
	}
	return out, nil
}

// GamesOn returns every game scheduled on date (YYYY-MM-DD).
func (h *NBAHandler) GamesOn(ctx context.Context, date string) ([]provider.Game, error) {
	params := url.Values{}
	params.Add("dates[]", date)

	var games []provider.Game
	err := each(ctx, h.client, "/games", params, func(page []bdlGame) error {
		for _, g := range page {
			games = append(games, provider.Game{
				ID:           g.ID,
				Date:         dateOnly(g.Date),
				Season:       g.Season,
				Status:       g.Status,
				HomeTeam:     g.HomeTeam.Abbreviation,
				VisitorTeam:  g.VisitorTeam.Abbreviation,
				HomeScore:    g.HomeTeamScore,
				VisitorScore: g.VisitorTeamScore,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("games on %s: %w", date, err)
	}
	return games, nil
}

// BoxScoreTable returns one row per player per game for the given games.
// Each row is a single-game record (GP = 1); players who did not log
// minutes are left out.
func (h *NBAHandler) BoxScoreTable(ctx context.Context, gameIDs []int) (*provider.Table, error) {
	table := provider.NewTable(provider.ColPlayerID, provider.ColPlayerName, provider.StatGP)
	if len(gameIDs) == 0 {
		return table, nil
	}
	params := url.Values{}
	for _, id := range gameIDs {
		params.Add("game_ids[]", strconv.Itoa(id))
	}
	err := each(ctx, h.client, "/stats", params, func(page []bdlStatLine) error {
		for _, line := range page {
			if row, ok := statLineRow(line); ok {
				table.Append(row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("box scores: %w", err)
	}
	return table, nil
}

// PlayerGameLog returns a player's games for one season, most recent first.
func (h *NBAHandler) PlayerGameLog(ctx context.Context, playerID, season int, includePostseason bool) (*provider.Table, error) {
	params := url.Values{}
	params.Add("player_ids[]", strconv.Itoa(playerID))
	params.Add("seasons[]", strconv.Itoa(season))
	if !includePostseason {
		params.Set("postseason", "false")
	}

	table := provider.NewTable(provider.ColPlayerID, provider.ColPlayerName, provider.StatGP, provider.ColGameDate)
	err := each(ctx, h.client, "/stats", params, func(page []bdlStatLine) error {
		for _, line := range page {
			if row, ok := statLineRow(line); ok {
				table.Append(row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("game log for player %d: %w", playerID, err)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i][provider.ColGameDate].(string) > table.Rows[j][provider.ColGameDate].(string)
	})
	return table, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func statLineRow(line bdlStatLine) (map[string]interface{}, bool) {
	if !played(line.Stats) {
		return nil, false
	}
	player := line.Player.canonical()
	row := provider.NormalizeStatKeys(line.Stats)
	row[provider.ColPlayerID] = player.ID
	row[provider.ColPlayerName] = player.Name
	row[provider.ColTeamAbbr] = line.Team.Abbreviation
	row[provider.ColGameID] = line.Game.ID
	row[provider.ColGameDate] = dateOnly(line.Game.Date)
	row[provider.StatGP] = 1
	if player.DraftYear != nil {
		rookie := 0
		if *player.DraftYear == line.Game.Season {
			rookie = 1
		}
		row[provider.StatRookie] = rookie
	}
	return row, true
}

// played reports whether a box score line logged any minutes.
func played(stats map[string]interface{}) bool {
	mins, ok := provider.ExtractValue(stats["min"])
	return ok && mins > 0
}

// dateOnly trims an ISO timestamp to its YYYY-MM-DD prefix.
func dateOnly(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}
