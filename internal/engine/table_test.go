package engine

import (
	"errors"
	"testing"

	"github.com/albapepper/courtrank/internal/provider"
)

func TestFromTable(t *testing.T) {
	table := &provider.Table{
		Columns: []string{"PLAYER_ID", "PLAYER_NAME", "TEAM_ABBREVIATION", "GP", "PTS", "REB", "OREB"},
		Rows: []map[string]interface{}{
			{"PLAYER_ID": float64(237), "PLAYER_NAME": "LeBron James", "TEAM_ABBREVIATION": "LAL", "GP": float64(71), "PTS": float64(1822), "REB": "518", "OREB": ""},
			{"PLAYER_ID": "246", "PLAYER_NAME": "Nikola Jokic", "TEAM_ABBREVIATION": "DEN", "GP": "79", "PTS": 2085.0, "REB": 976.0, "OREB": 235.0},
		},
	}

	records, report, err := FromTable(table, PlayerSchema)
	if err != nil {
		t.Fatalf("FromTable: %v", err)
	}
	if len(records) != 2 || report.Accepted != 2 {
		t.Fatalf("records=%d %s", len(records), report.Summary())
	}

	lebron := records[0]
	if lebron.EntityID != "237" || lebron.EntityName != "LeBron James" || lebron.GamesPlayed != 71 {
		t.Errorf("identity: %+v", lebron)
	}
	if lebron.Totals["REB"] != 518 {
		t.Errorf("numeric string: REB=%v", lebron.Totals["REB"])
	}
	if _, ok := lebron.Total("OREB"); ok {
		t.Error("blank OREB should be absent, not zero")
	}
	if _, ok := lebron.Total("TEAM_ABBREVIATION"); ok {
		t.Error("label column leaked into totals")
	}
	if _, ok := lebron.Total("GP"); ok {
		t.Error("games column leaked into totals")
	}
	if records[1].Totals["OREB"] != 235 {
		t.Errorf("OREB: %v", records[1].Totals)
	}
}

func TestFromTable_MissingRequiredColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"no identifier", []string{"GP", "PTS"}},
		{"no games played", []string{"PLAYER_NAME", "PTS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromTable(&provider.Table{Columns: tt.columns}, PlayerSchema)
			if !errors.Is(err, ErrMissingRequiredColumn) {
				t.Errorf("got %v, want ErrMissingRequiredColumn", err)
			}
		})
	}
}

func TestFromTable_NameStandsInForID(t *testing.T) {
	table := &provider.Table{
		Columns: []string{"PLAYER_NAME", "GP", "PTS"},
		Rows: []map[string]interface{}{
			{"PLAYER_NAME": "Stephen Curry", "GP": 74.0, "PTS": 1956.0},
		},
	}
	records, _, err := FromTable(table, PlayerSchema)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].EntityID != "Stephen Curry" || records[0].EntityName != "Stephen Curry" {
		t.Errorf("got %+v", records[0])
	}
}

func TestFromTable_BadRowsAreSkipped(t *testing.T) {
	table := &provider.Table{
		Columns: []string{"PLAYER_ID", "PLAYER_NAME", "GP", "PTS"},
		Rows: []map[string]interface{}{
			{"PLAYER_ID": "1", "PLAYER_NAME": "Good", "GP": 10.0, "PTS": 100.0},
			{"PLAYER_ID": "2", "PLAYER_NAME": "Text", "GP": 10.0, "PTS": "lots"},
			{"PLAYER_ID": "3", "PLAYER_NAME": "Fractional", "GP": 2.5, "PTS": 10.0},
			{"PLAYER_ID": "4", "PLAYER_NAME": "Negative", "GP": -1.0, "PTS": 10.0},
			{"PLAYER_ID": "", "PLAYER_NAME": "", "GP": 1.0, "PTS": 10.0},
			{"PLAYER_ID": "6", "PLAYER_NAME": "Benched", "GP": 0.0, "PTS": 0.0},
			{"PLAYER_ID": "7", "PLAYER_NAME": "Overflow", "GP": 1e20, "PTS": 10.0},
		},
	}

	records, report, err := FromTable(table, PlayerSchema)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].EntityName != "Good" || records[1].EntityName != "Benched" {
		t.Fatalf("records: %+v", records)
	}
	if got := report.Count(ErrInvalidValue); got != 5 {
		t.Errorf("invalid rows: got %d, want 5 (%v)", got, report.Skipped)
	}

	// Zero games survives parsing; ranking is where it gets excluded.
	_, rankReport := RankTop(records, Weights{"PTS": 1}, 10, RankOptions{})
	if rankReport.Count(ErrDivisionUndefined) != 1 {
		t.Errorf("rank report: %v", rankReport.Skipped)
	}
}

func TestFromTable_IdentifierColumnsStayOutOfTotals(t *testing.T) {
	table := &provider.Table{
		Columns: []string{"GAME_ID", "GAME_DATE", "PLAYER_ID", "PLAYER_NAME", "TEAM_ID", "GP", "PTS"},
		Rows: []map[string]interface{}{
			{"GAME_ID": 15912345, "GAME_DATE": "2025-01-15", "PLAYER_ID": 237, "PLAYER_NAME": "LeBron James",
				"TEAM_ID": float64(14), "GP": 1, "PTS": "20"},
		},
	}
	records, _, err := FromTable(table, PlayerSchema)
	if err != nil || len(records) != 1 {
		t.Fatalf("FromTable: %v %v", records, err)
	}
	for _, col := range []string{"GAME_ID", "GAME_DATE", "TEAM_ID"} {
		if v, ok := records[0].Total(col); ok {
			t.Errorf("%s leaked into totals: %v", col, v)
		}
	}
	if v, _ := records[0].Total("PTS"); v != 20 {
		t.Errorf("PTS: %v", v)
	}
}

func TestFromTable_TeamSchema(t *testing.T) {
	table := &provider.Table{
		Columns: []string{"TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION", "GP", "W", "L", "FG_PCT", "PTS"},
		Rows: []map[string]interface{}{
			{"TEAM_ID": 8, "TEAM_NAME": "Denver Nuggets", "TEAM_ABBREVIATION": "DEN",
				"GP": 82, "W": 57, "L": 25, "FG_PCT": 0.496, "PTS": 9594.0},
		},
	}
	records, report, err := FromTable(table, TeamSchema)
	if err != nil || report.Accepted != 1 {
		t.Fatalf("FromTable: %v %s", err, report.Summary())
	}
	den := records[0]
	if den.EntityID != "8" || den.EntityName != "Denver Nuggets" || den.GamesPlayed != 82 {
		t.Errorf("identity: %+v", den)
	}
	if w, _ := den.Total("W"); w != 57 {
		t.Errorf("W: %v", den.Totals)
	}
	if _, ok := den.Total("TEAM_ID"); ok {
		t.Error("TEAM_ID leaked into totals")
	}
}

func TestFromTable_Nil(t *testing.T) {
	records, report, err := FromTable(nil, PlayerSchema)
	if err != nil || len(records) != 0 || report.Accepted != 0 {
		t.Errorf("nil table: %v %v %s", records, err, report.Summary())
	}
}
