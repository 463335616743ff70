package provider

import (
	"encoding/json"
	"math"
	"testing"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		want   float64
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"bool true", true, 1, true},
		{"json number", json.Number("3.25"), 3.25, true},
		{"plain string", "31", 31, true},
		{"empty string", "  ", 0, false},
		{"plus sign", "+12", 12, true},
		{"negative", "-4.5", -4.5, true},
		{"leading dot", ".512", 0.512, true},
		{"percent", "45.5%", 0.455, true},
		{"minutes", "34:30", 34.5, true},
		{"bad minutes", "34:xx", 0, false},
		{"garbage", "DNP", 0, false},
		{"nested total", map[string]interface{}{"total": 15.0}, 15, true},
		{"nested empty", map[string]interface{}{"other": 1.0}, 0, false},
		{"unsupported", []int{1}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("value: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractValue_NaNPassesThrough(t *testing.T) {
	got, ok := ExtractValue("NaN")
	if !ok || !math.IsNaN(got) {
		t.Fatalf("got %v ok=%v, want NaN ok=true", got, ok)
	}
}

func TestNormalizeStatKeys(t *testing.T) {
	out := NormalizeStatKeys(map[string]interface{}{
		"pts":        25.1,
		"turnover":   3.0,
		"gp":         70.0,
		"w":          40.0, // unknown, dropped
		"blk":        nil,  // nil, dropped
		"PLUS_MINUS": 2.0,
	})

	want := map[string]interface{}{
		StatPoints:    25.1,
		StatTurnovers: 3.0,
		StatGP:        70.0,
		StatPlusMinus: 2.0,
	}
	if len(out) != len(want) {
		t.Fatalf("len: got %d (%v), want %d", len(out), out, len(want))
	}
	for k, v := range want {
		if out[k] != v {
			t.Errorf("%s: got %v, want %v", k, out[k], v)
		}
	}
}

func TestSeasonTotalsRow(t *testing.T) {
	draft := 2024
	p := Player{ID: 17, Name: "Rook Ie", TeamAbbr: "SAS", DraftYear: &draft}

	row := SeasonTotalsRow(p, map[string]interface{}{
		"gp":  10.0,
		"pts": 20.5,
		"reb": 4.0,
		"age": 20.0,
		"fga": "n/a",
	}, 2024)

	if row[ColPlayerID] != 17 || row[ColPlayerName] != "Rook Ie" {
		t.Fatalf("identity: got %v / %v", row[ColPlayerID], row[ColPlayerName])
	}
	if row[StatPoints] != 205.0 {
		t.Errorf("PTS total: got %v, want 205", row[StatPoints])
	}
	if row[StatRebounds] != 40.0 {
		t.Errorf("REB total: got %v, want 40", row[StatRebounds])
	}
	if row[StatAge] != 20.0 {
		t.Errorf("AGE must not be scaled: got %v", row[StatAge])
	}
	if row[StatGP] != 10.0 {
		t.Errorf("GP: got %v", row[StatGP])
	}
	if row[StatFGA] != "n/a" {
		t.Errorf("unparseable values pass through: got %v", row[StatFGA])
	}
	if row[StatRookie] != 1 {
		t.Errorf("ROOKIE: got %v, want 1", row[StatRookie])
	}
}

func TestTeamTotalsRow(t *testing.T) {
	row := TeamTotalsRow(TeamStats{
		TeamID: 8,
		Team:   &Team{ID: 8, Name: "Denver Nuggets", Abbreviation: "DEN"},
		Stats: map[string]interface{}{
			"gp":     82.0,
			"w":      57.0,
			"l":      25.0,
			"fg_pct": 0.496,
			"pts":    117.0,
			"tov":    12.5,
		},
	})

	if row[ColTeamID] != 8 || row[ColTeamName] != "Denver Nuggets" || row[ColTeamAbbr] != "DEN" {
		t.Fatalf("identity: %v", row)
	}
	if row[StatPoints] != 9594.0 {
		t.Errorf("PTS total: got %v, want 9594", row[StatPoints])
	}
	if row[StatTurnovers] != 1025.0 {
		t.Errorf("TOV total: got %v, want 1025", row[StatTurnovers])
	}
	if row[StatWins] != 57.0 || row[StatLosses] != 25.0 {
		t.Errorf("W/L must not be scaled: %v / %v", row[StatWins], row[StatLosses])
	}
	if row[StatFGPct] != 0.496 {
		t.Errorf("FG_PCT must not be scaled: %v", row[StatFGPct])
	}
}

func TestTableAppend(t *testing.T) {
	tbl := NewTable(ColPlayerID)
	tbl.Append(map[string]interface{}{ColPlayerID: 1, StatPoints: 3})
	tbl.Append(map[string]interface{}{ColPlayerID: 2, StatAssists: 4})

	if tbl.Len() != 2 {
		t.Fatalf("rows: got %d", tbl.Len())
	}
	for _, col := range []string{ColPlayerID, StatPoints, StatAssists} {
		if !tbl.HasColumn(col) {
			t.Errorf("missing column %s in %v", col, tbl.Columns)
		}
	}
	if tbl.Columns[0] != ColPlayerID {
		t.Errorf("leading column moved: %v", tbl.Columns)
	}

	var nilTable *Table
	if nilTable.Len() != 0 {
		t.Error("nil table should have zero rows")
	}
}
