package engine

import (
	"errors"
	"testing"
)

func TestCompareSeasons(t *testing.T) {
	w := Weights{"PTS": 1, "AST": 1}
	current := []StatRecord{
		{EntityID: "1", EntityName: "Riser", GamesPlayed: 10, Totals: map[string]float64{"PTS": 250, "AST": 50}},
		{EntityID: "2", EntityName: "Faller", GamesPlayed: 10, Totals: map[string]float64{"PTS": 100, "AST": 20}},
		{EntityID: "3", EntityName: "Flat", GamesPlayed: 10, Totals: map[string]float64{"PTS": 150, "AST": 30}},
		{EntityID: "4", EntityName: "Rookie", GamesPlayed: 10, Totals: map[string]float64{"PTS": 300}},
		{EntityID: "5", EntityName: "Injured", GamesPlayed: 0, Totals: map[string]float64{"PTS": 0}},
	}
	previous := []StatRecord{
		{EntityID: "2", EntityName: "Faller", GamesPlayed: 20, Totals: map[string]float64{"PTS": 400, "AST": 100}},
		{EntityID: "1", EntityName: "Riser", GamesPlayed: 20, Totals: map[string]float64{"PTS": 200, "AST": 40}},
		{EntityID: "3", EntityName: "Flat", GamesPlayed: 5, Totals: map[string]float64{"PTS": 75, "AST": 15}},
		{EntityID: "5", EntityName: "Injured", GamesPlayed: 40, Totals: map[string]float64{"PTS": 800}},
	}

	up, down, report := CompareSeasons(current, previous, w, 2)

	if len(up) != 2 || up[0].EntityName != "Riser" || up[1].EntityName != "Flat" {
		t.Fatalf("improvements: %+v", up)
	}
	// Riser: (25+5) - (10+2) = 18
	if !almostEqual(up[0].Overall, 18, 1e-9) {
		t.Errorf("Riser overall: got %v, want 18", up[0].Overall)
	}
	if !almostEqual(up[0].Diff["PTS"], 15, 1e-9) || !almostEqual(up[0].Diff["AST"], 3, 1e-9) {
		t.Errorf("Riser diff: %v", up[0].Diff)
	}
	if !almostEqual(up[0].Previous["PTS"], 10, 1e-9) || !almostEqual(up[0].Current["PTS"], 25, 1e-9) {
		t.Errorf("Riser rates: current=%v previous=%v", up[0].Current, up[0].Previous)
	}

	if len(down) != 2 || down[0].EntityName != "Faller" {
		t.Fatalf("declines: %+v", down)
	}
	// Faller: (10+2) - (20+5) = -13
	if !almostEqual(down[0].Overall, -13, 1e-9) {
		t.Errorf("Faller overall: got %v, want -13", down[0].Overall)
	}

	if report.Accepted != 3 {
		t.Errorf("accepted: got %d, want 3 (Rookie has no previous season)", report.Accepted)
	}
	if report.Count(ErrDivisionUndefined) != 1 {
		t.Errorf("skipped: %v", report.Skipped)
	}
}

func TestCompareSeasons_Bounds(t *testing.T) {
	recs := []StatRecord{{EntityID: "1", GamesPlayed: 1, Totals: map[string]float64{"PTS": 1}}}
	for _, n := range []int{-1, 0} {
		up, down, _ := CompareSeasons(recs, recs, Weights{"PTS": 1}, n)
		if len(up) != 0 || len(down) != 0 {
			t.Errorf("n=%d: got %d/%d", n, len(up), len(down))
		}
	}
	up, down, _ := CompareSeasons(recs, recs, Weights{"PTS": 1}, 50)
	if len(up) != 1 || len(down) != 1 || up[0].Overall != 0 {
		t.Errorf("n=50: %+v %+v", up, down)
	}
}

func TestAggregate(t *testing.T) {
	games := []StatRecord{
		{GamesPlayed: 1, Totals: map[string]float64{"PTS": 30, "REB": 10}},
		{GamesPlayed: 1, Totals: map[string]float64{"PTS": 20, "AST": 7}},
		{GamesPlayed: 1, Totals: map[string]float64{"PTS": 50}},
	}

	tests := []struct {
		name    string
		limit   int
		wantGP  int
		wantPTS float64
	}{
		{"last two", 2, 2, 50},
		{"all via zero", 0, 3, 100},
		{"limit beyond games", 10, 3, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("237", "LeBron James", games, tt.limit)
			if got.GamesPlayed != tt.wantGP || got.Totals["PTS"] != tt.wantPTS {
				t.Errorf("got GP=%d PTS=%v", got.GamesPlayed, got.Totals["PTS"])
			}
			if got.EntityID != "237" || got.EntityName != "LeBron James" {
				t.Errorf("identity: %+v", got)
			}
		})
	}

	two := Aggregate("1", "x", games, 2)
	if two.Totals["REB"] != 10 || two.Totals["AST"] != 7 {
		t.Errorf("sparse totals: %v", two.Totals)
	}
}

func TestAggregate_Empty(t *testing.T) {
	rec := Aggregate("1", "Nobody", nil, 5)
	if rec.GamesPlayed != 0 {
		t.Fatalf("GP: %d", rec.GamesPlayed)
	}
	if _, err := ComputeRates(rec, Weights{"PTS": 1}); !errors.Is(err, ErrDivisionUndefined) {
		t.Errorf("got %v, want ErrDivisionUndefined", err)
	}
}
