package engine

import (
	"math"
	"testing"
)

func scoreRows() []GameScoreRow {
	return []GameScoreRow{
		{GameID: "1", Side: SideHome, Team: "BOS", Points: 110},
		{GameID: "1", Side: SideAway, Team: "NYK", Points: 90},
		{GameID: "2", Side: SideHome, Team: "LAL", Points: 101},
		{GameID: "2", Side: SideAway, Team: "GSW", Points: 99},
	}
}

func TestPairAndDiff_OneEach(t *testing.T) {
	blowouts, closeGames := PairAndDiff(scoreRows(), 1)

	if len(blowouts) != 1 || blowouts[0].GameID != "1" || blowouts[0].Differential != 20 {
		t.Errorf("blowouts: %+v", blowouts)
	}
	if len(closeGames) != 1 || closeGames[0].GameID != "2" || closeGames[0].Differential != 2 {
		t.Errorf("close: %+v", closeGames)
	}
}

func TestPairGames_JoinFields(t *testing.T) {
	// Away row listed first; pairing must still orient by side.
	rows := []GameScoreRow{
		{GameID: "9", Side: SideAway, Team: "MIA", Points: 120},
		{GameID: "9", Side: SideHome, Team: "CHI", Points: 104},
	}
	diffs, report := PairGames(rows)
	if len(diffs) != 1 {
		t.Fatalf("diffs: %+v", diffs)
	}
	d := diffs[0]
	if d.HomeTeam != "CHI" || d.AwayTeam != "MIA" || d.HomePoints != 104 || d.AwayPoints != 120 {
		t.Errorf("join: %+v", d)
	}
	if d.Differential != 16 {
		t.Errorf("differential is absolute: got %v", d.Differential)
	}
	if report.Accepted != 1 || len(report.Notes) != 0 {
		t.Errorf("report: %s", report.Summary())
	}
}

func TestPairGames_DropsIncompleteGames(t *testing.T) {
	rows := append(scoreRows(),
		// 3: no away row
		GameScoreRow{GameID: "3", Side: SideHome, Team: "DEN", Points: 100},
		// 4: two home rows
		GameScoreRow{GameID: "4", Side: SideHome, Team: "PHX", Points: 95},
		GameScoreRow{GameID: "4", Side: SideHome, Team: "PHX", Points: 95},
		GameScoreRow{GameID: "4", Side: SideAway, Team: "SAC", Points: 93},
		// 5: unknown side
		GameScoreRow{GameID: "5", Side: Side("neutral"), Team: "ORL", Points: 88},
		GameScoreRow{GameID: "5", Side: SideAway, Team: "ATL", Points: 90},
		// 6: non-finite score
		GameScoreRow{GameID: "6", Side: SideHome, Team: "UTA", Points: math.Inf(1)},
		GameScoreRow{GameID: "6", Side: SideAway, Team: "POR", Points: 80},
	)
	diffs, report := PairGames(rows)

	if len(diffs) != 2 || diffs[0].GameID != "1" || diffs[1].GameID != "2" {
		t.Fatalf("diffs: %+v", diffs)
	}
	if len(report.Notes) != 3 {
		t.Errorf("notes: %v", report.Notes)
	}
	if report.Count(ErrNonFinite) != 1 {
		t.Errorf("skipped: %v", report.Skipped)
	}
}

func TestTopDiffs(t *testing.T) {
	diffs := []GameDiff{
		{GameID: "a", Differential: 5},
		{GameID: "b", Differential: 30},
		{GameID: "c", Differential: 5},
		{GameID: "d", Differential: 1},
	}

	tests := []struct {
		name        string
		k           int
		wantBlowout []string
		wantClose   []string
	}{
		{"zero", 0, nil, nil},
		{"negative", -2, nil, nil},
		{"three", 3, []string{"b", "a", "c"}, []string{"d", "a", "c"}},
		{"more than available", 10, []string{"b", "a", "c", "d"}, []string{"d", "a", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blowouts, closeGames := TopDiffs(diffs, tt.k)
			assertGameIDs(t, "blowouts", blowouts, tt.wantBlowout)
			assertGameIDs(t, "close", closeGames, tt.wantClose)
		})
	}

	if diffs[0].GameID != "a" || diffs[1].GameID != "b" {
		t.Error("TopDiffs reordered its input")
	}
}

func assertGameIDs(t *testing.T, label string, got []GameDiff, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d games, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].GameID != want[i] {
			t.Errorf("%s[%d]: got %s, want %s", label, i, got[i].GameID, want[i])
		}
	}
}
