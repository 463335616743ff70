package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/albapepper/courtrank/internal/engine"
)

var entries = []engine.RankedEntry{
	{Rank: 1, EntityID: "2", EntityName: "B", GamesPlayed: 10, Formatted: "25.0 ppg, 15.0 rpg", Score: 60},
	{Rank: 2, EntityID: "1", EntityName: "A, Jr.", GamesPlayed: 10, Formatted: "30.0 ppg, 10.0 rpg", Score: 49.96},
}

func TestWriteLeaderboardCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderboardCSV(&buf, entries); err != nil {
		t.Fatal(err)
	}
	want := "Player,Games_Played,Formatted_Stats,Performance_Score\n" +
		"B,10,\"25.0 ppg, 15.0 rpg\",60.0\n" +
		"\"A, Jr.\",10,\"30.0 ppg, 10.0 rpg\",50.0\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteLeaderboardCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteLeaderboardCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Player,Games_Played,Formatted_Stats,Performance_Score\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteComparisonCSV(t *testing.T) {
	deltas := []engine.SeasonDelta{{
		EntityID:   "7",
		EntityName: "Riser",
		Current:    map[string]float64{"PTS": 25, "REB": 8.04},
		Previous:   map[string]float64{"PTS": 15, "REB": 6},
		Diff:       map[string]float64{"PTS": 10, "REB": 2.04},
		Overall:    12.04,
	}}
	var buf bytes.Buffer
	layout := Comparison{Stats: []string{"PTS", "REB"}, CurrentLabel: "2024-25", PreviousLabel: "2023-24"}
	if err := WriteComparisonCSV(&buf, deltas, layout); err != nil {
		t.Fatal(err)
	}
	want := "Player,PTS,REB\n" +
		"Riser (2024-25),25.0,8.0\n" +
		"Riser (Difference),10.0,2.0\n" +
		"Riser (2023-24),15.0,6.0\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteKeyValueCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []KeyValue{{"Player", "Jalen Brunson"}, {"Last 5 Games PPG", "28.4"}}
	if err := WriteKeyValueCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}
	want := "Title,Stat\nPlayer,Jalen Brunson\nLast 5 Games PPG,28.4\n"
	if buf.String() != want {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteClassifiedCSV(t *testing.T) {
	items := []engine.Classified{{
		Record: engine.StatRecord{EntityName: "Big Game", Totals: map[string]float64{"PTS": 41, "AST": 12}},
		Labels: engine.Labels{"PTS", "AST"},
	}}
	var buf bytes.Buffer
	if err := WriteClassifiedCSV(&buf, items, []string{"PTS", "REB", "AST"}); err != nil {
		t.Fatal(err)
	}
	want := "Player,PTS,REB,AST,Labels\nBig Game,41,,12,PTS;AST\n"
	if buf.String() != want {
		t.Errorf("got %q", buf.String())
	}
}

func TestCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	path, err := CSVDir{Dir: dir}.WriteLeaderboard(context.Background(), Leaderboard{Name: "top_2", Entries: entries})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "top_2.csv") {
		t.Errorf("path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Player,Games_Played") || strings.Count(string(data), "\n") != 3 {
		t.Errorf("content: %q", data)
	}

	if _, err := (CSVDir{Dir: dir}).WriteLeaderboard(context.Background(), Leaderboard{}); err == nil {
		t.Error("expected error for unnamed leaderboard")
	}
}

type stubWriter struct {
	loc   string
	err   error
	calls int
}

func (s *stubWriter) WriteLeaderboard(context.Context, Leaderboard) (string, error) {
	s.calls++
	return s.loc, s.err
}

func TestMulti(t *testing.T) {
	a := &stubWriter{loc: "a.csv"}
	b := &stubWriter{loc: "run 42"}
	loc, err := Multi{a, b}.WriteLeaderboard(context.Background(), Leaderboard{Name: "x"})
	if err != nil || loc != "a.csv, run 42" {
		t.Errorf("got %q, %v", loc, err)
	}

	boom := errors.New("boom")
	failing := &stubWriter{err: boom}
	after := &stubWriter{loc: "never"}
	if _, err := (Multi{failing, after}).WriteLeaderboard(context.Background(), Leaderboard{}); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
	if after.calls != 0 {
		t.Error("writers after a failure should not run")
	}
}

func TestWriteFile_PropagatesWriterError(t *testing.T) {
	boom := errors.New("boom")
	path := filepath.Join(t.TempDir(), "x.csv")
	if err := WriteFile(path, func(w io.Writer) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		needsDB bool
		wantErr bool
	}{
		{"csv", ModeCSV, false, false},
		{"Postgres", ModePostgres, true, false},
		{" both ", ModeBoth, true, false},
		{"parquet", "", false, true},
		{"", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || got.NeedsDB() != tt.needsDB {
				t.Errorf("got %q needsDB=%v, want %q needsDB=%v", got, got.NeedsDB(), tt.want, tt.needsDB)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Shai Gilgeous-Alexander": "Shai_Gilgeous-Alexander",
		"  Nikola   Jokic ":       "Nikola_Jokic",
		"a/b\\c":                  "abc",
		"":                        "unnamed",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
