package htmltable

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/albapepper/courtrank/internal/provider"
)

var aliases = map[string]string{
	"Player": provider.ColPlayerName,
	"G":      provider.StatGP,
	"TRB":    provider.StatRebounds,
	"ORB":    provider.StatOffReb,
	"+/-":    provider.StatPlusMinus,
}

const page = `<html><body>
<table id="totals_stats">
  <thead>
    <tr class="over_header"><th colspan="3">Basics</th><th colspan="4">Per game</th></tr>
    <tr><th>Rk</th><th>Player</th><th>Tm</th><th>G</th><th>PTS</th><th>TRB</th><th>+/-</th></tr>
  </thead>
  <tbody>
    <tr><th>1</th><td data-stat="player" data-append-csv="jokicni01">Nikola Jokic</td><td>DEN</td><td>14</td><td>420</td><td>180</td><td>+85</td></tr>
    <tr class="thead"><th>Rk</th><th>Player</th><th>Tm</th><th>G</th><th>PTS</th><th>TRB</th><th>+/-</th></tr>
    <tr><th>2</th><td data-stat="player" data-append-csv="curryst01">Stephen Curry</td><td>GSW</td><td>13</td><td>355</td><td></td><td>-12</td></tr>
  </tbody>
</table>
</body></html>`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(page), "totals_stats", aliases)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", table.Len())
	}
	for _, col := range []string{provider.ColPlayerID, provider.ColPlayerName, provider.StatGP, "PTS", provider.StatRebounds, provider.StatPlusMinus} {
		if !table.HasColumn(col) {
			t.Errorf("missing column %s in %v", col, table.Columns)
		}
	}
	if table.Columns[0] != provider.ColPlayerID {
		t.Errorf("PLAYER_ID should lead: %v", table.Columns)
	}

	jokic := table.Rows[0]
	if jokic[provider.ColPlayerID] != "jokicni01" || jokic[provider.ColPlayerName] != "Nikola Jokic" {
		t.Errorf("identity: %v", jokic)
	}
	if jokic[provider.StatGP] != "14" || jokic[provider.StatPlusMinus] != "+85" {
		t.Errorf("values: %v", jokic)
	}
	if _, ok := table.Rows[1][provider.StatRebounds]; ok {
		t.Errorf("blank cell should be absent: %v", table.Rows[1])
	}
}

func TestParse_FirstTableWhenNoID(t *testing.T) {
	table, err := Parse(strings.NewReader(page), "", aliases)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("rows: %d", table.Len())
	}
}

func TestParse_CommentedTable(t *testing.T) {
	hidden := `<html><body><div id="all_advanced"><!--
<table id="advanced"><thead><tr><th>Player</th><th>G</th></tr></thead>
<tbody><tr><td data-append-csv="jamesle01">LeBron James</td><td>71</td></tr></tbody></table>
--></div></body></html>`

	table, err := Parse(strings.NewReader(hidden), "advanced", aliases)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 1 || table.Rows[0][provider.ColPlayerID] != "jamesle01" || table.Rows[0][provider.StatGP] != "71" {
		t.Errorf("rows: %v", table.Rows)
	}
}

func TestParse_NotFound(t *testing.T) {
	_, err := Parse(strings.NewReader(page), "per_game_stats", aliases)
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("got %v, want ErrTableNotFound", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "december.html")
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		t.Fatal(err)
	}
	table, err := ParseFile(path, "totals_stats", aliases)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Errorf("rows: %d", table.Len())
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.html"), "", aliases); err == nil {
		t.Error("expected error for missing file")
	}
}
