package engine

import (
	"fmt"
	"math"
	"strconv"

	"github.com/albapepper/courtrank/internal/provider"
)

// Schema names the identity columns of a source table.
type Schema struct {
	IDColumn    string
	NameColumn  string
	GamesColumn string
}

// PlayerSchema is the schema every canonical player table uses.
var PlayerSchema = Schema{
	IDColumn:    provider.ColPlayerID,
	NameColumn:  provider.ColPlayerName,
	GamesColumn: provider.StatGP,
}

// TeamSchema is the schema of canonical team season tables.
var TeamSchema = Schema{
	IDColumn:    provider.ColTeamID,
	NameColumn:  provider.ColTeamName,
	GamesColumn: provider.StatGP,
}

// FromTable builds StatRecords from a source table.
//
// The games-played column and at least one of the ID or name columns are
// required; a table without them fails with ErrMissingRequiredColumn. When
// the ID column is absent the name stands in for it. Every other column is
// optional: blank cells are left out of Totals, and non-numeric cells exclude
// that one record with ErrInvalidValue.
func FromTable(table *provider.Table, schema Schema) ([]StatRecord, Report, error) {
	var report Report
	if table == nil {
		return nil, report, nil
	}

	hasID := schema.IDColumn != "" && table.HasColumn(schema.IDColumn)
	hasName := schema.NameColumn != "" && table.HasColumn(schema.NameColumn)
	if !hasID && !hasName {
		return nil, report, fmt.Errorf("%w: entity identifier (%q or %q)",
			ErrMissingRequiredColumn, schema.IDColumn, schema.NameColumn)
	}
	if schema.GamesColumn == "" || !table.HasColumn(schema.GamesColumn) {
		return nil, report, fmt.Errorf("%w: games played (%q)", ErrMissingRequiredColumn, schema.GamesColumn)
	}

	identity := map[string]bool{
		schema.IDColumn:    true,
		schema.NameColumn:  true,
		schema.GamesColumn: true,
	}

	records := make([]StatRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		id, name := "", ""
		if hasID {
			id = cellString(row[schema.IDColumn])
		}
		if hasName {
			name = cellString(row[schema.NameColumn])
		}
		if id == "" {
			id = name
		}
		if name == "" {
			name = id
		}
		if id == "" {
			report.Skip(fmt.Sprintf("row %d", i+1), "", fmt.Errorf("%w: empty entity identifier", ErrInvalidValue))
			continue
		}

		gp, err := gamesPlayed(row[schema.GamesColumn])
		if err != nil {
			report.Skip(id, name, err)
			continue
		}

		rec := StatRecord{EntityID: id, EntityName: name, GamesPlayed: gp, Totals: make(map[string]float64)}
		var bad error
		for _, col := range table.Columns {
			if identity[col] || labelColumns[col] {
				continue
			}
			cell := row[col]
			if provider.IsBlank(cell) {
				continue
			}
			if _, isString := cell.(string); isString && !numericColumn(col) {
				continue // labels such as team abbreviation or game date
			}
			v, ok := provider.ExtractValue(cell)
			if !ok {
				bad = fmt.Errorf("%w: %s=%v", ErrInvalidValue, col, cell)
				break
			}
			rec.Totals[col] = v
		}
		if bad != nil {
			report.Skip(id, name, bad)
			continue
		}
		records = append(records, rec)
	}
	report.Accepted = len(records)
	return records, report, nil
}

// labelColumns never count as stats, whatever type the source gave them.
var labelColumns = map[string]bool{
	provider.ColPlayerID: true, provider.ColPlayerName: true,
	provider.ColTeamID: true, provider.ColTeamName: true, provider.ColTeamAbbr: true,
	provider.ColGameID: true, provider.ColGameDate: true,
}

// numericColumns lists canonical columns that must hold numbers. Other
// string-valued columns are treated as labels and ignored.
var numericColumns = map[string]bool{
	provider.StatMinutes: true, provider.StatPoints: true, provider.StatRebounds: true,
	provider.StatOffReb: true, provider.StatDefReb: true, provider.StatAssists: true,
	provider.StatSteals: true, provider.StatBlocks: true, provider.StatTurnovers: true,
	provider.StatFouls: true, provider.StatPlusMinus: true, provider.StatFGM: true,
	provider.StatFGA: true, provider.StatFG3M: true, provider.StatFG3A: true,
	provider.StatFTM: true, provider.StatFTA: true, provider.StatAge: true,
	provider.StatRookie: true, provider.StatWins: true, provider.StatLosses: true,
	provider.StatFGPct: true,
}

func numericColumn(col string) bool { return numericColumns[col] }

func gamesPlayed(cell interface{}) (int, error) {
	v, ok := provider.ExtractValue(cell)
	if !ok {
		return 0, fmt.Errorf("%w: games played=%v", ErrInvalidValue, cell)
	}
	if !finite(v) || v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: games played=%v", ErrInvalidValue, v)
	}
	return int(v), nil
}

// cellString renders an identity cell. Integral floats from JSON decoding
// print without a decimal point.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && finite(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
