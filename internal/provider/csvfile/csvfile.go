// Package csvfile reads stats exports saved as CSV into provider tables.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/albapepper/courtrank/internal/provider"
)

// Read parses a CSV export. Headers are renamed through aliases; when two
// headers land on the same canonical name the first one wins. Rows that
// repeat the header line (as pasted basketball-reference tables do) are
// skipped. Cells are kept as trimmed strings; empty cells are left out.
func Read(r io.Reader, aliases map[string]string) (*provider.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make([]string, len(header))
	table := provider.NewTable()
	for i, h := range header {
		c := provider.CanonicalHeader(h, aliases)
		if c == "" || table.HasColumn(c) {
			continue
		}
		columns[i] = c
		table.Columns = append(table.Columns, c)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		if isHeaderRepeat(record, header) || isEmpty(record) {
			continue
		}

		row := make(map[string]interface{}, len(table.Columns))
		for i, cell := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			if v := strings.TrimSpace(cell); v != "" {
				row[columns[i]] = v
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, aliases map[string]string) (*provider.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Read(f, aliases)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func isHeaderRepeat(record, header []string) bool {
	return len(record) > 0 && len(header) > 0 &&
		strings.TrimSpace(record[0]) == strings.TrimSpace(header[0]) &&
		len(record) > 1 && len(header) > 1 &&
		strings.TrimSpace(record[1]) == strings.TrimSpace(header[1])
}

func isEmpty(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
