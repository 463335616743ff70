// Package htmltable reads stats tables out of saved basketball-reference
// style HTML pages into provider tables.
package htmltable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/albapepper/courtrank/internal/provider"
)

// ErrTableNotFound is returned when the page has no matching table.
var ErrTableNotFound = errors.New("stats table not found")

// Parse extracts one table from an HTML page. tableID selects table#id;
// an empty tableID takes the first table on the page. Tables the site ships
// inside HTML comments are searched too.
//
// Header cells are renamed through aliases. The player cell's
// data-append-csv attribute, when present, becomes the PLAYER_ID column.
// Repeated header rows inside tbody are skipped.
func Parse(r io.Reader, tableID string, aliases map[string]string) (*provider.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sel, err := findTable(doc, tableID)
	if err != nil {
		return nil, err
	}
	return readTable(sel, aliases), nil
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path, tableID string, aliases map[string]string) (*provider.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Parse(f, tableID, aliases)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func findTable(doc *goquery.Document, tableID string) (*goquery.Selection, error) {
	selector := "table"
	if tableID != "" {
		selector = "table#" + tableID
	}
	if sel := doc.Find(selector).First(); sel.Length() > 0 {
		return sel, nil
	}

	// Fall back to tables hidden in comments.
	var found *goquery.Selection
	doc.Find("*").Contents().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		node := s.Get(0)
		if node.Type != html.CommentNode || !strings.Contains(node.Data, "<table") {
			return true
		}
		inner, err := goquery.NewDocumentFromReader(strings.NewReader(node.Data))
		if err != nil {
			return true
		}
		if sel := inner.Find(selector).First(); sel.Length() > 0 {
			found = sel
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, selector)
	}
	return found, nil
}

func readTable(sel *goquery.Selection, aliases map[string]string) *provider.Table {
	table := provider.NewTable()

	// The last header row holds the column names; earlier rows are
	// over-headers spanning groups of columns.
	var columns []string
	sel.Find("thead tr").Last().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		c := provider.CanonicalHeader(cell.Text(), aliases)
		if c == "" || table.HasColumn(c) {
			columns = append(columns, "")
			return
		}
		columns = append(columns, c)
		table.Columns = append(table.Columns, c)
	})

	sel.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("over_header") || tr.Find("td").Length() == 0 {
			return
		}
		row := make(map[string]interface{}, len(columns)+1)
		tr.Find("th, td").Each(func(i int, cell *goquery.Selection) {
			if id, ok := cell.Attr("data-append-csv"); ok && id != "" {
				row[provider.ColPlayerID] = id
			}
			if i >= len(columns) || columns[i] == "" {
				return
			}
			if v := strings.TrimSpace(cell.Text()); v != "" {
				row[columns[i]] = v
			}
		})
		if _, ok := row[provider.ColPlayerID]; ok && !table.HasColumn(provider.ColPlayerID) {
			table.Columns = append([]string{provider.ColPlayerID}, table.Columns...)
		}
		table.Rows = append(table.Rows, row)
	})
	return table
}
