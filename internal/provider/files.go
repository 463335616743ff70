package provider

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoExport is returned when a storage directory holds no usable export.
var ErrNoExport = errors.New("no stats export found")

// FindExport returns the first file in dir, by name, whose extension matches
// exts. Earlier extensions win over later ones.
func FindExport(dir string, exts []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, ext := range exts {
		for _, name := range names {
			if strings.EqualFold(filepath.Ext(name), ext) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoExport, dir, strings.Join(exts, ", "))
}

// CanonicalHeader maps an export header to its canonical column name.
// Headers without an alias are kept as written.
func CanonicalHeader(header string, aliases map[string]string) string {
	h := strings.TrimSpace(header)
	if c, ok := aliases[h]; ok {
		return c
	}
	return h
}
