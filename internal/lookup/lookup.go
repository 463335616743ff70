// Package lookup resolves free-text player names to canonical players.
//
// Resolution never guesses: a name must match exactly one candidate
// (ignoring case and extra whitespace). Anything else fails with a
// *MatchError that carries the nearest names so the caller can ask again.
package lookup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
)

// Suggestion defaults: at most five names with a ratio of 0.6 or better.
const (
	DefaultSuggestions = 5
	DefaultCutoff      = 0.6
)

// MatchError reports a name that matched zero or several players.
type MatchError struct {
	Query       string
	Matches     []provider.Player // set when several players share the name
	Suggestions []string          // nearest names when nothing matched
}

func (e *MatchError) Error() string {
	if len(e.Matches) > 1 {
		ids := make([]string, len(e.Matches))
		for i, p := range e.Matches {
			ids[i] = fmt.Sprintf("%d", p.ID)
		}
		return fmt.Sprintf("%q matches %d players (ids %s)", e.Query, len(e.Matches), strings.Join(ids, ", "))
	}
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no player named %q", e.Query)
	}
	return fmt.Sprintf("no player named %q; did you mean: %s", e.Query, strings.Join(e.Suggestions, ", "))
}

func (e *MatchError) Unwrap() error { return engine.ErrAmbiguousEntityMatch }

// Resolve returns the single candidate whose full name equals query.
func Resolve(query string, candidates []provider.Player) (provider.Player, error) {
	want := normalize(query)
	var matches []provider.Player
	for _, p := range candidates {
		if normalize(p.Name) == want {
			matches = append(matches, p)
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	merr := &MatchError{Query: query}
	if len(matches) > 1 {
		merr.Matches = matches
		return provider.Player{}, merr
	}
	names := make([]string, 0, len(candidates))
	for _, p := range candidates {
		names = append(names, p.Name)
	}
	merr.Suggestions = Suggest(query, names, DefaultSuggestions, DefaultCutoff)
	return provider.Player{}, merr
}

// Suggest returns up to n names whose similarity ratio to query is at least
// cutoff, best first. Comparison ignores case; duplicates are reported once.
func Suggest(query string, names []string, n int, cutoff float64) []string {
	if n <= 0 {
		return nil
	}
	type scored struct {
		name  string
		ratio float64
	}

	q := chars(normalize(query))
	m := difflib.NewMatcher(nil, nil)
	m.SetSeq2(q)

	seen := make(map[string]bool, len(names))
	var hits []scored
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		m.SetSeq1(chars(normalize(name)))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			hits = append(hits, scored{name: name, ratio: r})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].ratio != hits[j].ratio {
			return hits[i].ratio > hits[j].ratio
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func chars(s string) []string {
	return strings.Split(s, "")
}
