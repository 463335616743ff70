package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/albapepper/courtrank/internal/engine"
	"github.com/albapepper/courtrank/internal/provider"
)

// Profile is one named scoring configuration: the weights, the rates shown
// next to each leaderboard row and the default leaderboard size.
type Profile struct {
	Name     string               `yaml:"-"`
	Weights  engine.Weights       `yaml:"weights"`
	Display  []engine.DisplayStat `yaml:"display"`
	Top      int                  `yaml:"top"`
	MinGames int                  `yaml:"min_games"`
}

// Profiles is the full scoring configuration: named profiles, named
// threshold tables and the header aliases applied to exported files.
type Profiles struct {
	Profiles      map[string]Profile            `yaml:"profiles"`
	Thresholds    map[string][]engine.Threshold `yaml:"thresholds"`
	HeaderAliases map[string]string             `yaml:"header_aliases"`
}

// Built-in profile and threshold-table names.
const (
	ProfileBasic   = "basic"
	ProfileMonthly = "monthly"
	ProfileSeason  = "season"
	ProfileGame    = "game"
	ProfileTeam    = "team"

	ThresholdsStandout = "standout"
	ThresholdsRookie   = "rookie"
	ThresholdsYoung    = "young"
)

// DefaultTop is the leaderboard size for profiles that do not set one.
const DefaultTop = 25

// --------------------------------------------------------------------------
// Built-in defaults
// --------------------------------------------------------------------------

var splitReboundWeights = engine.Weights{
	provider.StatPoints:    1.0,
	provider.StatOffReb:    1.5,
	provider.StatDefReb:    1.2,
	provider.StatAssists:   1.5,
	provider.StatSteals:    3.0,
	provider.StatBlocks:    3.0,
	provider.StatTurnovers: -1.0,
	provider.StatPlusMinus: 0.5,
}

var averagesDisplay = []engine.DisplayStat{
	{Stat: provider.StatPoints, Label: "ppg"},
	{Stat: provider.StatOffReb, Label: "orpg"},
	{Stat: provider.StatDefReb, Label: "drpg"},
	{Stat: provider.StatRebounds, Label: "rpg"},
	{Stat: provider.StatAssists, Label: "apg"},
	{Stat: provider.StatSteals, Label: "spg"},
	{Stat: provider.StatBlocks, Label: "bpg"},
	{Stat: provider.StatTurnovers, Label: "tov"},
	{Stat: provider.StatPlusMinus, Label: "+/-"},
}

// DefaultProfiles returns the built-in scoring configuration. Each call
// returns a fresh copy that callers may modify.
func DefaultProfiles() *Profiles {
	return &Profiles{
		Profiles: map[string]Profile{
			ProfileBasic: {
				Weights: engine.Weights{
					provider.StatPoints:    1.0,
					provider.StatRebounds:  1.0,
					provider.StatAssists:   1.5,
					provider.StatSteals:    3.0,
					provider.StatBlocks:    3.0,
					provider.StatTurnovers: -1.0,
					provider.StatPlusMinus: 0.5,
				},
				Display: []engine.DisplayStat{
					{Stat: provider.StatPoints, Label: "ppg"},
					{Stat: provider.StatRebounds, Label: "rpg"},
					{Stat: provider.StatAssists, Label: "apg"},
					{Stat: provider.StatSteals, Label: "spg"},
					{Stat: provider.StatBlocks, Label: "bpg"},
					{Stat: provider.StatTurnovers, Label: "tov"},
					{Stat: provider.StatPlusMinus, Label: "+/-"},
				},
				Top: DefaultTop,
			},
			ProfileMonthly: {
				Weights: cloneWeights(splitReboundWeights),
				Display: append([]engine.DisplayStat(nil), averagesDisplay...),
				Top:     35,
			},
			ProfileSeason: {
				Weights: cloneWeights(splitReboundWeights),
				Display: append([]engine.DisplayStat(nil), averagesDisplay...),
				Top:     100,
			},
			ProfileGame: {
				Weights: engine.Weights{
					provider.StatPoints:   1.0,
					provider.StatRebounds: 1.2,
					provider.StatAssists:  1.5,
					provider.StatSteals:   3.0,
					provider.StatBlocks:   3.0,
				},
				Display: []engine.DisplayStat{
					{Stat: provider.StatPoints, Label: "pts"},
					{Stat: provider.StatRebounds, Label: "reb"},
					{Stat: provider.StatAssists, Label: "ast"},
					{Stat: provider.StatSteals, Label: "stl"},
					{Stat: provider.StatBlocks, Label: "blk"},
				},
				Top: 10,
			},
			ProfileTeam: {
				Weights: engine.Weights{
					provider.StatWins:      50.0,
					provider.StatPoints:    1.0,
					provider.StatRebounds:  1.0,
					provider.StatAssists:   1.5,
					provider.StatSteals:    3.0,
					provider.StatBlocks:    3.0,
					provider.StatTurnovers: -1.0,
				},
				Display: []engine.DisplayStat{
					{Stat: provider.StatWins, Label: "w/g"},
					{Stat: provider.StatPoints, Label: "ppg"},
					{Stat: provider.StatRebounds, Label: "rpg"},
					{Stat: provider.StatAssists, Label: "apg"},
					{Stat: provider.StatTurnovers, Label: "tov"},
				},
				Top: 30,
			},
		},
		Thresholds: map[string][]engine.Threshold{
			ThresholdsStandout: {
				{Label: "PTS", Stat: provider.StatPoints, Op: engine.OpGTE, Cutoff: 30},
				{Label: "REB", Stat: provider.StatRebounds, Op: engine.OpGTE, Cutoff: 15},
				{Label: "AST", Stat: provider.StatAssists, Op: engine.OpGTE, Cutoff: 10},
				{Label: "STL", Stat: provider.StatSteals, Op: engine.OpGTE, Cutoff: 5},
				{Label: "BLK", Stat: provider.StatBlocks, Op: engine.OpGTE, Cutoff: 5},
			},
			ThresholdsRookie: {
				{Label: "rookie", Stat: provider.StatRookie, Op: engine.OpEQ, Cutoff: 1},
			},
			ThresholdsYoung: {
				{Label: "young", Stat: provider.StatAge, Op: engine.OpLTE, Cutoff: 21},
			},
		},
		HeaderAliases: map[string]string{
			"Player": provider.ColPlayerName,
			"Tm":     provider.ColTeamAbbr,
			"Team":   provider.ColTeamAbbr,
			"Age":    provider.StatAge,
			"G":      provider.StatGP,
			"MP":     provider.StatMinutes,
			"FG":     provider.StatFGM,
			"FGA":    provider.StatFGA,
			"3P":     provider.StatFG3M,
			"3PA":    provider.StatFG3A,
			"FT":     provider.StatFTM,
			"FTA":    provider.StatFTA,
			"ORB":    provider.StatOffReb,
			"DRB":    provider.StatDefReb,
			"TRB":    provider.StatRebounds,
			"+/-":    provider.StatPlusMinus,
		},
	}
}

// --------------------------------------------------------------------------
// Loading
// --------------------------------------------------------------------------

// LoadProfiles returns the built-in profiles, overridden by the YAML file at
// path when path is non-empty. A profile or threshold table named in the
// file replaces the built-in one of the same name wholesale; header aliases
// are merged key by key.
func LoadProfiles(path string) (*Profiles, error) {
	p := DefaultProfiles()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file %q: %w", path, err)
	}
	if err := p.merge(data); err != nil {
		return nil, fmt.Errorf("profile file %q: %w", path, err)
	}
	return p, nil
}

func (p *Profiles) merge(data []byte) error {
	var file Profiles
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	for name, prof := range file.Profiles {
		if prof.Top == 0 {
			prof.Top = DefaultTop
			if builtin, ok := p.Profiles[name]; ok {
				prof.Top = builtin.Top
			}
		}
		p.Profiles[name] = prof
	}
	for name, table := range file.Thresholds {
		p.Thresholds[name] = table
	}
	for header, canonical := range file.HeaderAliases {
		p.HeaderAliases[header] = canonical
	}
	return p.Validate()
}

// Validate checks every profile and threshold table.
func (p *Profiles) Validate() error {
	for _, name := range sortedNames(p.Profiles) {
		prof := p.Profiles[name]
		if len(prof.Weights) == 0 {
			return fmt.Errorf("profile %q: at least one weight is required", name)
		}
		if prof.Top < 0 {
			return fmt.Errorf("profile %q: top must not be negative, got %d", name, prof.Top)
		}
		if prof.MinGames < 0 {
			return fmt.Errorf("profile %q: min_games must not be negative, got %d", name, prof.MinGames)
		}
		for i, d := range prof.Display {
			if d.Stat == "" || d.Label == "" {
				return fmt.Errorf("profile %q: display[%d] needs both stat and label", name, i)
			}
		}
	}
	for name, table := range p.Thresholds {
		if err := engine.ValidateThresholds(table); err != nil {
			return fmt.Errorf("thresholds %q: %w", name, err)
		}
	}
	return nil
}

// Profile returns the named profile.
func (p *Profiles) Profile(name string) (Profile, error) {
	prof, ok := p.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown scoring profile %q (have %v)", name, sortedNames(p.Profiles))
	}
	prof.Name = name
	return prof, nil
}

// ThresholdTable returns the named threshold table.
func (p *Profiles) ThresholdTable(name string) ([]engine.Threshold, error) {
	table, ok := p.Thresholds[name]
	if !ok {
		return nil, fmt.Errorf("unknown threshold table %q", name)
	}
	return table, nil
}

func cloneWeights(w engine.Weights) engine.Weights {
	out := make(engine.Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

func sortedNames(m map[string]Profile) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
