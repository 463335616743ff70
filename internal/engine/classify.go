package engine

import "fmt"

// Op is a threshold comparator.
type Op string

const (
	OpGTE Op = ">="
	OpGT  Op = ">"
	OpLTE Op = "<="
	OpLT  Op = "<"
	OpEQ  Op = "=="
)

// Threshold is one row of a declarative classification table: the record
// earns Label when Totals[Stat] Op Cutoff holds.
type Threshold struct {
	Label  string  `yaml:"label"`
	Stat   string  `yaml:"stat"`
	Op     Op      `yaml:"op"`
	Cutoff float64 `yaml:"cutoff"`
}

func (t Threshold) match(v float64) bool {
	switch t.Op {
	case OpGTE:
		return v >= t.Cutoff
	case OpGT:
		return v > t.Cutoff
	case OpLTE:
		return v <= t.Cutoff
	case OpLT:
		return v < t.Cutoff
	case OpEQ:
		return v == t.Cutoff
	default:
		return false
	}
}

// ValidateThresholds rejects rows with an unknown comparator or no label.
func ValidateThresholds(table []Threshold) error {
	for i, t := range table {
		if t.Label == "" {
			return fmt.Errorf("thresholds[%d]: label is required", i)
		}
		if t.Stat == "" {
			return fmt.Errorf("thresholds[%d] %q: stat is required", i, t.Label)
		}
		switch t.Op {
		case OpGTE, OpGT, OpLTE, OpLT, OpEQ:
		default:
			return fmt.Errorf("thresholds[%d] %q: unknown op %q", i, t.Label, t.Op)
		}
	}
	return nil
}

// Labels is the set of threshold labels a record satisfies, in table order.
type Labels []string

// Has reports whether label is in the set.
func (l Labels) Has(label string) bool {
	for _, x := range l {
		if x == label {
			return true
		}
	}
	return false
}

// Classify evaluates every threshold against the record's raw totals.
// Thresholds are independent ORed conditions, so a record may earn zero,
// one or several labels. A stat the record does not carry satisfies nothing.
func Classify(record StatRecord, table []Threshold) Labels {
	var labels Labels
	for _, t := range table {
		v, ok := record.Totals[t.Stat]
		if !ok || !finite(v) {
			continue
		}
		if t.match(v) && !labels.Has(t.Label) {
			labels = append(labels, t.Label)
		}
	}
	return labels
}

// Classified pairs a record with the labels it earned.
type Classified struct {
	Record StatRecord
	Labels Labels
}

// ClassifyAll returns the records that earn at least one label, in input
// order. Records whose thresholded totals are NaN or infinite are reported
// instead of being quietly treated as misses.
func ClassifyAll(records []StatRecord, table []Threshold) ([]Classified, Report) {
	var report Report
	var out []Classified
	for _, rec := range records {
		if bad, ok := nonFiniteStat(rec, table); ok {
			report.Skip(rec.EntityID, rec.EntityName, fmt.Errorf("%w: %s", ErrNonFinite, bad))
			continue
		}
		report.Accepted++
		if labels := Classify(rec, table); len(labels) > 0 {
			out = append(out, Classified{Record: rec, Labels: labels})
		}
	}
	return out, report
}

func nonFiniteStat(rec StatRecord, table []Threshold) (string, bool) {
	for _, t := range table {
		if v, ok := rec.Totals[t.Stat]; ok && !finite(v) {
			return t.Stat, true
		}
	}
	return "", false
}
