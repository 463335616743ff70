package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

var basicWeights = Weights{
	"PTS": 1.0, "REB": 1.0, "AST": 1.5, "STL": 3.0, "BLK": 3.0, "TOV": -1.0,
}

func recordA() StatRecord {
	return StatRecord{
		EntityID: "1", EntityName: "A", GamesPlayed: 10,
		Totals: map[string]float64{"PTS": 300, "REB": 100, "AST": 50, "STL": 10, "BLK": 5, "TOV": 20},
	}
}

func recordB() StatRecord {
	return StatRecord{
		EntityID: "2", EntityName: "B", GamesPlayed: 10,
		Totals: map[string]float64{"PTS": 250, "REB": 150, "AST": 80, "STL": 20, "BLK": 10, "TOV": 10},
	}
}

func TestComputeRates(t *testing.T) {
	got, err := ComputeRates(recordA(), basicWeights)
	if err != nil {
		t.Fatalf("ComputeRates: %v", err)
	}
	want := map[string]float64{"PTS": 30, "REB": 10, "AST": 5, "STL": 1, "BLK": 0.5, "TOV": 2}
	for k, v := range want {
		if !almostEqual(got.Rates[k], v, 1e-9) {
			t.Errorf("%s rate: got %v, want %v", k, got.Rates[k], v)
		}
	}
}

func TestComputeRates_ExtraKeysAndUnweightedTotals(t *testing.T) {
	rec := recordA()
	rec.Totals["MIN"] = 340
	rec.Totals["PF"] = 25

	got, err := ComputeRates(rec, Weights{"PTS": 1}, "MIN", "OREB")
	if err != nil {
		t.Fatalf("ComputeRates: %v", err)
	}
	if !almostEqual(got.Rates["MIN"], 34, 1e-9) {
		t.Errorf("MIN display rate: got %v", got.Rates["MIN"])
	}
	if _, ok := got.Rates["PF"]; ok {
		t.Error("PF is neither weighted nor requested and must not get a rate")
	}
	if _, ok := got.Rates["OREB"]; ok {
		t.Error("OREB is absent from totals and must not appear")
	}
}

func TestComputeRates_DoesNotMutateInput(t *testing.T) {
	rec := recordA()
	out, err := ComputeRates(rec, basicWeights)
	if err != nil {
		t.Fatal(err)
	}
	out.Totals["PTS"] = -1
	if rec.Totals["PTS"] != 300 {
		t.Error("ComputeRates output aliases the input totals")
	}
	if rec.Rates != nil {
		t.Error("input record gained rates")
	}
}

func TestComputeRates_ZeroGames(t *testing.T) {
	for _, gp := range []int{0, -3} {
		rec := recordA()
		rec.GamesPlayed = gp
		_, err := ComputeRates(rec, basicWeights)
		if !errors.Is(err, ErrDivisionUndefined) {
			t.Errorf("games=%d: got %v, want ErrDivisionUndefined", gp, err)
		}
	}
}

func TestComputeRates_NonFinite(t *testing.T) {
	rec := recordA()
	rec.Totals["AST"] = math.NaN()
	_, err := ComputeRates(rec, basicWeights)
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("got %v, want ErrNonFinite", err)
	}
}

func TestComputeScore_Scenario1(t *testing.T) {
	a, _ := ComputeRates(recordA(), basicWeights)
	b, _ := ComputeRates(recordB(), basicWeights)

	if got := ComputeScore(a.Rates, basicWeights); !almostEqual(got, 50.0, 1e-9) {
		t.Errorf("score A: got %v, want 50", got)
	}
	if got := ComputeScore(b.Rates, basicWeights); !almostEqual(got, 60.0, 1e-9) {
		t.Errorf("score B: got %v, want 60", got)
	}
}

func TestComputeScore_MissingOptionalColumn(t *testing.T) {
	w := Weights{"PTS": 1.0, "OREB": 1.5, "DREB": 1.2}
	rec := StatRecord{EntityID: "x", GamesPlayed: 2, Totals: map[string]float64{"PTS": 40}}

	withRates, err := ComputeRates(rec, w)
	if err != nil {
		t.Fatalf("missing OREB must not raise: %v", err)
	}
	if got := ComputeScore(withRates.Rates, w); !almostEqual(got, 20, 1e-9) {
		t.Errorf("score: got %v, want 20 (OREB/DREB contribute 0)", got)
	}
}

func TestComputeScore_PermutationInvariant(t *testing.T) {
	type term struct {
		key string
		w   float64
	}
	terms := []term{
		{"PTS", 1.0}, {"OREB", 1.5}, {"DREB", 1.2}, {"AST", 1.5},
		{"STL", 3.0}, {"BLK", 3.0}, {"TOV", -1.0}, {"PLUS_MINUS", 0.5},
	}
	rates := map[string]float64{
		"PTS": 27.31, "OREB": 1.13, "DREB": 6.77, "AST": 8.09,
		"STL": 1.42, "BLK": 0.61, "TOV": 3.35, "PLUS_MINUS": 4.9,
	}

	base := Weights{}
	for _, tm := range terms {
		base[tm.key] = tm.w
	}
	want := ComputeScore(rates, base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		rng.Shuffle(len(terms), func(a, b int) { terms[a], terms[b] = terms[b], terms[a] })
		w := Weights{}
		for _, tm := range terms {
			w[tm.key] = tm.w
		}
		if got := ComputeScore(rates, w); !almostEqual(got, want, 1e-9) {
			t.Fatalf("permutation %d: got %v, want %v", i, got, want)
		}
	}
}

func TestComputeScore_Linear(t *testing.T) {
	rates := map[string]float64{"PTS": 10, "AST": 4}
	doubled := map[string]float64{"PTS": 20, "AST": 8}
	w := Weights{"PTS": 1, "AST": 1.5}

	if got, want := ComputeScore(doubled, w), 2*ComputeScore(rates, w); !almostEqual(got, want, 1e-9) {
		t.Errorf("doubling rates: got %v, want %v", got, want)
	}
	if got := ComputeScore(nil, w); got != 0 {
		t.Errorf("no rates: got %v, want 0", got)
	}
}

func TestScoreAll_PerRecordResults(t *testing.T) {
	zero := recordB()
	zero.EntityID, zero.EntityName, zero.GamesPlayed = "3", "Zero", 0

	results := ScoreAll([]StatRecord{recordA(), zero, recordB()}, basicWeights)
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
	if !results[0].OK() || !results[2].OK() {
		t.Fatal("valid records must score")
	}
	if results[1].OK() {
		t.Fatal("zero-games record must fail")
	}
	var recErr *RecordError
	if !errors.As(results[1].Err, &recErr) || recErr.EntityName != "Zero" {
		t.Errorf("error should identify the record, got %v", results[1].Err)
	}
	if !errors.Is(results[1].Err, ErrDivisionUndefined) {
		t.Errorf("got %v, want ErrDivisionUndefined", results[1].Err)
	}
}
