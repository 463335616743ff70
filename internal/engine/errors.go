package engine

import (
	"errors"
	"fmt"
)

// Error taxonomy. Check with errors.Is.
var (
	// ErrDivisionUndefined means a record has zero games played and cannot
	// produce per-game rates.
	ErrDivisionUndefined = errors.New("division undefined: zero games played")

	// ErrMissingRequiredColumn means the input table lacks the entity
	// identifier or games-played column. Fatal for the invocation.
	ErrMissingRequiredColumn = errors.New("missing required column")

	// ErrAmbiguousEntityMatch means a name lookup matched zero or several
	// candidates.
	ErrAmbiguousEntityMatch = errors.New("ambiguous entity match")

	// ErrInvalidValue means a cell could not be read as a number.
	ErrInvalidValue = errors.New("invalid numeric value")

	// ErrNonFinite means a total or rate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
)

// RecordError ties a failure to the entity it belongs to.
type RecordError struct {
	EntityID   string
	EntityName string
	Err        error
}

func (e *RecordError) Error() string {
	if e.EntityName != "" && e.EntityName != e.EntityID {
		return fmt.Sprintf("%s (%s): %v", e.EntityName, e.EntityID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.EntityID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Report tracks how many records a batch step accepted and why the rest were
// excluded. Record-level failures never abort a batch; they land here.
type Report struct {
	Accepted int
	Skipped  []*RecordError
	Notes    []string
}

// Skip records an excluded entity.
func (r *Report) Skip(id, name string, err error) {
	r.Skipped = append(r.Skipped, &RecordError{EntityID: id, EntityName: name, Err: err})
}

func (r *Report) skipErr(id, name string, err error) {
	var recErr *RecordError
	if errors.As(err, &recErr) {
		r.Skipped = append(r.Skipped, recErr)
		return
	}
	r.Skip(id, name, err)
}

// AddNotef records a batch-level observation that is not tied to an entity,
// such as a dropped game or an unmatched join row.
func (r *Report) AddNotef(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Then folds the report of a later step into this one. Skips and notes
// accumulate; Accepted becomes the later step's count, since its input was
// this step's output.
func (r *Report) Then(next Report) {
	r.Accepted = next.Accepted
	r.Skipped = append(r.Skipped, next.Skipped...)
	r.Notes = append(r.Notes, next.Notes...)
}

// Count returns how many records were excluded for reasons matching target.
func (r *Report) Count(target error) int {
	n := 0
	for _, s := range r.Skipped {
		if errors.Is(s, target) {
			n++
		}
	}
	return n
}

// Summary returns a human-readable summary of the batch step.
func (r *Report) Summary() string {
	return fmt.Sprintf("accepted=%d skipped=%d notes=%d",
		r.Accepted, len(r.Skipped), len(r.Notes))
}
