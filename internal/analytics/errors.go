package analytics

import "fmt"

// EmptyInputError reports that an aggregator was handed an empty record
// snapshot. The caller decides whether that is fatal; the engine has nothing
// meaningful to compute.
type EmptyInputError struct {
	Op string // which computation was attempted
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no records supplied", e.Op)
}

// DegenerateFeatureError reports zero-variance feature columns encountered
// during scaling. The scaler substitutes zeros for these columns and returns
// this error alongside the substituted matrix, so the caller can either abort
// or knowingly proceed with the default.
type DegenerateFeatureError struct {
	Columns []int // indexes of the zero-variance columns
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("zero-variance feature column(s) %v: scaled values substituted with zeros", e.Columns)
}

// InvalidClusterCountError reports a segment count outside [1, n].
type InvalidClusterCountError struct {
	K int // requested cluster count
	N int // number of data points available
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("invalid cluster count %d: must be in [1, %d]", e.K, e.N)
}

// InconsistentKeyError reports a lookup for a customer or product ID that is
// absent from the snapshot the result was derived from. This indicates a
// caller-side data integrity bug, not a recoverable analytics condition.
type InconsistentKeyError struct {
	Kind string // "customer" or "product"
	Key  int64
}

func (e *InconsistentKeyError) Error() string {
	return fmt.Sprintf("%s ID %d not present in record snapshot", e.Kind, e.Key)
}
