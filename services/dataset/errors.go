// Package dataset holds the whole-table stages of the pipeline:
// aggregation with a versioned label map, class balancing, split
// generation, and row-set intersection. Every stage takes ownership of
// its input table and returns a new table; inputs are never mutated.
package dataset

import "errors"

// Sentinel error set. Stages return these (wrapped with context via
// fmt.Errorf("…: %w", ErrX)); callers match with errors.Is.
var (
	// ErrInsufficientData indicates a required class or group has zero
	// rows. Fatal: balancing cannot proceed.
	ErrInsufficientData = errors.New("dataset: class has no rows")

	// ErrUnsatisfiableSplit indicates a class cannot appear in every
	// split without violating user exclusivity (fewer distinct users
	// carrying the class than splits). Fatal, never silently relaxed.
	ErrUnsatisfiableSplit = errors.New("dataset: class cannot be distributed across all splits")

	// ErrSchemaMismatch indicates per-session tables with differing
	// modality configuration were handed to the aggregator.
	ErrSchemaMismatch = errors.New("dataset: session tables do not share a column schema")

	// ErrUnknownLabel indicates a session label absent from an explicit
	// label map.
	ErrUnknownLabel = errors.New("dataset: label not present in label map")

	// ErrBadProportions indicates split fractions that are not positive
	// or do not sum to 1.
	ErrBadProportions = errors.New("dataset: split proportions must be positive and sum to 1")
)
