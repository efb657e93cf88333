package schema

import "errors"

// Scoring errors. They are always wrapped with context; test with errors.Is.
var (
	// ErrStructuralMismatch means a rubric and its weight scheme disagree on child counts.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrWeightSumInvalid means sibling weights at some level do not sum to 100.00%.
	ErrWeightSumInvalid = errors.New("weight sum invalid")

	// ErrMissingWeightBinding means a snapshot node has no bound weight. Internal invariant.
	ErrMissingWeightBinding = errors.New("missing weight binding")

	// ErrDuplicateScore means a score set holds more than one entry for a criterion key.
	ErrDuplicateScore = errors.New("duplicate score")

	// ErrZeroWeightDenominator means available siblings carry no weight. Internal invariant.
	ErrZeroWeightDenominator = errors.New("zero weight denominator")
)
