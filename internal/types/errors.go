package types

import "fmt"

// Error taxonomy for ingestion, reconciliation, and navigation. Every
// validation error is detected before any state mutation, so a caller that
// receives one of these can assume nothing changed.

// ParseError means the input was not valid JSON at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "invalid JSON format" }
func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError means the JSON parsed but the top-level shape or a field type
// is wrong: not an array, applicable not a boolean, an unrecognized
// instruction type, or an invalid evaluation_result value.
type ShapeError struct {
	Detail string
}

func (e *ShapeError) Error() string { return e.Detail }

// CountMismatchError means the imported array length, or a rubric array
// length, differs from the canonical store. Instruction is the 1-based
// instruction index for rubric-count mismatches, 0 for the top-level count.
type CountMismatchError struct {
	Instruction int
	Expected    int
	Actual      int
}

func (e *CountMismatchError) Error() string {
	if e.Instruction > 0 {
		return fmt.Sprintf("instruction %d: rubric count mismatch: expected %d, got %d",
			e.Instruction, e.Expected, e.Actual)
	}
	return fmt.Sprintf("instruction count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// IdentityMismatchError means instruction or rubric text, or a rubric
// verifier, did not match the store at the expected position. Indices are
// 1-based; Rubric is 0 when the instruction text itself mismatched.
type IdentityMismatchError struct {
	Instruction int
	Rubric      int
	Field       string
}

func (e *IdentityMismatchError) Error() string {
	if e.Rubric > 0 {
		return fmt.Sprintf("instruction %d, rubric %d: %s mismatch", e.Instruction, e.Rubric, e.Field)
	}
	return fmt.Sprintf("instruction %d: %s mismatch", e.Instruction, e.Field)
}

// EmptyListError means navigation was attempted over zero displayable
// instructions, typically because the applicability step was never
// completed. It signals "not ready", not a crash.
type EmptyListError struct{}

func (e *EmptyListError) Error() string {
	return "no instructions to display: complete the applicability step first"
}

// ValidationError covers local precondition failures: committing an empty
// or undetermined instruction set, scoring out of range, or writing an
// illegal verdict onto a non-applicable instruction.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }
