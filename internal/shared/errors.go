package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the draft failed field or form validation.
	ErrValidation = errors.New("validation failed")
	// ErrNoTermsSelected indicates submission was attempted with no terms selected.
	// Kept distinct from ErrValidation so callers can surface it separately.
	ErrNoTermsSelected = errors.New("at least one term must be selected")
	// ErrNegativeTotal indicates the computed grand total is below zero.
	ErrNegativeTotal = errors.New("computed total is negative")
	// ErrProductResolution indicates a per-line product creation call failed.
	ErrProductResolution = errors.New("product resolution failed")
	// ErrSubmission indicates the quotation create/update call failed.
	ErrSubmission = errors.New("quotation submission failed")
)
