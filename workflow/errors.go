package workflow

import "errors"

// ValidationError reports a caller-side precondition that failed before any
// agent call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is a caller-side precondition failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	// ErrScanInFlight means a count submission is already outstanding.
	ErrScanInFlight = errors.New("a count submission is already in progress")

	// ErrAnalysisInFlight means an analysis is already outstanding; the
	// trigger must be unavailable, not merely ignored.
	ErrAnalysisInFlight = errors.New("an inventory analysis is already in progress")

	// ErrSubmissionInFlight means an order dispatch is already outstanding.
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")

	// ErrNoActiveReview means an edit was attempted with no recommendation
	// set under review.
	ErrNoActiveReview = errors.New("no recommendations are under review")
)
