package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable marks a symbol whose series could not be obtained.
	// Such symbols are excluded from scoring and ranking.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientHistory means the series is shorter than an indicator window.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrNonFinite means a contribution evaluated to NaN or ±Inf.
	ErrNonFinite = errors.New("non-finite contribution")
)

// IndicatorError reports a failed indicator computation for one symbol.
type IndicatorError struct {
	Indicator Indicator
	Err       error
}

func (e *IndicatorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Indicator, e.Err)
}

func (e *IndicatorError) Unwrap() error { return e.Err }

// Reason returns a short label for metrics and reports.
func (e *IndicatorError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(e.Err, ErrNonFinite):
		return "non_finite"
	default:
		return "error"
	}
}
