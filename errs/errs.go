// Package errs holds the error categories shared by every stage of the feature selection
// pipeline. Package specific errors wrap one of these so callers can branch on the category
// with errors.Is.
package errs

import "errors"

var (
	// ErrDataFormat covers malformed or unmapped input values such as a design label missing
	// from the category mapping.
	ErrDataFormat = errors.New("data format error")

	// ErrInvalidInput covers matrices or parameters violating an algorithm precondition,
	// e.g. negative counts passed to chi-square or more folds than samples in a class.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration covers out of range thresholds, percentiles and counts.
	ErrConfiguration = errors.New("configuration error")
)
