// Package common - error kinds shared by the geometry, consolidation and decision packages.
package common

import "github.com/pkg/errors"

var (
	// ErrInvalidInput is returned when geometry input is malformed or empty where a non-empty
	// result is structurally required (e.g. the union of zero boxes).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration is returned when a threshold is outside of its valid domain.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch is returned when maps and image dimensions disagree.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// InvalidInput wraps ErrInvalidInput with a formatted message.
func InvalidInput(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// InvalidConfiguration wraps ErrInvalidConfiguration with a formatted message.
func InvalidConfiguration(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

// DimensionMismatch wraps ErrDimensionMismatch with the two disagreeing sizes.
func DimensionMismatch(what string, wantW, wantH, gotW, gotH int) error {
	return errors.Wrapf(ErrDimensionMismatch, "%s: want %dx%d, got %dx%d", what, wantW, wantH, gotW, gotH)
}
