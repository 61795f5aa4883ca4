package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrInvalidPhases   = fmt.Errorf("%w: phase count must be >= 1", ErrInvalidConfig)
	ErrInvalidAnchor   = fmt.Errorf("%w: anchor must be positive", ErrInvalidConfig)
	ErrInvalidWidth    = fmt.Errorf("%w: half-width parameters must be non-negative", ErrInvalidConfig)
	ErrLengthMismatch  = fmt.Errorf("%w: sequence lengths do not match", ErrInvalidConfig)
	ErrInvalidIterates = fmt.Errorf("%w: iteration count must be positive", ErrInvalidConfig)
	ErrInvalidMaxAge   = fmt.Errorf("%w: max age must be positive", ErrInvalidConfig)
	ErrSeedCollision   = fmt.Errorf("%w: baselines require distinct seeds", ErrInvalidConfig)

	// Data errors
	ErrNoAgeSource = errors.New("no age source configured")
	ErrBadRecord   = errors.New("malformed age record")
)

// NewValidationError reports an invalid parameter with context.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// NewRecordError reports a malformed row in an age table.
func NewRecordError(row int, reason string) error {
	return fmt.Errorf("%w: row %d: %s", ErrBadRecord, row, reason)
}

// IsConfigError reports whether err stems from invalid configuration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
