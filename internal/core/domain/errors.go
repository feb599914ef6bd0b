package domain

import (
	"errors"
	"fmt"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrJobFailed       = errors.New("job failed")
	ErrJobTimeout      = errors.New("job polling timed out")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
