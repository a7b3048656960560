package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrInvalidID          = errors.New("invalid ID format")
	ErrEmptyField         = errors.New("race field is empty")
	ErrInvalidFieldSize   = errors.New("field size must be at least 2")
	ErrInsufficientData   = errors.New("insufficient history for analysis")
	ErrNoStyleCounts      = errors.New("style counts sum to zero")
)

// RaceMismatchError reports a population statistic presented for the
// wrong race. The scorer treats it as fatal for the dimension rather
// than silently scoring with contaminated data.
type RaceMismatchError struct {
	Expected RaceKey
	Actual   RaceKey
}

func (e *RaceMismatchError) Error() string {
	return fmt.Sprintf("draw statistics keyed to wrong race: expected %s race %d (%dm %s), got %s race %d (%dm %s)",
		e.Expected.Date, e.Expected.RaceNumber, e.Expected.Distance, e.Expected.Going,
		e.Actual.Date, e.Actual.RaceNumber, e.Actual.Distance, e.Actual.Going)
}

// IsRaceMismatch reports whether err wraps a RaceMismatchError.
func IsRaceMismatch(err error) bool {
	var mismatch *RaceMismatchError
	return errors.As(err, &mismatch)
}
