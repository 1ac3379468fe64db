package storage

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// FailureKind classifies the outcome of a storage call.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureConstraint
	FailureStorage
)

// String returns the label used in logs and metrics.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureConstraint:
		return "constraint"
	default:
		return "storage"
	}
}

// Sentinel errors wrapped around driver errors.
var (
	ErrConstraint = errors.New("constraint violation")
	ErrStorage    = errors.New("storage failure")
)

// IsConstraint reports whether err is a SQLite constraint violation
// (UNIQUE, CHECK, NOT NULL or FOREIGN KEY).
func IsConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// Wrap tags a driver error with ErrConstraint or ErrStorage.
// PRE: none
// POST: nil stays nil; the result matches exactly one sentinel via errors.Is
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConstraint) || errors.Is(err, ErrStorage) {
		return err
	}
	if IsConstraint(err) {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// Classify maps an error returned by a store to its FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrConstraint) || IsConstraint(err):
		return FailureConstraint
	default:
		return FailureStorage
	}
}
