package orchestrators

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"attendance/internal/adapters/storage"
)

// Outcome is the result class of a write, also used as a metrics label.
type Outcome string

const (
	OutcomeAdded        Outcome = "added"
	OutcomeRecorded     Outcome = "recorded"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeStorageError Outcome = "storage_error"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// outcomeFor maps a store error to an outcome; onConstraint names what a
// constraint violation means for the calling operation.
func outcomeFor(err error, onConstraint Outcome) Outcome {
	switch storage.Classify(err) {
	case storage.FailureNone:
		return ""
	case storage.FailureConstraint:
		return onConstraint
	default:
		return OutcomeStorageError
	}
}
