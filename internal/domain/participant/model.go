package participant

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyName     = errors.New("participant name cannot be empty")
	ErrDuplicateName = errors.New("participant name already exists")
)

// Participant is a person who may be marked present or absent in zero or more sessions.
type Participant struct {
	ID    int64
	Name  string
	Email string // optional
}

// Validate checks if the Participant has valid data.
// PRE: Participant struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty; it is otherwise stored exactly as given
func (p *Participant) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// HasEmail reports whether the participant can receive notices.
func (p *Participant) HasEmail() bool {
	return strings.TrimSpace(p.Email) != ""
}
