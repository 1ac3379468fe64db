package attendance

import (
	"errors"
	"strings"
)

// Status values accepted by the attendance_records CHECK constraint.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Domain errors
var (
	ErrInvalidStatus      = errors.New("status must be 'Present' or 'Absent'")
	ErrMissingSessionDate = errors.New("session date must be set")
	ErrMissingParticipant = errors.New("attendance must be associated with a participant")
)

// Record holds one participant's status for one session date.
type Record struct {
	ID            int64
	ParticipantID int64
	SessionDate   string // opaque key, YYYY-MM-DD by convention
	Status        string
}

// SessionEntry is a Record joined with the participant's name.
type SessionEntry struct {
	ParticipantName string
	Status          string
	SessionDate     string
}

// IsValidStatus reports whether s is one of the enum values.
func IsValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: ParticipantID > 0, SessionDate non-blank, Status in enum
func (r *Record) Validate() error {
	if r.ParticipantID <= 0 {
		return ErrMissingParticipant
	}
	if strings.TrimSpace(r.SessionDate) == "" {
		return ErrMissingSessionDate
	}
	if !IsValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// IsPresent returns true if the participant was marked present.
func (e SessionEntry) IsPresent() bool {
	return e.Status == StatusPresent
}
