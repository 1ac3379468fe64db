// Package session keeps per-client flow state (the chosen session date and a
// one-shot flash message) across requests.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/hkdf"
)

// State is the per-client flow state.
type State struct {
	SessionDate string `json:"session_date,omitempty"`
	Flash       string `json:"flash,omitempty"`
}

// HasDate reports whether a session date has been chosen.
func (s State) HasDate() bool {
	return s.SessionDate != ""
}

// Store loads and saves State for a client. Concurrent saves from the same
// client are last-write-wins.
type Store interface {
	// Load returns the client's state. A client without state gets the zero
	// State and a nil error; unreadable state returns ErrInvalidState.
	Load(r *http.Request) (State, error)
	Save(w http.ResponseWriter, r *http.Request, s State) error
}

// ErrInvalidState is returned when a client presents state that cannot be decoded.
var ErrInvalidState = errors.New("invalid session state")

// Options configure the cookie every backend writes.
type Options struct {
	TTL    time.Duration
	Secure bool
}

func (o Options) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// DeriveKey expands secret into an n-byte key bound to purpose.
// PRE: secret non-empty, n > 0
// POST: The same (secret, purpose, n) always yields the same key
func DeriveKey(secret, purpose string, n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// newToken returns a random opaque identifier for server-side backends.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// tokenFrom returns the client's token cookie value, or "" when absent or malformed.
func tokenFrom(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || len(c.Value) != 64 {
		return ""
	}
	if _, err := hex.DecodeString(c.Value); err != nil {
		return ""
	}
	return c.Value
}
