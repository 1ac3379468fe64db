package session

import (
	"net/http"
	"sync"
	"time"
)

// TokenCookieName is the opaque-token cookie used by server-side backends.
const TokenCookieName = "attendance_sid"

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore keeps State in process memory keyed by an opaque token.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	opts    Options
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		opts:    opts,
		now:     time.Now,
	}
}

// Load returns the state for the client's token if it has not expired.
func (s *MemoryStore) Load(r *http.Request) (State, error) {
	token := tokenFrom(r, TokenCookieName)
	if token == "" {
		return State{}, nil
	}
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return State{}, nil
	}
	return entry.state, nil
}

// Save stores st under the client's token. Tokens this store did not issue,
// or whose entry has expired, are replaced with a fresh one.
// POST: The entry's expiry is refreshed to now + TTL
func (s *MemoryStore) Save(w http.ResponseWriter, r *http.Request, st State) error {
	fresh, err := newToken()
	if err != nil {
		return err
	}
	token := tokenFrom(r, TokenCookieName)

	now := s.now()
	s.mu.Lock()
	if entry, ok := s.entries[token]; !ok || now.After(entry.expiresAt) {
		token = fresh
	}
	s.entries[token] = memoryEntry{state: st, expiresAt: now.Add(s.opts.TTL)}
	for t, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, t)
		}
	}
	s.mu.Unlock()

	http.SetCookie(w, s.opts.cookie(TokenCookieName, token))
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
