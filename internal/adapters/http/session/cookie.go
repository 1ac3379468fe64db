package session

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

// CookieName is the cookie holding signed and encrypted state.
const CookieName = "attendance_session"

// CookieStore keeps State inside the client's cookie, signed and encrypted.
type CookieStore struct {
	codec *securecookie.SecureCookie
	opts  Options
}

// NewCookieStore derives cookie keys from secret.
// PRE: secret non-empty
// POST: Cookies written by one store are readable by any store built from the same secret
func NewCookieStore(secret string, opts Options) (*CookieStore, error) {
	hashKey, err := DeriveKey(secret, "attendance session hash", 32)
	if err != nil {
		return nil, err
	}
	blockKey, err := DeriveKey(secret, "attendance session block", 32)
	if err != nil {
		return nil, err
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(opts.TTL.Seconds()))
	return &CookieStore{codec: codec, opts: opts}, nil
}

// Load decodes the state cookie.
func (s *CookieStore) Load(r *http.Request) (State, error) {
	c, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	var st State
	if err := s.codec.Decode(CookieName, c.Value, &st); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return st, nil
}

// Save encodes st into the state cookie.
func (s *CookieStore) Save(w http.ResponseWriter, _ *http.Request, st State) error {
	encoded, err := s.codec.Encode(CookieName, st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	http.SetCookie(w, s.opts.cookie(CookieName, encoded))
	return nil
}
