package session

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

var testOpts = Options{TTL: time.Hour}

// roundTrip saves st with a fresh recorder and returns a follow-up request
// carrying whatever cookies were set, plus the previous request's cookies.
func roundTrip(t *testing.T, store Store, prev *http.Request, st State) *http.Request {
	t.Helper()
	if prev == nil {
		prev = httptest.NewRequest(http.MethodGet, "/", nil)
	}
	rec := httptest.NewRecorder()
	if err := store.Save(rec, prev, st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	return next
}

// testStoreContract runs the behavior every backend shares.
func testStoreContract(t *testing.T, store Store) {
	t.Run("empty client", func(t *testing.T) {
		st, err := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if st != (State{}) || st.HasDate() {
			t.Errorf("state = %+v, want zero", st)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		req := roundTrip(t, store, nil, State{SessionDate: "2024-01-03", Flash: "hello"})
		st, err := store.Load(req)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if st.SessionDate != "2024-01-03" || st.Flash != "hello" {
			t.Errorf("state = %+v", st)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		req := roundTrip(t, store, nil, State{SessionDate: "2024-01-03", Flash: "hello"})
		req = roundTrip(t, store, req, State{SessionDate: "2024-01-10"})
		st, err := store.Load(req)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if st.SessionDate != "2024-01-10" || st.Flash != "" {
			t.Errorf("state = %+v, want latest write", st)
		}
	})

	t.Run("unissued token replaced", func(t *testing.T) {
		if _, ok := store.(*CookieStore); ok {
			t.Skip("cookie backend holds no server-side entries")
		}
		planted := strings.Repeat("ab", 32)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: planted})

		next := roundTrip(t, store, req, State{SessionDate: "2024-01-03"})
		c, err := next.Cookie(TokenCookieName)
		if err != nil {
			t.Fatalf("no token cookie issued: %v", err)
		}
		if c.Value == planted {
			t.Fatal("store adopted a token it never issued")
		}
		st, _ := store.Load(req)
		if st.HasDate() {
			t.Errorf("planted token loads state %+v, want empty", st)
		}
		st, _ = store.Load(next)
		if st.SessionDate != "2024-01-03" {
			t.Errorf("issued token state = %+v", st)
		}
	})

	t.Run("clients isolated", func(t *testing.T) {
		a := roundTrip(t, store, nil, State{SessionDate: "2024-01-03"})
		b := roundTrip(t, store, nil, State{SessionDate: "2024-01-10"})
		stA, _ := store.Load(a)
		stB, _ := store.Load(b)
		if stA.SessionDate != "2024-01-03" || stB.SessionDate != "2024-01-10" {
			t.Errorf("a = %+v, b = %+v", stA, stB)
		}
	})
}

// TestCookieStore tests the signed cookie backend.
func TestCookieStore(t *testing.T) {
	store, err := NewCookieStore("test-secret", testOpts)
	if err != nil {
		t.Fatalf("NewCookieStore: %v", err)
	}
	testStoreContract(t, store)
}

// TestCookieStore_Tampered verifies modified or foreign cookies are rejected.
func TestCookieStore_Tampered(t *testing.T) {
	store, _ := NewCookieStore("test-secret", testOpts)
	other, _ := NewCookieStore("other-secret", testOpts)

	req := roundTrip(t, other, nil, State{SessionDate: "2024-01-03"})
	if _, err := store.Load(req); !errors.Is(err, ErrInvalidState) {
		t.Errorf("foreign cookie: err = %v, want ErrInvalidState", err)
	}

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: CookieName, Value: "session_date=2024-01-03"})
	st, err := store.Load(forged)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("forged cookie: err = %v, want ErrInvalidState", err)
	}
	if st.HasDate() {
		t.Error("forged cookie should yield zero state")
	}
}

// TestCookieStore_CookieAttributes verifies the cookie is HttpOnly and scoped to /.
func TestCookieStore_CookieAttributes(t *testing.T) {
	store, _ := NewCookieStore("test-secret", Options{TTL: time.Hour, Secure: true})
	rec := httptest.NewRecorder()
	store.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), State{SessionDate: "2024-01-03"})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.MaxAge != 3600 || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie = %+v", c)
	}
}

// TestDeriveKey verifies keys are stable and purpose-bound.
func TestDeriveKey(t *testing.T) {
	a1, _ := DeriveKey("secret", "one", 32)
	a2, _ := DeriveKey("secret", "one", 32)
	b, _ := DeriveKey("secret", "two", 32)
	if len(a1) != 32 {
		t.Fatalf("len = %d, want 32", len(a1))
	}
	if !bytes.Equal(a1, a2) {
		t.Error("same inputs should derive the same key")
	}
	if bytes.Equal(a1, b) {
		t.Error("different purposes should derive different keys")
	}
}

// TestMemoryStore tests the in-process backend.
func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore(testOpts))
}

// TestMemoryStore_Expiry verifies entries expire after the TTL and are swept.
func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(testOpts)
	now := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	req := roundTrip(t, store, nil, State{SessionDate: "2024-01-03"})
	now = now.Add(2 * time.Hour)
	st, err := store.Load(req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.HasDate() {
		t.Errorf("state = %+v, want expired", st)
	}

	roundTrip(t, store, nil, State{SessionDate: "2024-01-10"})
	if store.Len() != 1 {
		t.Errorf("Len = %d, want expired entry swept", store.Len())
	}
}

// TestMemoryStore_IgnoresMalformedToken verifies junk tokens get a fresh token.
func TestMemoryStore_IgnoresMalformedToken(t *testing.T) {
	store := NewMemoryStore(testOpts)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "../../etc"})

	rec := httptest.NewRecorder()
	if err := store.Save(rec, req, State{SessionDate: "2024-01-03"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || len(cookies[0].Value) != 64 {
		t.Errorf("cookies = %+v, want a fresh token", cookies)
	}
}

// TestRedisStore runs the contract against a live redis when one is configured.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ATTENDANCE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ATTENDANCE_TEST_REDIS_ADDR not set")
	}
	client := NewRedisClient(addr)
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, testOpts)
	if err := store.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	testStoreContract(t, store)
}
