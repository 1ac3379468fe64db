package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"attendance/internal/adapters/http/session"
)

type contextKey string

const stateContextKey contextKey = "session_state"

// LoadSession returns middleware that loads the client's flow state into the
// request context. Unreadable state is logged and treated as empty.
func LoadSession(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st, err := store.Load(r)
			if err != nil {
				level := slog.LevelWarn
				if errors.Is(err, session.ErrInvalidState) {
					level = slog.LevelDebug
				}
				slog.Log(r.Context(), level, "session_event", "event", "state_unreadable", "error", err)
				st = session.State{}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithState(r.Context(), st)))
		})
	}
}

// StateFromContext returns the flow state loaded by LoadSession.
func StateFromContext(ctx context.Context) session.State {
	st, _ := ctx.Value(stateContextKey).(session.State)
	return st
}

// ContextWithState returns a context carrying st.
func ContextWithState(ctx context.Context, st session.State) context.Context {
	return context.WithValue(ctx, stateContextKey, st)
}
