package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "attendance:session:"

// RedisStore keeps State in a Redis hash keyed by an opaque token.
type RedisStore struct {
	client *redis.Client
	opts   Options
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{client: client, opts: opts}
}

// Ping verifies redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Load reads the hash for the client's token.
func (s *RedisStore) Load(r *http.Request) (State, error) {
	token := tokenFrom(r, TokenCookieName)
	if token == "" {
		return State{}, nil
	}
	fields, err := s.client.HGetAll(r.Context(), redisKeyPrefix+token).Result()
	if err != nil {
		return State{}, fmt.Errorf("load session: %w", err)
	}
	return State{SessionDate: fields["session_date"], Flash: fields["flash"]}, nil
}

// Save writes the hash and refreshes its TTL in one transaction. A token with
// no live hash was not issued here (or has expired) and is replaced.
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, st State) error {
	token := tokenFrom(r, TokenCookieName)
	if token != "" {
		n, err := s.client.Exists(r.Context(), redisKeyPrefix+token).Result()
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if n == 0 {
			token = ""
		}
	}
	if token == "" {
		var err error
		if token, err = newToken(); err != nil {
			return err
		}
	}

	key := redisKeyPrefix + token
	_, err := s.client.TxPipelined(r.Context(), func(pipe redis.Pipeliner) error {
		pipe.HSet(r.Context(), key, "session_date", st.SessionDate, "flash", st.Flash)
		pipe.Expire(r.Context(), key, s.opts.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, s.opts.cookie(TokenCookieName, token))
	return nil
}
