package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNoSession is returned when a session ID does not resolve to a live session.
var ErrNoSession = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionManager is the session surface handlers and middleware depend on.
// SessionStore is the Redis-backed implementation.
type SessionManager interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, sessionID string) (int64, error)
	Destroy(ctx context.Context, sessionID string) error
}

// SessionStore keeps server-side sessions in Redis. The cookie only carries an
// opaque session ID; the user ID lives behind it with a TTL.
type SessionStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{Redis: rdb, TTL: ttl}
}

// Create opens a new session for the user and returns its ID.
func (s *SessionStore) Create(ctx context.Context, userID int64) (string, error) {
	sessionID := uuid.NewString()
	key := sessionKeyPrefix + sessionID
	if err := s.Redis.Set(ctx, key, strconv.FormatInt(userID, 10), s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

// Resolve returns the user ID behind a session ID, refreshing the TTL so
// active sessions slide forward.
func (s *SessionStore) Resolve(ctx context.Context, sessionID string) (int64, error) {
	key := sessionKeyPrefix + sessionID
	val, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}

	_ = s.Redis.Expire(ctx, key, s.TTL).Err()
	return userID, nil
}

// Destroy removes a session. Destroying a session that no longer exists is
// not an error, so logout is always safe to call.
func (s *SessionStore) Destroy(ctx context.Context, sessionID string) error {
	return s.Redis.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
