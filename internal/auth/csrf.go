package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	// csrfKeyPrefix namespaces per-session anti-forgery tokens in Redis.
	csrfKeyPrefix = "dayreport:csrf:"
	// DefaultCSRFTokenTTL bounds how long an issued token stays usable.
	DefaultCSRFTokenTTL = 2 * time.Hour
)

// CSRFRedisClient is the slice of go-redis the token store needs.
type CSRFRedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CSRFStore issues and validates per-session anti-forgery tokens backed by
// Redis with a TTL.
type CSRFStore struct {
	Client CSRFRedisClient
	TTL    time.Duration
}

func NewCSRFStore(client CSRFRedisClient, ttl time.Duration) *CSRFStore {
	if ttl <= 0 {
		ttl = DefaultCSRFTokenTTL
	}
	return &CSRFStore{Client: client, TTL: ttl}
}

// Issue creates a fresh token for the session, replacing any previous one.
func (s *CSRFStore) Issue(ctx context.Context, sessionID string) (string, error) {
	token := uuid.NewString()
	key := csrfKeyPrefix + sessionID
	if err := s.Client.Set(ctx, key, token, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}
	return token, nil
}

// Validate checks a presented token against the session's stored one. A
// missing, expired or mismatched token is a plain false, not an error.
func (s *CSRFStore) Validate(ctx context.Context, sessionID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	stored, err := s.Client.Get(ctx, csrfKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read csrf token: %w", err)
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}
