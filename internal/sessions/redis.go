package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"vocabdrill/internal/models"
)

const keyPrefix = "vocabdrill:practice:"

// RedisStore keeps practice sessions in Redis so that several server
// processes share them. Each save resets the key's expiry to the idle TTL.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	IdleTTL  time.Duration
}

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: opts.IdleTTL}, nil
}

func sessionKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Get returns the user's session, or nil if there is none
func (s *RedisStore) Get(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.PracticeSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// Save stores the session
func (s *RedisStore) Save(ctx context.Context, session *models.PracticeSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the user's session
func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
