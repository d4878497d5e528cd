package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ptocal/config"
	"ptocal/models"

	"github.com/go-redis/redis/v8"
)

const sessionKey = "calendarSession:current"

// SessionClient is the redis client used for session snapshot caching.
var SessionClient *redis.Client

// InitSessionCache initializes the redis client for session snapshot caching.
func InitSessionCache() {
	SessionClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SessionClient.Ping(ctx).Result(); err != nil {
		GetLogger().Sugar().Warnf("session cache unavailable, continuing without it: %v", err)
		SessionClient = nil
	}
}

// RedisSessionStore persists the latest credential snapshot in redis so a
// restarted process can resume without an immediate refresh exchange.
type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// SaveSession stores the session snapshot with a TTL.
func (s *RedisSessionStore) SaveSession(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.Client.Set(ctx, sessionKey, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession retrieves the stored session snapshot, if any.
func (s *RedisSessionStore) LoadSession(ctx context.Context) (*models.Session, error) {
	data, err := s.Client.Get(ctx, sessionKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes the stored session snapshot.
func (s *RedisSessionStore) DeleteSession(ctx context.Context) error {
	return s.Client.Del(ctx, sessionKey).Err()
}
