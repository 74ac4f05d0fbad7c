package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladimiradmaev/pressure-helper/internal/config"
)

// ConversationTTL expires abandoned flows
const ConversationTTL = 24 * time.Hour

// RedisManager manages user conversations using Redis
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager connects to Redis and checks the connection
func NewRedisManager(cfg config.RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client), nil
}

// NewRedisManagerWithClient wraps an existing client
func NewRedisManagerWithClient(client *redis.Client) *RedisManager {
	return &RedisManager{client: client, ttl: ConversationTTL}
}

func conversationKey(userID int64) string {
	return fmt.Sprintf("user:%d:conversation", userID)
}

// Get returns the stored conversation, Idle when the key is missing or expired
func (m *RedisManager) Get(ctx context.Context, userID int64) (Conversation, error) {
	data, err := m.client.Get(ctx, conversationKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Idle(), nil
	}
	if err != nil {
		return Idle(), fmt.Errorf("failed to read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return Idle(), fmt.Errorf("failed to decode conversation: %w", err)
	}
	if conv.IsIdle() {
		return Idle(), nil
	}
	return conv, nil
}

// Set stores the conversation with a TTL. Storing Idle deletes the key.
func (m *RedisManager) Set(ctx context.Context, userID int64, conv Conversation) error {
	if conv.IsIdle() {
		return m.Clear(ctx, userID)
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := m.client.Set(ctx, conversationKey(userID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (m *RedisManager) Clear(ctx context.Context, userID int64) error {
	if err := m.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
