package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLGroups      = 5 * time.Minute // group lists change rarely
	TTLGroupEmojis = 2 * time.Minute // group contents change on every add/remove
)

// Cache key prefixes
const (
	PrefixGroups      = "emoji:groups:"
	PrefixGroupEmojis = "emoji:group:"
)

// Service Redis cache for emoji group reads. A nil client is tolerated:
// reads miss, writes are dropped, the service keeps working without Redis.
type Service interface {
	GetGroups(ctx context.Context, userID string, dest interface{}) error
	SetGroups(ctx context.Context, userID string, value interface{}) error
	InvalidateGroups(ctx context.Context, userID string) error

	GetGroupEmojis(ctx context.Context, groupID string, dest interface{}) error
	SetGroupEmojis(ctx context.Context, groupID string, value interface{}) error
	InvalidateGroupEmojis(ctx context.Context, groupIDs ...string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis connection is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) groupsKey(userID string) string {
	return PrefixGroups + userID
}

func (c *redisCache) groupEmojisKey(groupID string) string {
	return PrefixGroupEmojis + groupID
}

func (c *redisCache) get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return redis.Nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetGroups loads a user's cached group list
func (c *redisCache) GetGroups(ctx context.Context, userID string, dest interface{}) error {
	return c.get(ctx, c.groupsKey(userID), dest)
}

// SetGroups caches a user's group list
func (c *redisCache) SetGroups(ctx context.Context, userID string, value interface{}) error {
	return c.set(ctx, c.groupsKey(userID), value, TTLGroups)
}

// InvalidateGroups drops a user's cached group list
func (c *redisCache) InvalidateGroups(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.groupsKey(userID)).Err()
}

// GetGroupEmojis loads a group's cached emoji list
func (c *redisCache) GetGroupEmojis(ctx context.Context, groupID string, dest interface{}) error {
	return c.get(ctx, c.groupEmojisKey(groupID), dest)
}

// SetGroupEmojis caches a group's emoji list
func (c *redisCache) SetGroupEmojis(ctx context.Context, groupID string, value interface{}) error {
	return c.set(ctx, c.groupEmojisKey(groupID), value, TTLGroupEmojis)
}

// InvalidateGroupEmojis drops cached emoji lists for the given groups
func (c *redisCache) InvalidateGroupEmojis(ctx context.Context, groupIDs ...string) error {
	if c.client == nil || len(groupIDs) == 0 {
		return nil
	}
	keys := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		keys[i] = c.groupEmojisKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}
