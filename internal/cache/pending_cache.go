package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paperbuilder/internal/confirm"

	"github.com/redis/go-redis/v9"
)

// PendingCache keeps actions awaiting confirmation in Redis.
// It implements confirm.PendingStore.
type PendingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPendingCache creates a pending action cache. Unconfirmed actions expire after ttl.
func NewPendingCache(client *redis.Client, ttl time.Duration) *PendingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PendingCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *PendingCache) key(owner string) string {
	return fmt.Sprintf("paper:confirm:%s", owner)
}

func (c *PendingCache) Put(ctx context.Context, owner string, action *confirm.Action) error {
	data, err := json.Marshal(action)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(owner), data, c.ttl).Err()
}

func (c *PendingCache) Get(ctx context.Context, owner string) (*confirm.Action, error) {
	data, err := c.client.Get(ctx, c.key(owner)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var action confirm.Action
	if err := json.Unmarshal([]byte(data), &action); err != nil {
		return nil, err
	}
	return &action, nil
}

func (c *PendingCache) Delete(ctx context.Context, owner string) error {
	return c.client.Del(ctx, c.key(owner)).Err()
}
