package cache

import (
	"context"
	"fmt"

	"paperbuilder/internal/persist"

	"github.com/redis/go-redis/v9"
)

// PaperCache stores the serialized paper in Redis under a fixed key.
// It implements persist.Storage.
type PaperCache struct {
	client *redis.Client
	key    string
}

// NewPaperCache creates a Redis-backed paper store for storageKey
func NewPaperCache(client *redis.Client, storageKey string) *PaperCache {
	return &PaperCache{
		client: client,
		key:    fmt.Sprintf("paper:%s", storageKey),
	}
}

func (c *PaperCache) Load(ctx context.Context) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, persist.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save writes the paper without expiry; it is the durable copy
func (c *PaperCache) Save(ctx context.Context, data []byte) error {
	return c.client.Set(ctx, c.key, data, 0).Err()
}
