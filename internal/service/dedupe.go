package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDeduper remembers webhook event ids so redelivered events are
// handled once.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, "webhook:event:"+eventID, "1", d.ttl).Result()
}
