package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBridge shares notifications between replicas through a redis pub/sub
// channel. Every replica runs Start so its local hub sees all publishes.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, log zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		hub:     hub,
		log:     log,
	}
}

// Notify publishes to redis, falling back to the local hub so at least this
// replica's browsers hear about the change.
func (b *RedisBridge) Notify(ctx context.Context) {
	if err := b.client.Publish(ctx, b.channel, EventUpdated).Err(); err != nil {
		b.log.Warn().Err(err).Str("channel", b.channel).Msg("publish notification failed")
		b.hub.Broadcast(EventUpdated)
	}
}

// Start forwards messages from redis into the hub until ctx is done.
func (b *RedisBridge) Start(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.log.Debug().Str("channel", msg.Channel).Str("payload", msg.Payload).Msg("notification received")
			b.hub.Broadcast(msg.Payload)
		}
	}
}
