package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipi/internal/config"
)

func TestNewRedisClientDisabled(t *testing.T) {
	client, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestClientOptions(t *testing.T) {
	opts, err := ClientOptions(config.RedisConfig{Addr: "localhost:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = ClientOptions(config.RedisConfig{Addr: "redis://:pw@cache.internal:6380/3"})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = ClientOptions(config.RedisConfig{Addr: "redis://cache.internal:6380/notadb"})
	assert.Error(t, err)
}
