package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipi/internal/config"
)

func recordSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := sleep
	sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })
	return &waits
}

func TestRetryConnectGivesUpWithoutFinalWait(t *testing.T) {
	waits := recordSleeps(t)
	refused := errors.New("connection refused")

	calls := 0
	_, err := retryConnect(context.Background(), zerolog.Nop(), "db", func() (*pgxpool.Pool, error) {
		calls++
		return nil, refused
	})

	require.ErrorIs(t, err, refused)
	assert.Equal(t, connectAttempts, calls)
	assert.Equal(t, []time.Duration{
		connectBackoff, 2 * connectBackoff, 3 * connectBackoff, 4 * connectBackoff,
	}, *waits)
}

func TestRetryConnectStopsOnSuccess(t *testing.T) {
	waits := recordSleeps(t)

	calls := 0
	pool, err := retryConnect(context.Background(), zerolog.Nop(), "db", func() (*pgxpool.Pool, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("not yet")
		}
		return &pgxpool.Pool{}, nil
	})

	require.NoError(t, err)
	assert.NotNil(t, pool)
	assert.Equal(t, 3, calls)
	assert.Len(t, *waits, 2)
}

func TestNewPostgresPoolRequiresDSN(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), config.PostgresConfig{}, zerolog.Nop())
	assert.Error(t, err)
}
