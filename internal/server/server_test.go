package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipi/internal/config"
	"pipi/internal/handlers"
	"pipi/internal/models"
	"pipi/internal/realtime"
)

type emptyImages struct{}

func (emptyImages) ListAll(context.Context) ([]models.Image, error) { return nil, nil }
func (emptyImages) ListLatest(context.Context, int) ([]models.Image, error) {
	return nil, nil
}
func (emptyImages) Page(context.Context, int) ([]models.Image, error) { return nil, nil }

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		HTTP:        config.HTTPConfig{Host: "127.0.0.1", Port: 0},
		Auth:        config.AuthConfig{Username: "admin", Password: "default", SessionSecret: "secret", SessionStore: "cookie"},
		LINE:        config.LINEConfig{ChannelSecret: "line-secret", ChannelAccessToken: "token"},
	}
}

func TestServerWiresRoutesAndMiddleware(t *testing.T) {
	cfg := testConfig()
	hs := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Dependencies{
		Images: emptyImages{},
		Hub:    realtime.NewHub(),
		DB:     okPinger{},
	})

	srv, err := NewHTTPServer(cfg, zerolog.Nop(), hs)
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	srv.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	resp = httptest.NewRecorder()
	srv.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/add", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = httptest.NewRecorder()
	srv.Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/callback", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSessionStoreFallsBackToCookie(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.SessionStore = "redis"

	store, err := newSessionStore(cfg)
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestRedisSessionTarget(t *testing.T) {
	target, err := redisSessionTarget(config.RedisConfig{Addr: "redis://user:pw@cache.internal:6380/4"})
	require.NoError(t, err)
	assert.Equal(t, sessionTarget{addr: "cache.internal:6380", username: "user", password: "pw", db: "4"}, target)

	target, err = redisSessionTarget(config.RedisConfig{Addr: "localhost:6379", Password: "secret", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, sessionTarget{addr: "localhost:6379", password: "secret", db: "2"}, target)

	_, err = redisSessionTarget(config.RedisConfig{Addr: "redis://cache.internal/notadb"})
	assert.Error(t, err)
}

func TestShutdownRunsRegisteredHooks(t *testing.T) {
	cfg := testConfig()
	hub := realtime.NewHub()
	hs := handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Dependencies{
		Images: emptyImages{},
		Hub:    hub,
		DB:     okPinger{},
	})
	srv, err := NewHTTPServer(cfg, zerolog.Nop(), hs)
	require.NoError(t, err)

	signals, _ := hub.Subscribe()
	srv.RegisterOnShutdown(hub.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case _, ok := <-signals:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed on shutdown")
	}
}
