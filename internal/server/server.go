package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pipi/internal/cache"
	"pipi/internal/config"
	"pipi/internal/handlers"
	"pipi/internal/middleware"
	"pipi/internal/web"
)

type HTTPServer struct {
	engine *gin.Engine
	server *http.Server
	log    zerolog.Logger
	cfg    *config.AppConfig
}

func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet) (*HTTPServer, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	store, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(log),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(cfg.AllowCORSOrigins),
		sessions.Sessions(middleware.SessionName, store),
		middleware.SessionStateLoader(),
	)

	handlerSet.Register(engine.Group(""))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &HTTPServer{
		engine: engine,
		server: srv,
		log:    log,
		cfg:    cfg,
	}, nil
}

// newSessionStore keeps sessions in signed cookies unless auth.sessionstore
// is "redis" and a redis address is configured.
func newSessionStore(cfg *config.AppConfig) (sessions.Store, error) {
	secret := []byte(cfg.Auth.SessionSecret)

	var store sessions.Store
	if cfg.Auth.SessionStore == "redis" && cfg.Redis.Enabled() {
		target, err := redisSessionTarget(cfg.Redis)
		if err != nil {
			return nil, err
		}
		rs, err := redisstore.NewStoreWithDB(10, "tcp", target.addr, target.username, target.password, target.db, secret)
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore(secret)
	}

	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

type sessionTarget struct {
	addr     string
	username string
	password string
	db       string
}

// redisSessionTarget accepts the same host:port or redis:// forms as the cache.
func redisSessionTarget(cfg config.RedisConfig) (sessionTarget, error) {
	opts, err := cache.ClientOptions(cfg)
	if err != nil {
		return sessionTarget{}, fmt.Errorf("redis session store: %w", err)
	}
	return sessionTarget{
		addr:     opts.Addr,
		username: opts.Username,
		password: opts.Password,
		db:       strconv.Itoa(opts.DB),
	}, nil
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// RegisterOnShutdown runs f when Shutdown begins, for long-lived handlers
// that Shutdown would otherwise wait on.
func (s *HTTPServer) RegisterOnShutdown(f func()) {
	s.server.RegisterOnShutdown(f)
}

func (s *HTTPServer) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Msg("http server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.server.Shutdown(ctx)
}
