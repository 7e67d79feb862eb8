package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pipi/internal/config"
	"pipi/internal/media"
	"pipi/internal/middleware"
	"pipi/internal/models"
	"pipi/internal/realtime"
	"pipi/internal/security"
	"pipi/internal/service"
)

// ImageReader is the read side of the image repository.
type ImageReader interface {
	ListAll(ctx context.Context) ([]models.Image, error)
	ListLatest(ctx context.Context, limit int) ([]models.Image, error)
	Page(ctx context.Context, page int) ([]models.Image, error)
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Images     ImageReader
	Intake     *service.IntakeService
	Dispatcher *service.Dispatcher
	Media      media.Store
	Hub        *realtime.Hub
	DB         Pinger
	Cache      *redis.Client
}

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	images     ImageReader
	intake     *service.IntakeService
	dispatcher *service.Dispatcher
	media      media.Store
	hub        *realtime.Hub
	creds      security.Credentials
	db         Pinger
	cache      *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		images:     deps.Images,
		intake:     deps.Intake,
		dispatcher: deps.Dispatcher,
		media:      deps.Media,
		hub:        deps.Hub,
		creds: security.Credentials{
			Username:     cfg.Auth.Username,
			Password:     cfg.Auth.Password,
			PasswordHash: cfg.Auth.PasswordHash,
		},
		db:    deps.DB,
		cache: deps.Cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/callback", h.Callback)

	router.GET("/login", h.LoginForm)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)

	router.GET("/sh", h.ShowImages)
	router.GET("/list", h.ListPage)
	router.GET("/_list", h.LatestImages)
	router.GET("/images", h.AllImages)
	router.GET("/page", h.Page)
	router.GET("/page/:page", h.Page)
	router.GET("/events", h.Events)

	router.POST("/add", middleware.RequireLogin(), h.AddImage)
}
