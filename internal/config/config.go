package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var ErrMissingCredential = errors.New("missing required credential")

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Enabled reports whether a redis address was configured. Redis is optional:
// without it sessions live in cookies and notifications stay in-process.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type MediaConfig struct {
	Driver     string
	Timeout    time.Duration
	Cloudinary CloudinaryConfig
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string
}

type LINEConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
	Timeout            time.Duration
	DedupeTTL          time.Duration
}

type AuthConfig struct {
	Username      string
	Password      string
	PasswordHash  string
	SessionSecret string
	SessionStore  string
}

type IntakeConfig struct {
	TempDir       string
	TempMaxAge    time.Duration
	SweepSchedule string
}

type AppConfig struct {
	Environment      string
	LogLevel         string
	PublicBaseURL    string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Media            MediaConfig
	Storage          StorageConfig
	LINE             LINEConfig
	Auth             AuthConfig
	Intake           IntakeConfig
	AllowCORSOrigins []string
}

// legacyEnv maps the unprefixed variables of older deployments onto config keys.
var legacyEnv = map[string]string{
	"media.cloudinary.cloudname": "CLOUDINARY_CLOUD_NAME",
	"media.cloudinary.apikey":    "CLOUDINARY_API_KEY",
	"media.cloudinary.apisecret": "CLOUDINARY_API_SECRET",
	"postgres.dsn":               "DATABASE_URL",
	"line.channelsecret":         "LINE_CHANNEL_SECRET",
	"line.channelaccesstoken":    "LINE_CHANNEL_ACCESS_TOKEN",
	"auth.username":              "USERNAME",
	"auth.password":              "PASSWORD",
	"auth.sessionsecret":         "SECRET_KEY",
	"redis.addr":                 "REDIS_ADDR",
	"http.port":                  "PORT",
}

func Load() (*AppConfig, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PIPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "PIPI_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *AppConfig) Validate() error {
	if c.LINE.ChannelSecret == "" {
		return fmt.Errorf("%w: specify LINE_CHANNEL_SECRET as environment variable", ErrMissingCredential)
	}
	if c.LINE.ChannelAccessToken == "" {
		return fmt.Errorf("%w: specify LINE_CHANNEL_ACCESS_TOKEN as environment variable", ErrMissingCredential)
	}
	switch c.Media.Driver {
	case "cloudinary", "objectstore":
	default:
		return fmt.Errorf("unknown media driver %q", c.Media.Driver)
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("%w: specify SECRET_KEY as environment variable", ErrMissingCredential)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("loglevel", "")
	v.SetDefault("publicbaseurl", "http://localhost:8080")
	v.SetDefault("allowcorsorigins", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "0s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "pipi:images")

	v.SetDefault("media.driver", "cloudinary")
	v.SetDefault("media.timeout", "30s")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.bucket", "pipi-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("line.timeout", "30s")
	v.SetDefault("line.dedupettl", "24h")

	v.SetDefault("auth.username", "")
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.passwordhash", "")
	v.SetDefault("auth.sessionstore", "cookie")

	v.SetDefault("intake.tempdir", "static/tmp")
	v.SetDefault("intake.tempmaxage", "1h")
	v.SetDefault("intake.sweepschedule", "0 */15 * * * *")
}
