// Package config loads application configuration from the environment
// and assembles the service graph from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
	repomemory "github.com/localvault/localvault/pkg/vault/repo/memory"
	repopg "github.com/localvault/localvault/pkg/vault/repo/postgres"
	fsstorage "github.com/localvault/localvault/pkg/vault/storage/fs"
	memorystorage "github.com/localvault/localvault/pkg/vault/storage/memory"
	s3storage "github.com/localvault/localvault/pkg/vault/storage/s3"
)

// Config is the full application configuration, read from the
// environment with cleanenv.
type Config struct {
	Server  ServerConfig
	DB      DbConfig
	Storage StorageConfig
	Redis   RedisConfig
	Auth    AuthConfig
}

type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
}

type DbConfig struct {
	Driver   string `env:"VAULT_DB_DRIVER" env-default:"memory"` // "memory" or "postgres"
	Host     string `env:"VAULT_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"VAULT_PG_PORT" env-default:"5432"`
	Name     string `env:"VAULT_PG_NAME" env-default:"localvault"`
	User     string `env:"VAULT_PG_USER" env-default:"vault"`
	Password string `env:"VAULT_PG_PASSWORD" env-default:"pwd"`
}

type StorageConfig struct {
	Backend string `env:"VAULT_STORAGE_BACKEND" env-default:"memory"` // "memory", "fs", "s3"
	FSBase  string `env:"VAULT_FS_BASE_DIR" env-default:"./data/storage"`

	S3Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
}

type RedisConfig struct {
	Addr     string `env:"VAULT_REDIS_ADDR" env-default:""`
	Password string `env:"VAULT_REDIS_PASSWORD" env-default:""`
	DB       int    `env:"VAULT_REDIS_DB" env-default:"0"`
}

type AuthConfig struct {
	SigningSecret     string        `env:"VAULT_JWT_SECRET" env-default:""`
	FingerprintSecret string        `env:"VAULT_FINGERPRINT_SECRET" env-default:""`
	AccessTTL         time.Duration `env:"VAULT_ACCESS_TTL" env-default:"720h"`
	RefreshTTL        time.Duration `env:"VAULT_REFRESH_TTL" env-default:"1440h"`

	// OTPMode selects how verification codes are checked: "static"
	// compares against DeploymentCode, "issued" generates and delivers
	// per-phone codes.
	OTPMode        string        `env:"VAULT_OTP_MODE" env-default:"static"`
	DeploymentCode string        `env:"DEPLOYMENT_CODE" env-default:""`
	OTPLength      int           `env:"VAULT_OTP_LENGTH" env-default:"6"`
	OTPTTL         time.Duration `env:"VAULT_OTP_TTL" env-default:"5m"`
	OTPMaxAttempts int           `env:"VAULT_OTP_MAX_ATTEMPTS" env-default:"5"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID" env-default:""`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN" env-default:""`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER" env-default:""`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Driver != "memory" && c.DB.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.DB.Driver)
	}
	switch c.Storage.Backend {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if c.Auth.SigningSecret == "" {
		return errors.New("VAULT_JWT_SECRET is required")
	}
	if c.Auth.OTPMode != "static" && c.Auth.OTPMode != "issued" {
		return fmt.Errorf("unsupported otp mode: %s", c.Auth.OTPMode)
	}
	if c.Auth.OTPMode == "static" && c.Auth.DeploymentCode == "" {
		return errors.New("DEPLOYMENT_CODE is required in static otp mode")
	}
	return nil
}

func (c DbConfig) DatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// App bundles the assembled services and the resources that back them.
type App struct {
	Content vault.Service
	Auth    *auth.Service

	Pool  *pgxpool.Pool // nil when the memory repository is used
	redis *redis.Client
}

// Close releases pooled resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// Build assembles the repository, blob store, verifier and services
// from the configuration.
func (c *Config) Build(ctx context.Context, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{}

	repo, err := c.buildRepository(ctx, app)
	if err != nil {
		return nil, err
	}

	store, err := c.buildBlobStore()
	if err != nil {
		app.Close()
		return nil, err
	}

	contentSvc, err := vault.New(
		vault.WithRepository(repo),
		vault.WithBlobStore(store),
		vault.WithLogger(logger),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build content service: %w", err)
	}

	tokens := auth.NewTokenIssuer(
		c.Auth.SigningSecret,
		c.Auth.FingerprintSecret,
		c.Auth.AccessTTL,
		c.Auth.RefreshTTL,
	)

	verifier, err := c.buildCodeVerifier(app, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	authSvc, err := auth.NewService(repo, verifier, tokens, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build auth service: %w", err)
	}

	app.Content = contentSvc
	app.Auth = authSvc
	return app, nil
}

func (c *Config) buildRepository(ctx context.Context, app *App) (vault.Repository, error) {
	switch c.DB.Driver {
	case "memory":
		return repomemory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DB.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		app.Pool = pool
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.DB.Driver)
	}
}

func (c *Config) buildBlobStore() (vault.BlobStore, error) {
	switch c.Storage.Backend {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.FSBase})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.Storage.S3Region,
			AccessKeyID:     c.Storage.S3AccessKeyID,
			SecretAccessKey: c.Storage.S3SecretAccessKey,
			Endpoint:        c.Storage.S3Endpoint,
			UsePathStyle:    c.Storage.S3UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
}

func (c *Config) buildCodeVerifier(app *App, logger *slog.Logger) (auth.CodeVerifier, error) {
	if c.Auth.OTPMode == "static" {
		return auth.StaticVerifier{Code: c.Auth.DeploymentCode}, nil
	}

	var store auth.CodeStore
	if c.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		app.redis = client
		store = auth.NewRedisCodeStore(client)
	} else {
		logger.Warn("no redis configured, holding verification codes in memory")
		store = auth.NewMemoryCodeStore()
	}

	var sender auth.Sender
	if c.Auth.TwilioAccountSID != "" {
		sender = auth.NewTwilioSender(
			c.Auth.TwilioAccountSID,
			c.Auth.TwilioAuthToken,
			c.Auth.TwilioFromNumber,
			logger,
		)
	} else {
		sender = auth.LogSender{Logger: logger}
	}

	return auth.NewIssuedVerifier(store, sender, auth.IssuedVerifierConfig{
		Length:      c.Auth.OTPLength,
		TTL:         c.Auth.OTPTTL,
		MaxAttempts: c.Auth.OTPMaxAttempts,
	}), nil
}
