package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cradoe/nationalid/internal/auth"
	"github.com/cradoe/nationalid/internal/cache"
	"github.com/cradoe/nationalid/internal/config"
	"github.com/cradoe/nationalid/internal/env"
	"github.com/cradoe/nationalid/internal/errHandler"
	"github.com/cradoe/nationalid/internal/file"
	"github.com/cradoe/nationalid/internal/helper"
	"github.com/cradoe/nationalid/internal/metrics"
	"github.com/cradoe/nationalid/internal/mpesa"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/smtp"
	"github.com/cradoe/nationalid/internal/stream"
	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items and when they need them
type Application struct {
	Config  config.Config
	DB      repository.Database
	Logger  *slog.Logger
	Mailer  *smtp.Mailer
	WG      sync.WaitGroup
	Kafka   *stream.KafkaStream
	Cache   *cache.Cache
	Storage file.Storage
	Metrics *metrics.Metrics
	Tokens  *auth.TokenIssuer
	Gateway *mpesa.Client

	errorHandler *errHandler.ErrorRepository
	helper       *helper.HelperRepository
}

// LoadConfig reads the .env file, if any, and the process environment.
func LoadConfig(logger *slog.Logger) config.Config {
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", "error", err)
	}

	var cfg config.Config

	// Default values are for development only.
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:5000")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 5000)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/national_id?sslmode=disable")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "dev-only-7qk2m9xw4ztr8bvn3hpl6cfy")
	cfg.Jwt.Expiry = env.GetDuration("JWT_EXPIRY", 24*time.Hour)

	// server errors won't be sent via email if NOTIFICATIONS_EMAIL is not set
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "National ID Service <no_reply@example.org>")

	cfg.Storage.Driver = env.GetString("STORAGE_DRIVER", file.DriverLocal)
	cfg.Storage.UploadDir = env.GetString("UPLOAD_DIR", "uploads")

	cfg.FileUploader.CloudName = env.GetString("CLOUDINARY_CLOUD_NAME", "")
	cfg.FileUploader.ApiKey = env.GetString("CLOUDINARY_API_KEY", "")
	cfg.FileUploader.ApiSecret = env.GetString("CLOUDINARY_API_SECRET", "")

	cfg.S3.Bucket = env.GetString("S3_BUCKET", "")
	cfg.S3.Region = env.GetString("AWS_REGION", "af-south-1")

	cfg.Mpesa.ConsumerKey = env.GetString("MPESA_CONSUMER_KEY", "")
	cfg.Mpesa.ConsumerSecret = env.GetString("MPESA_CONSUMER_SECRET", "")
	cfg.Mpesa.ShortCode = env.GetString("MPESA_SHORTCODE", "174379")
	cfg.Mpesa.Passkey = env.GetString("MPESA_PASSKEY", "")
	cfg.Mpesa.BaseURL = env.GetString("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke")
	cfg.Mpesa.CallbackURL = env.GetString("MPESA_CALLBACK_URL", "http://localhost:5000/api/mpesa/callback")
	cfg.Mpesa.Timeout = env.GetDuration("MPESA_TIMEOUT", 30*time.Second)

	cfg.Seed.AdminUsername = env.GetString("SEED_ADMIN_USERNAME", "admin")
	cfg.Seed.AdminPassword = env.GetString("SEED_ADMIN_PASSWORD", "")
	cfg.Seed.AdminFullName = env.GetString("SEED_ADMIN_FULL_NAME", "System Administrator")
	cfg.Seed.Constituencies = env.GetList("SEED_CONSTITUENCIES", nil)

	cfg.RedisServer = env.GetString("REDIS_ADDR", "localhost:6379")
	// event streaming and the notification worker are off when no broker is set
	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "")

	return cfg
}

func NewApplication(cfg config.Config, logger *slog.Logger) (*Application, error) {
	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Driver, err)
	}

	app := &Application{
		Config:  cfg,
		DB:      db,
		Logger:  logger,
		Mailer:  mailer,
		Storage: storage,
		Metrics: metrics.New(),
		Tokens:  auth.NewTokenIssuer(cfg.Jwt.SecretKey, cfg.BaseURL, cfg.Jwt.Expiry),
	}

	app.errorHandler = errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)
	app.helper = helper.New(cfg.BaseURL, &app.WG, app.errorHandler)

	app.Cache = cache.New(cfg.RedisServer, 0)
	if err := app.Cache.Ping(context.Background()); err != nil {
		// the gateway client falls back to fetching a token per request
		logger.Warn("redis unavailable, gateway tokens will not be cached", "error", err)
	}

	app.Gateway = mpesa.New(mpesa.Config{
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		BaseURL:        cfg.Mpesa.BaseURL,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Timeout:        cfg.Mpesa.Timeout,
	}, app.Cache)

	if cfg.KafkaServers != "" {
		app.Kafka, err = stream.New(cfg.KafkaServers, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event stream: %w", err)
		}
	}

	return app, nil
}

func newStorage(cfg config.Config) (file.Storage, error) {
	switch cfg.Storage.Driver {
	case file.DriverCloudinary:
		return file.NewCloudinaryStorage(cfg.FileUploader.CloudName, cfg.FileUploader.ApiKey, cfg.FileUploader.ApiSecret)
	case file.DriverS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return file.NewS3Storage(ctx, cfg.S3.Bucket, cfg.S3.Region)
	case file.DriverLocal, "":
		return file.NewLocalStorage(cfg.Storage.UploadDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// publisher is nil unless a broker is configured. Handlers skip publishing
// for a nil interface, so a nil *KafkaStream must not leak into it.
func (app *Application) publisher() stream.Publisher {
	if app.Kafka == nil {
		return nil
	}
	return app.Kafka
}

// Close releases the connections opened by NewApplication.
func (app *Application) Close() {
	if app.Kafka != nil {
		app.Kafka.Close()
	}
	if err := app.Cache.Close(); err != nil {
		app.Logger.Warn("closing redis", "error", err)
	}
	if err := app.DB.Close(); err != nil {
		app.Logger.Warn("closing database", "error", err)
	}
}
