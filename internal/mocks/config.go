package mocks

import (
	"time"

	"github.com/cradoe/nationalid/internal/config"
)

// NewConfig returns a configuration suitable for handler tests.
func NewConfig() *config.Config {
	var cfg config.Config

	cfg.BaseURL = "http://localhost"
	cfg.HttpPort = 8080
	cfg.Db.Dsn = "mock_dsn"
	cfg.Jwt.SecretKey = "test_secret"
	cfg.Jwt.Expiry = 24 * time.Hour
	cfg.Notifications.Email = ""
	cfg.Smtp.Host = "smtp.example.com"
	cfg.Smtp.Port = 587
	cfg.Smtp.From = "no-reply@example.com"
	cfg.Storage.Driver = "local"
	cfg.Mpesa.ShortCode = "174379"
	cfg.RedisServer = "localhost:6379"
	cfg.KafkaServers = "localhost:9092"

	return &cfg
}
