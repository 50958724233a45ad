package config

import "time"

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	Jwt struct {
		SecretKey string
		Expiry    time.Duration
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Storage struct {
		// Driver is one of local, cloudinary or s3
		Driver    string
		UploadDir string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	S3 struct {
		Bucket string
		Region string
	}
	Mpesa struct {
		ConsumerKey    string
		ConsumerSecret string
		ShortCode      string
		Passkey        string
		BaseURL        string
		CallbackURL    string
		Timeout        time.Duration
	}
	Seed struct {
		AdminUsername  string
		AdminPassword  string
		AdminFullName  string
		Constituencies []string
	}
	RedisServer  string
	KafkaServers string
}
