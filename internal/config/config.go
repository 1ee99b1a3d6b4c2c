// Package config read application settings from environment and .env file
package config

import (
	"fmt"
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// Config holds every setting the server needs at startup
type Config struct {
	Port int

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	UseConnString bool
	DBConnString  string

	SecretKey     string
	TokenLifetime time.Duration

	AllowOrigins   []string
	RateLimit      uint
	MaxUploadBytes int64

	GCSBucket string
	RedisURL  string

	SendgridAPIKey string
	MailFrom       string
	MailFromName   string

	AdminUsername string
	AdminPassword string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	AuthLogging bool
}

// New construct viper instance with default value of each key
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USERNAME", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_DATABASE", "")
	v.SetDefault("USE_CONNECTION_STR", false)
	v.SetDefault("DB_CONNECTION_STR", "")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("TOKEN_LIFETIME", time.Hour)
	v.SetDefault("ALLOW_ORIGIN", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5)
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("GCS_BUCKET_NAME", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@careerfindr.local")
	v.SetDefault("MAIL_FROM_NAME", "CareerFindr")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("GOOGLE_AUTH_CLIENT", "")
	v.SetDefault("GOOGLE_AUTH_SECRET", "")
	v.SetDefault("OAUTH_REDIRECT_URL", "")
	v.SetDefault("LOGGING", false)

	return v
}

// Load read configuration from environments
func Load() (*Config, error) {
	return FromViper(New())
}

// FromViper build Config from given viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetInt("PORT"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USERNAME"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_DATABASE"),
		UseConnString:      v.GetBool("USE_CONNECTION_STR"),
		DBConnString:       v.GetString("DB_CONNECTION_STR"),
		SecretKey:          v.GetString("SECRET_KEY"),
		TokenLifetime:      v.GetDuration("TOKEN_LIFETIME"),
		AllowOrigins:       splitList(v.GetString("ALLOW_ORIGIN")),
		GCSBucket:          v.GetString("GCS_BUCKET_NAME"),
		RedisURL:           v.GetString("REDIS_URL"),
		SendgridAPIKey:     v.GetString("SENDGRID_API_KEY"),
		MailFrom:           v.GetString("MAIL_FROM"),
		MailFromName:       v.GetString("MAIL_FROM_NAME"),
		AdminUsername:      v.GetString("ADMIN_USERNAME"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		GoogleClientID:     v.GetString("GOOGLE_AUTH_CLIENT"),
		GoogleClientSecret: v.GetString("GOOGLE_AUTH_SECRET"),
		OAuthRedirectURL:   v.GetString("OAUTH_REDIRECT_URL"),
		AuthLogging:        v.GetBool("LOGGING"),
	}

	rate := v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND")
	if rate <= 0 {
		rate = 5
	}
	cfg.RateLimit = uint(rate)

	cfg.MaxUploadBytes = v.GetInt64("MAX_UPLOAD_BYTES")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}

	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid PORT: %d", cfg.Port)
	}

	return cfg, nil
}

// DSN return connection string for postgres
func (c *Config) DSN() (string, error) {
	if c.UseConnString {
		if c.DBConnString == "" {
			return "", fmt.Errorf("DB_CONNECTION_STR is empty")
		}
		return c.DBConnString, nil
	}
	if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBPassword == "" || c.DBName == "" {
		return "", fmt.Errorf("database configuration is incomplete")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName), nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
