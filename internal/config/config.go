package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseDriver         string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	EventSubject           string
	JWTSecret              string
	SessionTTL             time.Duration
	CaptchaTTL             time.Duration
	DashboardCacheTTL      time.Duration
	StorageDriver          string
	StorageDir             string
	StoragePublicURL       string
	UploadMaxMB            int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SeedEnabled            bool
	LoginRateLimit         int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUPORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduPortal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "file::memory:?cache=shared")
	v.SetDefault("events.subject", "eduportal.ledger")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("captcha.ttl", "5m")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "./uploads")
	v.SetDefault("storage.public_url", "/files")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("cloudinary.folder", "eduportal/submissions")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("login.rate_limit", 10)

	sessionTTL, err := parseDuration(v, "session.ttl")
	if err != nil {
		return Config{}, err
	}
	captchaTTL, err := parseDuration(v, "captcha.ttl")
	if err != nil {
		return Config{}, err
	}
	dashboardTTL, err := parseDuration(v, "dashboard.cache_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:         strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		EventSubject:           v.GetString("events.subject"),
		JWTSecret:              v.GetString("jwt.secret"),
		SessionTTL:             sessionTTL,
		CaptchaTTL:             captchaTTL,
		DashboardCacheTTL:      dashboardTTL,
		StorageDriver:          strings.ToLower(v.GetString("storage.driver")),
		StorageDir:             v.GetString("storage.dir"),
		StoragePublicURL:       v.GetString("storage.public_url"),
		UploadMaxMB:            v.GetInt("upload.max_mb"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SeedEnabled:            v.GetBool("seed.enabled"),
		LoginRateLimit:         v.GetInt("login.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	switch cfg.StorageDriver {
	case "local", "cloudinary":
	default:
		return Config{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
