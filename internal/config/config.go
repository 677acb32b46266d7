package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Layer8    Layer8Config
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Uploads   UploadsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Layer8Config describes the relying-party registration against the Layer8
// identity provider. Provisioned out-of-band; exactly one registration is
// active per process.
type Layer8Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
	Timeout      time.Duration
}

// Enabled reports whether a provider registration was configured at all.
func (l Layer8Config) Enabled() bool {
	return l.BaseURL != "" || l.ClientID != "" || l.ClientSecret != ""
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type UploadsConfig struct {
	Dir       string
	MaxBytes  int64
	ImagesDir string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("LAYER8_TIMEOUT", 10)
	viper.SetDefault("LAYER8_SCOPES", "read:user")
	viper.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("UPLOADS_DIR", "uploads")
	viper.SetDefault("UPLOADS_MAX_BYTES", 5*1024*1024)
	viper.SetDefault("IMAGES_DIR", "images")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Layer8: Layer8Config{
			BaseURL:      strings.TrimRight(viper.GetString("LAYER8_URL"), "/"),
			ClientID:     viper.GetString("LAYER8_CLIENT_ID"),
			ClientSecret: os.Getenv("LAYER8_CLIENT_SECRET"),
			CallbackURL:  viper.GetString("LAYER8_CALLBACK_URL"),
			Scopes:       splitScopes(viper.GetString("LAYER8_SCOPES")),
			Timeout:      time.Duration(viper.GetInt("LAYER8_TIMEOUT")) * time.Second,
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(viper.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Uploads: UploadsConfig{
			Dir:       viper.GetString("UPLOADS_DIR"),
			MaxBytes:  viper.GetInt64("UPLOADS_MAX_BYTES"),
			ImagesDir: viper.GetString("IMAGES_DIR"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fails fast on misconfiguration instead of limping along with
// credentials baked into source or sessions that never expire.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if c.Layer8.Enabled() {
		missing := []string{}
		if c.Layer8.BaseURL == "" {
			missing = append(missing, "LAYER8_URL")
		}
		if c.Layer8.ClientID == "" {
			missing = append(missing, "LAYER8_CLIENT_ID")
		}
		if c.Layer8.ClientSecret == "" {
			missing = append(missing, "LAYER8_CLIENT_SECRET")
		}
		if c.Layer8.CallbackURL == "" {
			missing = append(missing, "LAYER8_CALLBACK_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("incomplete Layer8 registration, missing: %s", strings.Join(missing, ", "))
		}
	}
	return nil
}

func splitScopes(s string) []string {
	out := []string{}
	for _, sc := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if sc != "" {
			out = append(out, sc)
		}
	}
	return out
}
