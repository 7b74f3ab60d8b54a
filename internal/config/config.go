package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonor84/nodeimages/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Session   SessionConfig
	Search    SearchConfig
	Favorites FavoritesConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig describes the OIDC identity provider (Auth0 tenant by default).
type AuthConfig struct {
	Domain          string
	ClientID        string
	ClientSecret    string
	CallbackURL     string
	LogoutReturnURL string
	// AllowInsecureToken skips ID token signature checks. Integration only.
	AllowInsecureToken bool
}

// Issuer returns the OIDC issuer URL derived from the configured domain.
func (a AuthConfig) Issuer() string {
	d := strings.TrimRight(a.Domain, "/")
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "http://") && !strings.HasPrefix(d, "https://") {
		d = "https://" + d
	}
	return d + "/"
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type SearchConfig struct {
	APIKey         string
	EngineID       string
	BaseURL        string
	Timeout        time.Duration
	IncludeDomains []string
	ExcludeDomains []string
}

// FavoritesConfig selects where the favorites document lives.
// Backend is one of file, minio, mongo, memory.
type FavoritesConfig struct {
	Backend   string
	Path      string
	ObjectKey string
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

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("SESSION_TTL_MINUTES", 1440)
	v.SetDefault("SESSION_COOKIE_NAME", "nodeimages_session")
	v.SetDefault("SEARCH_BASE_URL", "https://customsearch.googleapis.com/")
	v.SetDefault("SEARCH_TIMEOUT_SECONDS", 10)
	v.SetDefault("SEARCH_INCLUDE_DOMAINS", "unsplash.com")
	v.SetDefault("SEARCH_EXCLUDE_DOMAINS", "amazonaws.com")
	v.SetDefault("FAVORITES_BACKEND", "file")
	v.SetDefault("FAVORITES_PATH", "data/favorites.json")
	v.SetDefault("FAVORITES_OBJECT_KEY", "favorites.json")
	v.SetDefault("MONGODB_DATABASE", "nodeimages")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("MINIO_BUCKET", "nodeimages")

	baseURL := strings.TrimRight(v.GetString("BASE_URL"), "/")
	v.SetDefault("AUTH0_CALLBACK_URL", baseURL+"/callback")
	v.SetDefault("AUTH0_LOGOUT_RETURN_URL", baseURL+"/")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			BaseURL:      baseURL,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Domain:          v.GetString("AUTH0_DOMAIN"),
			ClientID:        v.GetString("AUTH0_CLIENT_ID"),
			ClientSecret:    v.GetString("AUTH0_CLIENT_SECRET"),
			CallbackURL:     v.GetString("AUTH0_CALLBACK_URL"),
			LogoutReturnURL: v.GetString("AUTH0_LOGOUT_RETURN_URL"),

			AllowInsecureToken: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("SESSION_SECRET"),
			TTL:        time.Duration(v.GetInt("SESSION_TTL_MINUTES")) * time.Minute,
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Search: SearchConfig{
			APIKey:         v.GetString("SEARCH_API_KEY"),
			EngineID:       v.GetString("SEARCH_ENGINE_ID"),
			BaseURL:        v.GetString("SEARCH_BASE_URL"),
			Timeout:        time.Duration(v.GetInt("SEARCH_TIMEOUT_SECONDS")) * time.Second,
			IncludeDomains: splitList(v.GetString("SEARCH_INCLUDE_DOMAINS")),
			ExcludeDomains: splitList(v.GetString("SEARCH_EXCLUDE_DOMAINS")),
		},
		Favorites: FavoritesConfig{
			Backend:   strings.ToLower(strings.TrimSpace(v.GetString("FAVORITES_BACKEND"))),
			Path:      v.GetString("FAVORITES_PATH"),
			ObjectKey: v.GetString("FAVORITES_OBJECT_KEY"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
	}

	if cfg.Session.Secret == "" {
		return nil, ErrMissingSessionSecret
	}
	if cfg.Auth.Domain == "" || cfg.Auth.ClientID == "" {
		logger.Warn("AUTH0_DOMAIN / AUTH0_CLIENT_ID not set; login will be unavailable")
	}
	if cfg.Search.APIKey == "" || cfg.Search.EngineID == "" {
		logger.Warn("SEARCH_API_KEY / SEARCH_ENGINE_ID not set; image search will fail upstream")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
