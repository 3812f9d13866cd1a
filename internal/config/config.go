package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/ratelimit"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Chat      ChatConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	Debug        bool
	CORSOrigins  []string
	PlanCacheTTL time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type ChatConfig struct {
	WebhookURL   string
	WebhookToken string
	Timeout      time.Duration
}

type CheckoutConfig struct {
	APIURL     string
	APIKey     string
	SuccessURL string
	CancelURL  string
	Timeout    time.Duration
}

type RateLimitConfig struct {
	Backend          string // "memory" or "redis"
	SweepInterval    time.Duration
	Window           time.Duration
	ChatRequests     int
	CheckoutRequests int
}

// ChatPolicy is ratelimit.ChatPolicy with any env overrides applied
func (r RateLimitConfig) ChatPolicy() ratelimit.Policy {
	return ratelimit.Policy{MaxRequests: r.ChatRequests, Window: r.Window}
}

func (r RateLimitConfig) CheckoutPolicy() ratelimit.Policy {
	return ratelimit.Policy{MaxRequests: r.CheckoutRequests, Window: r.Window}
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			Debug:        getEnvBool("LOG_DEBUG", false),
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			PlanCacheTTL: getEnvDuration("PLAN_CACHE_TTL", 5*time.Minute),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			SlowQuery:       getEnvDuration("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Chat: ChatConfig{
			WebhookURL:   getEnv("CHAT_WEBHOOK_URL", ""),
			WebhookToken: getEnv("CHAT_WEBHOOK_TOKEN", ""),
			Timeout:      getEnvDuration("CHAT_WEBHOOK_TIMEOUT", 30*time.Second),
		},
		Checkout: CheckoutConfig{
			APIURL:     getEnv("CHECKOUT_API_URL", ""),
			APIKey:     getEnv("CHECKOUT_API_KEY", ""),
			SuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/dashboard?checkout=success"),
			CancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/plans?checkout=cancel"),
			Timeout:    getEnvDuration("CHECKOUT_API_TIMEOUT", 15*time.Second),
		},
		RateLimit: RateLimitConfig{
			Backend:          getEnv("RATE_LIMIT_BACKEND", ratelimit.BackendMemory),
			SweepInterval:    getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", ratelimit.DefaultSweepInterval),
			Window:           getEnvDuration("RATE_LIMIT_WINDOW", ratelimit.ChatPolicy.Window),
			ChatRequests:     getEnvInt("CHAT_RATE_LIMIT", ratelimit.ChatPolicy.MaxRequests),
			CheckoutRequests: getEnvInt("CHECKOUT_RATE_LIMIT", ratelimit.CheckoutPolicy.MaxRequests),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimit.ChatRequests <= 0 || c.RateLimit.CheckoutRequests <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.Backend == ratelimit.BackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("RATE_LIMIT_BACKEND=redis requires REDIS_URL")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
