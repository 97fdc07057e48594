// Package config loads the orchestrator's environment-variable driven
// configuration, covering every key enumerated in spec §6 plus the
// orchestrator-internal tuning knobs (circuit breaker thresholds, cache
// TTLs, per-tier quota tables). Modeled on the teacher's core.Config /
// LoadFromEnv pattern.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the orchestrator's fully resolved runtime configuration.
type Config struct {
	// Secrets / external service endpoints (spec §6).
	SecretKey         string
	DatabaseURL       string
	RedisURL          string
	VertexAIProjectID string
	VertexAILocation  string
	GitHubModelsToken string
	OpenAIAPIKey      string
	StripeSecretKey   string

	// Auth/session knobs (glue for the out-of-scope HTTP/auth boundary,
	// still recognized here since spec §6 enumerates them).
	AccessTokenExpireMinutes int
	APIKeyExpireDays         int

	// Rate limiting (C12).
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Uploads (out-of-scope document parsing surface, config only).
	MaxFileSizeBytes int64
	UploadDir        string

	// CORS origins for the (external) HTTP boundary.
	BackendCORSOrigins []string

	// Locale/region defaults (C4).
	DefaultRegion string
	DefaultLocale string

	LogLevel  string
	LogFormat string

	Resilience ResilienceConfig
	Cache      CacheConfig
	Usage      UsageConfig
}

// ResilienceConfig holds C5's per-(provider,model) circuit breaker and
// retry parameters.
type ResilienceConfig struct {
	TimeoutMedium    time.Duration
	TimeoutHigh      time.Duration
	MaxRetries       int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	BreakerFailureThreshold int
	BreakerWindow           time.Duration
	BreakerCooldown         time.Duration
}

// CacheConfig holds C8's two-tier cache tuning.
type CacheConfig struct {
	L1MaxEntries int
	L1MaxBytes   int64
	DefaultTTL   time.Duration
	L2CapTTL     time.Duration
}

// UsageConfig holds C9's billing-period configuration.
type UsageConfig struct {
	BillingPeriod time.Duration // default: ~1 month (30 days) for the in-core ledger
}

// Default returns the production-ready defaults for every tunable,
// independent of environment.
func Default() *Config {
	return &Config{
		AccessTokenExpireMinutes: 30,
		APIKeyExpireDays:         365,
		RateLimitRequests:        1000,
		RateLimitWindow:          time.Hour,
		MaxFileSizeBytes:         50 * 1024 * 1024,
		UploadDir:                "/tmp/archbuilder-uploads",
		DefaultRegion:            "US",
		DefaultLocale:            "en-US",
		LogLevel:                 "INFO",
		LogFormat:                "text",
		Resilience: ResilienceConfig{
			TimeoutMedium:           30 * time.Second,
			TimeoutHigh:             120 * time.Second,
			MaxRetries:              3,
			RetryBaseDelay:          500 * time.Millisecond,
			RetryMaxDelay:           8 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerWindow:           60 * time.Second,
			BreakerCooldown:         30 * time.Second,
		},
		Cache: CacheConfig{
			L1MaxEntries: 1000,
			L1MaxBytes:   100 * 1024 * 1024,
			DefaultTTL:   time.Hour,
			L2CapTTL:     time.Hour,
		},
		Usage: UsageConfig{
			BillingPeriod: 30 * 24 * time.Hour,
		},
	}
}

// LoadFromEnv overlays values present in the process environment onto a
// Default() config.
func LoadFromEnv() (*Config, error) {
	c := Default()

	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SECRET_KEY", &c.SecretKey)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("VERTEX_AI_PROJECT_ID", &c.VertexAIProjectID)
	str("VERTEX_AI_LOCATION", &c.VertexAILocation)
	str("GITHUB_MODELS_TOKEN", &c.GitHubModelsToken)
	str("OPENAI_API_KEY", &c.OpenAIAPIKey)
	str("STRIPE_SECRET_KEY", &c.StripeSecretKey)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("UPLOAD_DIR", &c.UploadDir)
	str("DEFAULT_REGION", &c.DefaultRegion)
	str("DEFAULT_LOCALE", &c.DefaultLocale)

	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES: %w", err)
		}
		c.AccessTokenExpireMinutes = n
	}
	if v := os.Getenv("API_KEY_EXPIRE_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("API_KEY_EXPIRE_DAYS: %w", err)
		}
		c.APIKeyExpireDays = n
	}
	if v := os.Getenv("RATE_LIMIT_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
		}
		c.RateLimitRequests = n
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Accept a bare integer as seconds, matching common env-var
			// conventions for this key in the source project.
			secs, serr := strconv.Atoi(v)
			if serr != nil {
				return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
			}
			d = time.Duration(secs) * time.Second
		}
		c.RateLimitWindow = d
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
		}
		c.MaxFileSizeBytes = n
	}
	if v := os.Getenv("BACKEND_CORS_ORIGINS"); v != "" {
		c.BackendCORSOrigins = splitAndTrim(v)
	}

	return c, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
