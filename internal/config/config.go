package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	devBaseURL  = "http://localhost:3001"
	prodBaseURL = "https://api.gash.vn"
)

type Config struct {
	API      APIConfig
	Cache    CacheConfig
	Retry    RetryConfig
	Session  SessionConfig
	Realtime RealtimeConfig
	Mailer   MailerConfig
	Cart     CartConfig
	StateDir string
	LogLevel string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	Freshness time.Duration
}

type RetryConfig struct {
	Attempts  int
	BaseDelay time.Duration
}

type SessionConfig struct {
	TTL time.Duration
}

type RealtimeConfig struct {
	URL          string
	PollInterval time.Duration
}

type MailerConfig struct {
	Endpoint      string
	ServiceID     string
	OTPTemplate   string
	OrderTemplate string
}

type CartConfig struct {
	DebounceWindow time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	base := resolveBaseURL()

	cfg := &Config{
		API: APIConfig{
			BaseURL: base,
			Timeout: getEnvDuration("GASH_HTTP_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			Freshness: getEnvDuration("GASH_CACHE_FRESHNESS", 30*time.Second),
		},
		Retry: RetryConfig{
			Attempts:  getEnvInt("GASH_RETRY_ATTEMPTS", 3),
			BaseDelay: getEnvDuration("GASH_RETRY_BASE_DELAY", time.Second),
		},
		Session: SessionConfig{
			TTL: getEnvDuration("GASH_SESSION_TTL", 168*time.Hour),
		},
		Realtime: RealtimeConfig{
			URL:          getEnv("GASH_SOCKET_URL", wsURL(base)),
			PollInterval: getEnvDuration("GASH_POLL_INTERVAL", 30*time.Second),
		},
		Mailer: MailerConfig{
			Endpoint:      getEnv("GASH_MAIL_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),
			ServiceID:     getEnv("GASH_MAIL_SERVICE_ID", ""),
			OTPTemplate:   getEnv("GASH_MAIL_OTP_TEMPLATE", ""),
			OrderTemplate: getEnv("GASH_MAIL_ORDER_TEMPLATE", ""),
		},
		Cart: CartConfig{
			DebounceWindow: getEnvDuration("GASH_CART_DEBOUNCE", 500*time.Millisecond),
		},
		StateDir: getEnv("GASH_STATE_DIR", defaultStateDir()),
		LogLevel: getEnv("GASH_LOG_LEVEL", "info"),
	}

	return cfg, nil
}

var localHostPattern = regexp.MustCompile(`^(localhost|127\.0\.0\.1|.*\.local)$`)

// resolveBaseURL prefers the explicit env var; otherwise it falls back on a
// hostname heuristic so dev machines hit the local backend by default.
func resolveBaseURL() string {
	if v := os.Getenv("GASH_API_URL"); v != "" {
		return v
	}
	host, err := os.Hostname()
	if err == nil && localHostPattern.MatchString(host) {
		return devBaseURL
	}
	if os.Getenv("GASH_ENV") == "production" {
		return prodBaseURL
	}
	return devBaseURL
}

func wsURL(base string) string {
	switch {
	case len(base) > 8 && base[:8] == "https://":
		return "wss://" + base[8:] + "/socket"
	case len(base) > 7 && base[:7] == "http://":
		return "ws://" + base[7:] + "/socket"
	}
	return base + "/socket"
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "gash-storefront")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
