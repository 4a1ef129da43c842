package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every constructor.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	POS      POSConfig
	LLM      LLMConfig
	Slack    SlackConfig
	Auth     AuthConfig
	Business BusinessConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type LogConfig struct {
	Level  string
	Format string
}

// POSConfig holds the point-of-sale API credentials. An empty token or account
// means live data is unavailable, not a startup failure.
type POSConfig struct {
	BaseURL        string
	AccountID      string
	ShopID         string
	Token          string
	Timeout        time.Duration
	RequestsPerSec float64
	PageSize       int
	MaxPages       int
}

func (p POSConfig) Enabled() bool {
	return p.Token != "" && p.AccountID != ""
}

// FetchBudget is the longest a fully paginated fetch can take: MaxPages paced
// requests plus one request timeout.
func (p POSConfig) FetchBudget() time.Duration {
	if p.RequestsPerSec <= 0 {
		return p.Timeout
	}
	pacing := time.Duration(float64(p.MaxPages) / p.RequestsPerSec * float64(time.Second))
	return pacing + p.Timeout
}

type LLMConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

type SlackConfig struct {
	BotToken      string
	SigningSecret string
}

func (s SlackConfig) Enabled() bool {
	return s.BotToken != ""
}

// AuthConfig guards the direct HTTP API. With no JWT secret the API routes stay unmounted.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string
}

type BusinessConfig struct {
	Name              string
	Timezone          string
	DeliveryPlatforms []PlatformRule
}

// PlatformRule maps lower-case customer name fragments to a delivery channel.
type PlatformRule struct {
	Channel  string
	Patterns []string
}

const defaultPlatforms = "ubereats|uber eats=UberEats,doordash=DoorDash,grubhub=GrubHub,cityhive=CityHive"

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	platforms, err := ParsePlatformRules(getEnvString("DELIVERY_PLATFORMS", defaultPlatforms))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Log: LogConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		POS: POSConfig{
			BaseURL:        strings.TrimRight(getEnvString("POS_BASE_URL", "https://api.lightspeedapp.com/API/V3"), "/"),
			AccountID:      os.Getenv("POS_ACCOUNT_ID"),
			ShopID:         os.Getenv("POS_SHOP_ID"),
			Token:          os.Getenv("POS_ACCESS_TOKEN"),
			Timeout:        getEnvDuration("POS_TIMEOUT", 20*time.Second),
			RequestsPerSec: getEnvFloat("POS_REQUESTS_PER_SEC", 1),
			PageSize:       getEnvInt("POS_PAGE_SIZE", 100),
			MaxPages:       getEnvInt("POS_MAX_PAGES", 50),
		},
		LLM: LLMConfig{
			APIKey:          os.Getenv("GEMINI_API_KEY"),
			Model:           getEnvString("GEMINI_MODEL", "gemini-2.0-flash-001"),
			Timeout:         getEnvDuration("LLM_TIMEOUT", 60*time.Second),
			MaxOutputTokens: getEnvInt("LLM_MAX_OUTPUT_TOKENS", 1024),
		},
		Slack: SlackConfig{
			BotToken:      os.Getenv("SLACK_BOT_TOKEN"),
			SigningSecret: os.Getenv("SLACK_SIGNING_SECRET"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			TokenTTL:          getEnvDuration("JWT_TTL", 24*time.Hour),
			AdminUsername:     getEnvString("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Business: BusinessConfig{
			Name:              getEnvString("BUSINESS_NAME", "the store"),
			Timezone:          getEnvString("BUSINESS_TIMEZONE", "America/New_York"),
			DeliveryPlatforms: platforms,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("unknown business timezone %q: %w", c.Business.Timezone, err)
	}
	if c.POS.Timeout <= 0 || c.LLM.Timeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}
	if c.POS.RequestsPerSec <= 0 {
		return fmt.Errorf("POS requests per second must be positive")
	}
	if c.POS.PageSize < 1 || c.POS.MaxPages < 1 {
		return fmt.Errorf("POS page size and max pages must be positive")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Log.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Log.Level, strings.Join(validLevels, ", "))
	}
	if c.Slack.BotToken != "" && c.Slack.SigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required when SLACK_BOT_TOKEN is set")
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, c.Log.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Log.Format, strings.Join(validFormats, ", "))
	}
	return nil
}

// Location returns the business timezone. validate has already proven it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ParsePlatformRules reads "a|b=Name,c=Other" into ordered rules.
func ParsePlatformRules(raw string) ([]PlatformRule, error) {
	var rules []PlatformRule
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		patterns, channel, ok := strings.Cut(entry, "=")
		channel = strings.TrimSpace(channel)
		if !ok || channel == "" {
			return nil, fmt.Errorf("delivery platform entry %q must look like pattern=Channel", entry)
		}

		rule := PlatformRule{Channel: channel}
		for _, p := range strings.Split(patterns, "|") {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				rule.Patterns = append(rule.Patterns, p)
			}
		}
		if len(rule.Patterns) == 0 {
			return nil, fmt.Errorf("delivery platform %q has no patterns", channel)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
