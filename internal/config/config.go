package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	TelegramToken    string
	WebhookPublicURL string
	OpenAIKey        string
	Port             string
	DBPath           string
	LogLevel         logrus.Level
	FetchTimeout     time.Duration
	CacheTTL         time.Duration
	DefaultDataURL   string
}

// BotEnabled reports whether Telegram delivery is configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != "" && c.WebhookPublicURL != ""
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	s := os.Getenv(k)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		logrus.Fatalf("invalid env %s=%q", k, s)
	}
	return d
}

// Load reads the service configuration from the environment. The bot and
// the narrator stay off when their credentials are absent.
func Load() Config {
	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		logrus.Fatalf("invalid env LOG_LEVEL: %v", err)
	}
	cfg := Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookPublicURL: os.Getenv("WEBHOOK_PUBLIC_URL"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		Port:             envOr("PORT", "9095"),
		DBPath:           envOr("DB_PATH", "/app/data/statchart.db"),
		LogLevel:         level,
		FetchTimeout:     envDuration("FETCH_TIMEOUT", 15*time.Second),
		CacheTTL:         envDuration("CACHE_TTL", 60*time.Second),
		DefaultDataURL:   os.Getenv("DEFAULT_DATA_URL"),
	}
	if (cfg.TelegramToken == "") != (cfg.WebhookPublicURL == "") {
		logrus.Fatal("TELEGRAM_BOT_TOKEN and WEBHOOK_PUBLIC_URL must be set together")
	}
	return cfg
}
