package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // dialogue state TTL
}

type AIConfig struct {
	OpenAIKey     string        `yaml:"openai_key"`
	GeminiKey     string        `yaml:"gemini_key"`
	CompatKey     string        `yaml:"compat_key"`      // any OpenAI-compatible gateway
	CompatBaseURL string        `yaml:"compat_base_url"` // e.g. https://api.deepseek.com/v1
	Model         string        `yaml:"model"`
	Temperature   float64       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	ConcurrentMax int           `yaml:"concurrent_max"` // max concurrent AI calls
}

type WBConfig struct {
	BaseURL        string        `yaml:"base_url"`
	ReviewsPerPage int           `yaml:"reviews_per_page"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	ConcurrentMax  int           `yaml:"concurrent_max"` // fleet-wide bound on outbound WB calls
	Timeout        time.Duration `yaml:"timeout"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"` // default 429 wait when Retry-After is absent
}

type WorkerConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
	BatchSize     int           `yaml:"batch_size"`
}

type OpsConfig struct {
	Port int `yaml:"port"` // /health and /metrics
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	WB       WBConfig       `yaml:"wb"`
	Worker   WorkerConfig   `yaml:"worker"`
	Ops      OpsConfig      `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file, then lets the environment override
// it. All secrets are expected from the environment in deployments; the file
// carries the non-secret tunables. Missing required values are an error and
// the caller is expected to treat that as fatal.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token (TELEGRAM_TOKEN) is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url (DATABASE_URL) is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url (REDIS_URL) is required")
	}
	if cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" && cfg.AI.CompatKey == "" {
		return nil, errors.New("an AI provider key is required (OPENAI_API_KEY, GEMINI_API_KEY or AI_COMPAT_KEY)")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	envStr(&cfg.Bot.Token, "TELEGRAM_TOKEN")
	envStr(&cfg.Database.URL, "DATABASE_URL")
	envStr(&cfg.Redis.URL, "REDIS_URL")
	envStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	envStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	envStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	envStr(&cfg.AI.CompatKey, "AI_COMPAT_KEY")
	envStr(&cfg.AI.CompatBaseURL, "AI_COMPAT_BASE_URL")
	envStr(&cfg.AI.Model, "AI_MODEL")
	envStr(&cfg.WB.BaseURL, "WB_API_URL")

	envInt(&cfg.WB.ReviewsPerPage, "REVIEWS_PER_PAGE")
	envInt(&cfg.WB.MaxRetries, "MAX_RETRIES")
	envInt(&cfg.WB.ConcurrentMax, "MAX_CONCURRENT_REQUESTS")
	envInt(&cfg.Worker.BatchSize, "BATCH_SIZE")
	envInt(&cfg.Ops.Port, "OPS_PORT")

	envSeconds(&cfg.WB.RetryDelay, "RETRY_DELAY_SECONDS")
	envSeconds(&cfg.WB.Timeout, "WB_TIMEOUT_SECONDS")
	envSeconds(&cfg.WB.RateLimitDelay, "RATE_LIMIT_DELAY_SECONDS")
	envSeconds(&cfg.AI.Timeout, "OPENAI_TIMEOUT_SECONDS")
	envMinutes(&cfg.Worker.CheckInterval, "CHECK_INTERVAL_MINUTES")
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-3.5-turbo"
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.ConcurrentMax <= 0 {
		cfg.AI.ConcurrentMax = 16
	}
	if cfg.WB.BaseURL == "" {
		cfg.WB.BaseURL = "https://feedbacks-api.wildberries.ru/api/v1"
	}
	if cfg.WB.ReviewsPerPage <= 0 {
		cfg.WB.ReviewsPerPage = 50
	}
	if cfg.WB.MaxRetries <= 0 {
		cfg.WB.MaxRetries = 3
	}
	if cfg.WB.RetryDelay <= 0 {
		cfg.WB.RetryDelay = 500 * time.Millisecond
	}
	if cfg.WB.ConcurrentMax <= 0 {
		cfg.WB.ConcurrentMax = 10
	}
	if cfg.WB.Timeout <= 0 {
		cfg.WB.Timeout = 5 * time.Second
	}
	if cfg.WB.RateLimitDelay <= 0 {
		cfg.WB.RateLimitDelay = time.Second
	}
	if cfg.Worker.CheckInterval <= 0 {
		cfg.Worker.CheckInterval = 5 * time.Minute
	}
	if cfg.Worker.BatchSize <= 0 {
		cfg.Worker.BatchSize = 50
	}
	if cfg.Ops.Port <= 0 {
		cfg.Ops.Port = 9090
	}
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = time.Duration(f * float64(time.Second))
		}
	}
}

func envMinutes(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Minute
		}
	}
}
