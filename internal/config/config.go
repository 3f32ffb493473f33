package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bluegenie-core/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
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
	TTL      time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	// DataDir holds conversation logs, the music library, and the intent log.
	DataDir         string        `yaml:"data_dir"`
	MaxLibrarySongs int           `yaml:"max_library_songs"`
	IdleResetAfter  time.Duration `yaml:"idle_reset_after"`
}

type LimitsConfig struct {
	FreeSongs             int `yaml:"free_songs"`
	PremiumSongsPerPeriod int `yaml:"premium_songs_per_period"`
	PeriodDays            int `yaml:"period_days"`
	PremiumPriceCents     int `yaml:"premium_price_cents"`
	OverageCostCents      int `yaml:"overage_cost_cents"`
}

// Policy converts the configured limits into the domain quota policy.
func (l LimitsConfig) Policy() model.QuotaPolicy {
	return model.QuotaPolicy{
		FreeSongs:             l.FreeSongs,
		PremiumSongsPerPeriod: l.PremiumSongsPerPeriod,
		PeriodDays:            l.PeriodDays,
		PremiumPriceCents:     l.PremiumPriceCents,
		OverageCostCents:      l.OverageCostCents,
	}
}

type GenerationConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	MaxPromptChars  int           `yaml:"max_prompt_chars"`
	TrackDurationS  int           `yaml:"track_duration_seconds"`
	ContextMessages int           `yaml:"context_messages"`
}

type WebConfig struct {
	Port          int    `yaml:"port"`
	WebhookSecret string `yaml:"webhook_secret"` // HS256 key shared with the payment processor
}

type SchedulerConfig struct {
	RenewalInterval time.Duration `yaml:"renewal_interval"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Storage    StorageConfig    `yaml:"storage"`
	Limits     LimitsConfig     `yaml:"limits"`
	Generation GenerationConfig `yaml:"generation"`
	Web        WebConfig        `yaml:"web"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.MaxLibrarySongs <= 0 {
		cfg.Storage.MaxLibrarySongs = 50
	}
	if cfg.Storage.IdleResetAfter <= 0 {
		cfg.Storage.IdleResetAfter = 24 * time.Hour
	}
	if cfg.Limits.FreeSongs <= 0 {
		cfg.Limits.FreeSongs = 5
	}
	if cfg.Limits.PremiumSongsPerPeriod <= 0 {
		cfg.Limits.PremiumSongsPerPeriod = 50
	}
	if cfg.Limits.PeriodDays <= 0 {
		cfg.Limits.PeriodDays = 30
	}
	if cfg.Limits.PremiumPriceCents <= 0 {
		cfg.Limits.PremiumPriceCents = 500
	}
	if cfg.Limits.OverageCostCents <= 0 {
		cfg.Limits.OverageCostCents = 6
	}
	if cfg.Generation.Timeout <= 0 {
		cfg.Generation.Timeout = 30 * time.Second
	}
	if cfg.Generation.MaxPromptChars <= 0 {
		cfg.Generation.MaxPromptChars = 600
	}
	if cfg.Generation.TrackDurationS <= 0 {
		cfg.Generation.TrackDurationS = 120
	}
	if cfg.Generation.ContextMessages <= 0 {
		cfg.Generation.ContextMessages = 15
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Scheduler.RenewalInterval <= 0 {
		cfg.Scheduler.RenewalInterval = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if !dev && cfg.Web.WebhookSecret == "" {
		return nil, errors.New("web.webhook_secret is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
