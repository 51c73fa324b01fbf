package config

import (
	"fmt"
	"time"

	"labboard/pkg/config"
)

type OutboxConfig struct {
	Interval   time.Duration `yaml:"interval"`
	BatchSize  int           `yaml:"batch_size" validate:"gte=0"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0"`
}

type WorkerConfig struct {
	DedupTTL time.Duration `yaml:"dedup_ttl"`
	RetryTTL time.Duration `yaml:"retry_ttl"`
}

// RosterConfig orders the member directory.
type RosterConfig struct {
	PositionOrder []string `yaml:"position_order"`
	NameOrder     []string `yaml:"name_order"`
	Language      string   `yaml:"language"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

type Config struct {
	Service string              `yaml:"service"`
	DB      config.DBConfig     `yaml:"db"`
	MQ      config.MQConfig     `yaml:"mq"`
	Redis   config.RedisConfig  `yaml:"redis"`
	JWT     config.JWTConfig    `yaml:"jwt"`
	Server  config.ServerConfig `yaml:"server"`
	Agent   config.AgentConfig  `yaml:"agent"`
	Otel    config.OtelConfig   `yaml:"otel"`
	Outbox  OutboxConfig        `yaml:"outbox"`
	Worker  WorkerConfig        `yaml:"worker"`
	Roster  RosterConfig        `yaml:"roster"`
	Log     LogConfig           `yaml:"log"`
}

// Load builds the configuration for env from configDir. Environment
// variables win over files.
func Load(env, configDir string) (*Config, error) {
	tree, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := config.Decode(tree, &cfg); err != nil {
		return nil, err
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideAgentFromEnv(&cfg.Agent)
	applyDefaults(&cfg)

	if err := config.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Service == "" {
		cfg.Service = "labboard"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Outbox.Interval <= 0 {
		cfg.Outbox.Interval = 2 * time.Second
	}
	if cfg.Outbox.BatchSize <= 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.MaxRetries <= 0 {
		cfg.Outbox.MaxRetries = 5
	}
	if cfg.Worker.DedupTTL <= 0 {
		cfg.Worker.DedupTTL = 24 * time.Hour
	}
	if cfg.Worker.RetryTTL <= 0 {
		cfg.Worker.RetryTTL = time.Hour
	}
	if len(cfg.Roster.PositionOrder) == 0 {
		cfg.Roster.PositionOrder = []string{"professor", "post_doc", "phd", "researcher", "ms"}
	}
	if cfg.Roster.Language == "" {
		cfg.Roster.Language = "ko"
	}
	if cfg.MQ.Exchange == "" {
		cfg.MQ.Exchange = "events"
	}
}
