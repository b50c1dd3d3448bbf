package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	CooldownMinutes       int    `env:"COOLDOWN_MINUTES" envDefault:"5"`
	ActorCacheTTLSeconds  int    `env:"ACTOR_CACHE_TTL_SECONDS" envDefault:"60"`
	RedeemRateLimitPerMin int    `env:"REDEEM_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

func (c *Config) ActorCacheTTL() time.Duration {
	return time.Duration(c.ActorCacheTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.CooldownMinutes <= 0 {
		return fmt.Errorf("COOLDOWN_MINUTES must be positive, got %d", c.CooldownMinutes)
	}
	if c.ActorCacheTTLSeconds < 0 {
		return fmt.Errorf("ACTOR_CACHE_TTL_SECONDS must not be negative, got %d", c.ActorCacheTTLSeconds)
	}
	if c.RedeemRateLimitPerMin <= 0 {
		return fmt.Errorf("REDEEM_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RedeemRateLimitPerMin)
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
