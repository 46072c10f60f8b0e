package generateblog

import (
	"fmt"
	"time"

	"blog-generator/internal/common/config"
)

type Config struct {
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ClaimTTL      time.Duration `mapstructure:"claim_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxJobsActive: 5,
		Timeout:       config.GetDuration(config.DefaultReadTimeout + 60000),
		ClaimTTL:      time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.ClaimTTL < c.Timeout {
		return fmt.Errorf("claim_ttl (%s) must not be shorter than the job timeout (%s)", c.ClaimTTL, c.Timeout)
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if workerCfg, exists := appConfig.Workers[TaskType]; exists {
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
	}
	if appConfig.Redis.TTL > 0 {
		cfg.ClaimTTL = time.Duration(appConfig.Redis.TTL) * time.Second
	}

	return cfg
}
