package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads and validates the configuration at path, applying defaults
// for unset tunables.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Upstream.PollIntervalSec == 0 {
		cfg.Upstream.PollIntervalSec = 60
	}
	if cfg.Upstream.TimeoutSec == 0 {
		cfg.Upstream.TimeoutSec = 30
	}
	if cfg.Matching.Strategy == "" {
		cfg.Matching.Strategy = "scanning"
	}
	if cfg.Matching.LateTripLimitSec == 0 {
		cfg.Matching.LateTripLimitSec = 3600
	}
	if cfg.Matching.LatencyLimitSec == 0 {
		cfg.Matching.LatencyLimitSec = 300
	}
}
