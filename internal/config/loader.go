package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EVALRANK_CONFIG is set
//  3. env (prefix EVALRANK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("EVALRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: EVALRANK_ADDR, EVALRANK_STORE_PATH, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("EVALRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "evalrank_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.StorePath == "":
		return nil, fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	case cfg.RefreshSeconds <= 0:
		return nil, fmt.Errorf("%w: refresh_seconds must be positive", ErrInvalidConfig)
	case cfg.QueueSize <= 0:
		return nil, fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
