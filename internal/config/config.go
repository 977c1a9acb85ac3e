// Package config holds runtime settings for the demo binary. Library
// users configure the store directly; this only maps environment
// variables onto defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"lazycache/internal/logs"
	"lazycache/internal/numbers"
	"lazycache/internal/store"
)

// Config is the demo binary's runtime configuration.
type Config struct {
	DefaultLifespan time.Duration // default lifespan for stored values
	LoaderLifespan  time.Duration // lifespan for values fetched read-through
	Serialized      bool
	LogLevel        logs.Level
	LogBufferSize   int
}

// Default returns the safe-by-default configuration.
func Default() Config {
	return Config{
		DefaultLifespan: store.FifteenMinutes,
		LoaderLifespan:  store.FiveMinutes,
		Serialized:      true,
		LogLevel:        logs.INFO,
		LogBufferSize:   1000,
	}
}

// FromEnv overlays LAZYCACHE_* environment variables on the defaults.
//
// Recognized variables:
//
//	LAZYCACHE_DEFAULT_LIFESPAN  Go duration string, e.g. "30m"
//	LAZYCACHE_LOADER_LIFESPAN   Go duration string
//	LAZYCACHE_SERIALIZED        bool
//	LAZYCACHE_LOG_LEVEL         DEBUG | INFO | WARN | ERROR
//	LAZYCACHE_LOG_BUFFER        positive integer
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("LAZYCACHE_DEFAULT_LIFESPAN"); v != "" {
		d, err := parseLifespan("LAZYCACHE_DEFAULT_LIFESPAN", v)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultLifespan = d
	}

	if v := os.Getenv("LAZYCACHE_LOADER_LIFESPAN"); v != "" {
		d, err := parseLifespan("LAZYCACHE_LOADER_LIFESPAN", v)
		if err != nil {
			return Config{}, err
		}
		cfg.LoaderLifespan = d
	}

	if v := os.Getenv("LAZYCACHE_SERIALIZED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("LAZYCACHE_SERIALIZED: %w", err)
		}
		cfg.Serialized = b
	}

	if v := os.Getenv("LAZYCACHE_LOG_LEVEL"); v != "" {
		level, err := logs.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("LAZYCACHE_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("LAZYCACHE_LOG_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("LAZYCACHE_LOG_BUFFER: must be a positive integer, got %q", v)
		}
		cfg.LogBufferSize = n
	}

	return cfg, nil
}

func parseLifespan(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if _, err := numbers.NonNegative(d); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
