package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sson-dev/sson/handler"
)

// Config holds the CLI's durable defaults, loaded from a TOML file (by
// default ~/.config/sson/config.toml) via rootCmd's PersistentPreRunE, the
// same layering Harvx uses for its own config file. BufferSize overrides
// feedChunks' default chunk size; Matchers and Handlers key a group name
// to a "kind:definition" string, used by buildStrategyInputs to fill in
// any group a run's -m/-H flags didn't already supply.
type Config struct {
	BufferSize int               `toml:"buffer_size"`
	Matchers   map[string]string `toml:"matchers"`
	Handlers   map[string]string `toml:"handlers"`
}

// defaultConfig's BufferSize is left at its zero value, a sentinel
// PersistentPreRunE reads as "no override" — the CLI's own chunkSize
// default stands until a config file sets buffer_size explicitly.
func defaultConfig() Config {
	return Config{}
}

// loadConfig reads path if it exists, returning defaultConfig unmodified
// if the file is absent. A present-but-malformed file is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "sson", "config.toml")
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDotEnv loads a .env file for webhook/MCP credentials, silently
// doing nothing if none is present, matching the teacher's own
// init()-time godotenv.Load() which likewise never treats a missing
// file as an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// cliContext returns the base context every subcommand runs under,
// carrying the SSON_WEBHOOK_TOKEN environment variable (populated by
// loadDotEnv's .env, if any) for handler.Parse's "webhook" kind.
func cliContext() context.Context {
	return handler.WithWebhookToken(context.Background(), os.Getenv("SSON_WEBHOOK_TOKEN"))
}
