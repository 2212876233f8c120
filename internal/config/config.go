// Package config loads runtime settings from the environment.
// A .env file, when present, is loaded into the environment by main before
// this package reads it.
package config

import (
	"time"

	"github.com/edvall/ytscan/internal/transcribe"
)

// Environment variables.
const (
	EnvAPIKey    = "GROQ_API_KEY"
	EnvModel     = "WHISPER_MODEL"
	EnvOutputDir = "YTSCAN_OUTPUT_DIR"
)

// Defaults.
const (
	DefaultOutputDir     = "output"
	DefaultChunkDuration = 5 * time.Minute
)

// Config holds the settings for one invocation.
type Config struct {
	APIKey          string
	Model           string
	OutputDir       string
	MaxRequestBytes int64
	ChunkDuration   time.Duration
}

// Load reads configuration from the environment via getenv (typically
// os.Getenv; injectable for tests) and applies defaults.
func Load(getenv func(string) string) Config {
	cfg := Config{
		APIKey:          getenv(EnvAPIKey),
		Model:           getenv(EnvModel),
		OutputDir:       getenv(EnvOutputDir),
		MaxRequestBytes: transcribe.MaxRequestBytes,
		ChunkDuration:   DefaultChunkDuration,
	}
	if cfg.Model == "" {
		cfg.Model = transcribe.DefaultModel
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	return cfg
}
