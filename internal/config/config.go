// Package config loads the command-line application settings from the
// environment, with sensible defaults for local runs.
package config

import (
	"os"
	"strconv"

	"gobart/domain/chain"
)

// DataConfig locates the input tables
type DataConfig struct {
	TrainPath     string
	HoldoutPath   string
	OutcomeColumn string
}

// SamplerConfig carries the sampler settings that are commonly overridden
// from the environment; everything else keeps the model defaults.
type SamplerConfig struct {
	NumTrees     int
	NumWarmStart int
	NumBurnin    int
	NumMCMC      int
	ThinInterval int
	Seed         uint64
	NumWorkers   int
}

// Config is the full application configuration
type Config struct {
	Data    DataConfig
	Sampler SamplerConfig
}

// Load builds the configuration from environment variables
func Load() *Config {
	d := chain.DefaultConfig()
	return &Config{
		Data: DataConfig{
			TrainPath:     getEnv("BART_TRAIN_PATH", ""),
			HoldoutPath:   getEnv("BART_HOLDOUT_PATH", ""),
			OutcomeColumn: getEnv("BART_OUTCOME_COLUMN", ""),
		},
		Sampler: SamplerConfig{
			NumTrees:     getEnvInt("BART_NUM_TREES", d.NumTrees),
			NumWarmStart: getEnvInt("BART_NUM_WARMSTART", d.NumWarmStart),
			NumBurnin:    getEnvInt("BART_NUM_BURNIN", d.NumBurnin),
			NumMCMC:      getEnvInt("BART_NUM_MCMC", d.NumMCMC),
			ThinInterval: getEnvInt("BART_THIN", d.ThinInterval),
			Seed:         getEnvUint64("BART_SEED", d.Seed),
			NumWorkers:   getEnvInt("BART_WORKERS", d.NumWorkers),
		},
	}
}

// ChainConfig overlays the loaded settings onto the model defaults
func (c *Config) ChainConfig() chain.Config {
	cfg := chain.DefaultConfig()
	cfg.NumTrees = c.Sampler.NumTrees
	cfg.NumWarmStart = c.Sampler.NumWarmStart
	cfg.NumBurnin = c.Sampler.NumBurnin
	cfg.NumMCMC = c.Sampler.NumMCMC
	cfg.ThinInterval = c.Sampler.ThinInterval
	cfg.Seed = c.Sampler.Seed
	cfg.NumWorkers = c.Sampler.NumWorkers
	cfg.ApplyDefaults()
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseUint(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
