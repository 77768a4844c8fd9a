// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/pmrtools/pmr/pkg/pmr"
)

var errJobsInvalid = errors.New("number of jobs must be at least one")

// Config holds settings read from the environment. Command line flags take precedence.
type Config struct {
	TempDir  string `env:"PMRTOOL_TEMP_DIR"`  // Parent of temporary extraction directories.
	Jobs     int    `env:"PMRTOOL_JOBS"`      // Files digested concurrently.
	CaseFold string `env:"PMRTOOL_CASE_FOLD"` // Case fold applied to paths (simple|full).
	Password string `env:"PMRTOOL_PASSWORD"`  // Password protecting archive entries.
	NoColor  string `env:"NO_COLOR"`          // Disables colored output when non-empty.
}

// DefaultConfig returns the configuration used when the environment sets nothing.
func DefaultConfig() Config {
	return Config{
		Jobs:     1,
		CaseFold: integrity.FoldSimple.String(),
		Password: pmr.DefaultPassword,
	}
}

// validate checks cfg for values that cannot be used.
func (cfg Config) validate() error {
	if cfg.Jobs < 1 {
		return fmt.Errorf("%w: %v", errJobsInvalid, cfg.Jobs)
	}

	if _, err := integrity.ParseCaseFold(cfg.CaseFold); err != nil {
		return err
	}

	return nil
}

// LoadConfig returns DefaultConfig, overridden by the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(o env.Options) (Config, error) {
	cfg := DefaultConfig()

	if err := env.ParseWithOptions(&cfg, o); err != nil {
		return Config{}, fmt.Errorf("while parsing environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("while parsing environment: %w", err)
	}

	return cfg, nil
}
