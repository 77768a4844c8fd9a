// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package pmrtool implements the operations behind the pmrtool commands.
package pmrtool

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/pmrtools/pmr/pkg/pmr"
	"golang.org/x/term"
)

// appOpts contains configured options.
type appOpts struct {
	out   io.Writer
	color bool
	json  bool
	cfg   Config
	fold  integrity.CaseFold
}

// AppOpt are used to configure optional behavior.
type AppOpt func(*appOpts) error

// App holds state and configured options.
type App struct {
	opts appOpts
}

// OptAppOutput specifies that output should be written to w.
func OptAppOutput(w io.Writer) AppOpt {
	return func(o *appOpts) error {
		o.out = w
		return nil
	}
}

// OptAppColor specifies whether verdicts are highlighted with terminal colors.
func OptAppColor(b bool) AppOpt {
	return func(o *appOpts) error {
		o.color = b
		return nil
	}
}

// OptAppJSON specifies whether reports are written as JSON rather than text.
func OptAppJSON(b bool) AppOpt {
	return func(o *appOpts) error {
		o.json = b
		return nil
	}
}

// OptAppConfig specifies cfg as the configuration of the app.
func OptAppConfig(cfg Config) AppOpt {
	return func(o *appOpts) error {
		if err := cfg.validate(); err != nil {
			return err
		}

		f, err := integrity.ParseCaseFold(cfg.CaseFold)
		if err != nil {
			return err
		}

		o.cfg = cfg
		o.fold = f
		return nil
	}
}

// New creates a new App configured with opts.
//
// By default, output is written to os.Stdout as uncolored text, and DefaultConfig is used.
func New(opts ...AppOpt) (*App, error) {
	a := App{
		opts: appOpts{
			out:  os.Stdout,
			cfg:  DefaultConfig(),
			fold: integrity.FoldSimple,
		},
	}

	for _, opt := range opts {
		if err := opt(&a.opts); err != nil {
			return nil, err
		}
	}

	return &a, nil
}

// ColorEnabled reports whether colored output should be written to w. Color is used only when w
// is a terminal and cfg does not disable it.
func ColorEnabled(w io.Writer, cfg Config) bool {
	if cfg.NoColor != "" {
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// hashOpts returns the directory hashing options implied by the app configuration.
func (a *App) hashOpts() []integrity.HashOpt {
	return []integrity.HashOpt{
		integrity.OptHashCaseFold(a.opts.fold),
		integrity.OptHashConcurrency(a.opts.cfg.Jobs),
	}
}

// open opens the PMR archive at path using the configured password.
func (a *App) open(path string) (integrity.Archive, error) {
	ar, err := pmr.Open(path, pmr.OptOpenPassword(a.opts.cfg.Password))
	if err != nil {
		return nil, err
	}
	return ar, nil
}

// closeArchive closes ar, logging any error.
func closeArchive(ar io.Closer) {
	if err := ar.Close(); err != nil {
		log.Printf("Error closing archive: %v", err)
	}
}

const (
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// paint returns s wrapped in color, if colored output is enabled.
func (a *App) paint(color, s string) string {
	if !a.opts.color {
		return s
	}
	return fmt.Sprint(color, s, colorReset)
}

// readableSize returns the size in human readable format.
func readableSize(size uint64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}

	units := "KMGTPE"
	div, exp := uint64(1024), 0
	for n := size / 1024; n >= 1024; n /= 1024 {
		div *= 1024
		exp++
	}

	return fmt.Sprintf("%.0f %ciB", float64(size)/float64(div), units[exp])
}
