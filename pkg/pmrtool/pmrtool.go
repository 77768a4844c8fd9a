// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package pmrtool adds pmrtool commands to a parent cobra.Command.
package pmrtool

import (
	"errors"

	"github.com/pmrtools/pmr/internal/app/pmrtool"
	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Exit statuses returned by ExitCode.
const (
	ExitVerified    = 0 // Command succeeded; for verify, contents match the signature.
	ExitUsage       = 1 // Arguments invalid, or an error not attributable to a stage.
	ExitArchiveRead = 2 // Archive unreadable or signature missing.
	ExitExtraction  = 3 // Archive could not be extracted.
	ExitHash        = 4 // Directory could not be hashed.
	ExitCipher      = 5 // Signature could not be encrypted or decrypted.
	ExitTampered    = 6 // Contents do not match the signature.
)

// ExitCode returns the process exit status corresponding to err, as returned by the Execute
// method of a command with pmrtool commands added.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitVerified
	case errors.Is(err, pmrtool.ErrTampered):
		return ExitTampered
	case errors.Is(err, integrity.ErrArchiveRead):
		return ExitArchiveRead
	case errors.Is(err, integrity.ErrExtraction):
		return ExitExtraction
	case errors.Is(err, integrity.ErrHashComputation):
		return ExitHash
	case errors.Is(err, integrity.ErrCipher):
		return ExitCipher
	}
	return ExitUsage
}

// command contains options and command state.
type command struct {
	opts commandOpts
	app  *pmrtool.App
}

// addHashFlags declares the command line flags that control directory hashing.
func addHashFlags(fs *pflag.FlagSet) {
	fs.IntP("jobs", "j", 1, "number of files to digest concurrently (env PMRTOOL_JOBS)")
	fs.String("fold", "simple", "case fold applied to paths, simple or full (env PMRTOOL_CASE_FOLD)")
}

// addJSONFlag declares the command line flag that selects JSON output.
func addJSONFlag(fs *pflag.FlagSet) {
	fs.Bool("json", false, "write a JSON report")
}

// initApp initializes the pmrtool app, from the environment and the flags of cmd.
func (c *command) initApp(cmd *cobra.Command, _ []string) error {
	cfg, err := pmrtool.LoadConfig()
	if err != nil {
		return err
	}

	fs := cmd.Flags()

	if fs.Changed("jobs") {
		if cfg.Jobs, err = fs.GetInt("jobs"); err != nil {
			return err
		}
	}

	if fs.Changed("fold") {
		if cfg.CaseFold, err = fs.GetString("fold"); err != nil {
			return err
		}
	}

	var asJSON bool
	if fs.Lookup("json") != nil {
		if asJSON, err = fs.GetBool("json"); err != nil {
			return err
		}
	}

	app, err := pmrtool.New(
		pmrtool.OptAppOutput(cmd.OutOrStdout()),
		pmrtool.OptAppConfig(cfg),
		pmrtool.OptAppColor(pmrtool.ColorEnabled(cmd.OutOrStdout(), cfg)),
		pmrtool.OptAppJSON(asJSON),
	)
	c.app = app

	return err
}

// commandOpts contains configured options.
type commandOpts struct {
	rootPath string
}

// CommandOpt are used to configure optional command behavior.
type CommandOpt func(*commandOpts) error

// AddCommands adds pmrtool commands to cmd according to opts.
//
// Commands are provided to verify a PMR archive against its embedded signature, to compute the
// signature of a directory, to create a PMR archive, and to display the contents of one.
func AddCommands(cmd *cobra.Command, opts ...CommandOpt) error {
	c := command{
		opts: commandOpts{
			rootPath: cmd.CommandPath(),
		},
	}

	for _, opt := range opts {
		if err := opt(&c.opts); err != nil {
			return err
		}
	}

	cmd.AddCommand(
		c.getVerify(),
		c.getHash(),
		c.getPack(),
		c.getInspect(),
	)

	return nil
}
