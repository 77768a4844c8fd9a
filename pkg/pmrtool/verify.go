// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"errors"
	"strings"

	"github.com/pmrtools/pmr/internal/app/pmrtool"
	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/spf13/cobra"
)

// getVerifyExamples returns verify command examples based on rootPath.
func getVerifyExamples(rootPath string) string {
	examples := []string{
		rootPath + " verify MonitorFile_20250101_120000.pmr",
		rootPath + " verify --extract-dir logs/ MonitorFile_20250101_120000.pmr",
		rootPath + " verify --json MonitorFile_20250101_120000.pmr",
	}
	return strings.Join(examples, "\n")
}

// isVerdict reports whether err has already been reported by the verdict of a verification.
func isVerdict(err error) bool {
	var se *integrity.StageError
	return errors.Is(err, pmrtool.ErrTampered) || errors.As(err, &se)
}

// getVerify returns a command that verifies a PMR archive against its embedded signature.
func (c *command) getVerify() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <pmr_path>",
		Short: "Verify PMR archive",
		Long: `Verify that the contents of a PMR archive match the signature embedded in its comment.

The exit status is 0 if the contents match, and 6 if they do not. If verification cannot be
completed, the exit status identifies the failed stage: 2 if the archive is unreadable or
carries no signature, 3 if extraction fails, 4 if hashing fails, and 5 if encryption fails.`,
		Example: getVerifyExamples(c.opts.rootPath),
		Args:    cobra.ExactArgs(1),
	}

	fs := cmd.Flags()
	extractDir := fs.StringP("extract-dir", "e", "", "extract to directory, and keep it (default temporary)")
	addJSONFlag(fs)
	addHashFlags(fs)

	cmd.PreRunE = c.initApp
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := c.app.Verify(args[0], *extractDir)
		if isVerdict(err) {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
		}
		return err
	}

	return cmd
}
