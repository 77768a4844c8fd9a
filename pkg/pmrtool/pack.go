// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"strings"

	"github.com/spf13/cobra"
)

// getPackExamples returns pack command examples based on rootPath.
func getPackExamples(rootPath string) string {
	examples := []string{
		rootPath + " pack logs/ MonitorFile_20250101_120000.pmr",
		rootPath + " pack --pattern 'ProcessLog_*.csv' --clean-tmp logs/ MonitorFile_20250101_120000.pmr",
	}
	return strings.Join(examples, "\n")
}

// getPack returns a command that creates a signed PMR archive from a directory.
func (c *command) getPack() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack <src_dir> <pmr_path>",
		Short: "Create PMR archive",
		Long: `Create a PMR archive from the regular files below a directory, embedding their signature in
the archive comment. The archive is re-opened to check the signature once written.`,
		Example: getPackExamples(c.opts.rootPath),
		Args:    cobra.ExactArgs(2),
	}

	fs := cmd.Flags()
	pattern := fs.String("pattern", "", "package only files with base names matching the pattern")
	cleanTemp := fs.Bool("clean-tmp", false, "delete *.tmp files directly within the source directory first")
	addHashFlags(fs)

	cmd.PreRunE = c.initApp
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return c.app.Pack(args[0], args[1], *pattern, *cleanTemp)
	}

	return cmd
}
