// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"github.com/spf13/cobra"
)

// getInspect returns a command that displays the signature and entries of a PMR archive.
func (c *command) getInspect() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspect <pmr_path>",
		Short:   "Display PMR archive contents",
		Long:    "Display the embedded signature, the hash it decrypts to, and the entries of a PMR archive.",
		Example: c.opts.rootPath + " inspect MonitorFile_20250101_120000.pmr",
		Args:    cobra.ExactArgs(1),
	}
	addJSONFlag(cmd.Flags())

	cmd.PreRunE = c.initApp
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return c.app.Inspect(args[0])
	}

	return cmd
}
