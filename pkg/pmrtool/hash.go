// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"github.com/spf13/cobra"
)

// getHash returns a command that computes the signature of a directory.
func (c *command) getHash() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <dir>",
		Short: "Compute directory signature",
		Long: `Compute the summary hash of the regular files below a directory, and the signature that a
PMR archive of those files would carry.`,
		Example: c.opts.rootPath + " hash --list logs/",
		Args:    cobra.ExactArgs(1),
	}

	fs := cmd.Flags()
	list := fs.Bool("list", false, "list the digest of each file, in hashing order")
	addJSONFlag(fs)
	addHashFlags(fs)

	cmd.PreRunE = c.initApp
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return c.app.Hash(args[0], *list)
	}

	return cmd
}
