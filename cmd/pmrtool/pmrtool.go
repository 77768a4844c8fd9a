// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"text/tabwriter"

	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/pmrtools/pmr/pkg/pmrtool"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags at link time.
var (
	version = "unknown"
	date    = ""
	builtBy = ""
	commit  = ""
	state   = ""
)

// versionField is one labelled line of version output.
type versionField struct {
	label string
	value string
}

// vcsInfo returns the revision and modification state recorded by the go command, for use when
// commit is not set at link time.
func vcsInfo() (rev, modified string) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				modified = "dirty"
			}
		}
	}
	return rev, modified
}

// versionFields returns the lines of version output. Build details that are unknown are
// omitted.
func versionFields() []versionField {
	fs := []versionField{{"Version", version}}

	if builtBy != "" {
		fs = append(fs, versionField{"By", builtBy})
	}

	rev, st := commit, state
	if rev == "" {
		rev, st = vcsInfo()
	}
	if rev != "" {
		if st != "" {
			rev = fmt.Sprintf("%v (%v)", rev, st)
		}
		fs = append(fs, versionField{"Commit", rev})
	}

	if date != "" {
		fs = append(fs, versionField{"Date", date})
	}

	return append(fs,
		versionField{"Runtime", fmt.Sprintf("%v (%v/%v)", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
		versionField{"Scheme", integrity.SchemeVersion.String()},
	)
}

// writeVersion writes version information to w, one aligned field per line.
func writeVersion(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, f := range versionFields() {
		if _, err := fmt.Fprintf(tw, "%v:\t%v\n", f.label, f.value); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// getVersion returns a command that displays version information.
func getVersion() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		Short:                 "Display version information",
		Long:                  "Display binary version, build details and the signature scheme version.",
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeVersion(cmd.OutOrStdout())
		},
	}
}

func main() {
	root := cobra.Command{
		Use:   "pmrtool",
		Short: "pmrtool is a program for checking the integrity of PMR monitoring archives",
		Long: `A set of commands are provided to verify a PMR archive against the signature embedded
in its comment, to compute the signature of a directory, to create a signed PMR archive,
and to display the contents of one.`,
	}

	root.AddCommand(getVersion())

	if err := pmrtool.AddCommands(&root); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(pmrtool.ExitUsage)
	}

	os.Exit(pmrtool.ExitCode(root.Execute()))
}
