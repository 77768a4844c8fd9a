// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/pmrtools/pmr/pkg/integrity"
)

// fileReport is the JSON form of the contribution of one file to a hash.
type fileReport struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// hashReport is the JSON form of the hash of a directory.
type hashReport struct {
	Hash      string       `json:"hash"`
	Signature string       `json:"signature"`
	Files     []fileReport `json:"files,omitempty"`
}

// Hash computes the SummaryHash of the directory tree rooted at dir, and writes it along with
// its encrypted signature. If list is true, the per-file digests are written first, in the
// order they are folded.
func (a *App) Hash(dir string, list bool) error {
	ds, err := integrity.HashDirectoryEntries(dir, a.hashOpts()...)
	if err != nil {
		return err
	}

	h, err := integrity.Fold(ds)
	if err != nil {
		return err
	}

	sig, err := integrity.EncryptHash(h)
	if err != nil {
		return err
	}

	if a.opts.json {
		rep := hashReport{
			Hash:      string(h),
			Signature: string(sig),
		}

		if list {
			for _, d := range ds {
				rep.Files = append(rep.Files, fileReport{
					Path:   d.Path,
					Digest: hex.EncodeToString(d.Value),
				})
			}
		}

		enc := json.NewEncoder(a.opts.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	if list {
		for _, d := range ds {
			fmt.Fprintln(a.opts.out, d)
		}
	}

	tw := tabwriter.NewWriter(a.opts.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Hash:\t%v\n", h)
	fmt.Fprintf(tw, "Signature:\t%v\n", sig)
	return tw.Flush()
}
