// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/pmrtools/pmr/pkg/integrity"
	"github.com/pmrtools/pmr/pkg/pmr"
)

// entryReport is the JSON form of an archive entry.
type entryReport struct {
	Name      string `json:"name"`
	Size      uint64 `json:"size"`
	Encrypted bool   `json:"encrypted"`
	Dir       bool   `json:"dir,omitempty"`
}

// inspectReport is the JSON form of the contents of an archive.
type inspectReport struct {
	Archive   string        `json:"archive"`
	Signature string        `json:"signature"`
	Hash      string        `json:"hash,omitempty"`
	Entries   []entryReport `json:"entries"`
}

// yesNo returns "yes" if b is true, and "no" otherwise.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Inspect writes the signature embedded in the PMR archive at path, the hash it decrypts to,
// and the archive entries. The archive is not extracted.
func (a *App) Inspect(path string) error {
	ar, err := pmr.Open(path, pmr.OptOpenPassword(a.opts.cfg.Password))
	if err != nil {
		return &integrity.StageError{Stage: integrity.StageReadSignature, Err: err}
	}
	defer closeArchive(ar)

	sig := integrity.EncryptedSignature(ar.Comment())
	es := ar.Entries()

	var h integrity.SummaryHash
	if sig != "" {
		// A signature that does not decrypt is reported without a hash.
		h, _ = integrity.DecryptSignature(sig)
	}

	if a.opts.json {
		rep := inspectReport{
			Archive:   path,
			Signature: string(sig),
			Hash:      string(h),
			Entries:   make([]entryReport, 0, len(es)),
		}

		for _, e := range es {
			rep.Entries = append(rep.Entries, entryReport{
				Name:      e.Name,
				Size:      e.Size,
				Encrypted: e.Encrypted,
				Dir:       e.Dir,
			})
		}

		enc := json.NewEncoder(a.opts.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	tw := tabwriter.NewWriter(a.opts.out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Archive:\t%v\n", path)

	switch {
	case sig == "":
		fmt.Fprintf(tw, "Signature:\t(none)\n")
	case h == "":
		fmt.Fprintf(tw, "Signature:\t%v\n", sig)
		fmt.Fprintf(tw, "Hash:\t(not decryptable)\n")
	default:
		fmt.Fprintf(tw, "Signature:\t%v\n", sig)
		fmt.Fprintf(tw, "Hash:\t%v\n", h)
	}

	fmt.Fprintf(tw, "Entries:\t%v\n", len(es))

	if len(es) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "NAME\tSIZE\tENCRYPTED")

		for _, e := range es {
			name := e.Name
			size := readableSize(e.Size)
			if e.Dir {
				size = "-"
			}
			fmt.Fprintf(tw, "%v\t%v\t%v\n", name, size, yesNo(e.Encrypted))
		}
	}

	return tw.Flush()
}
