// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"errors"
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/pmrtools/pmr/pkg/integrity"
)

// ErrTampered is returned when verification completes, and the archive contents do not match
// the embedded signature.
var ErrTampered = errors.New("archive contents do not match the embedded signature")

// verifyReport is the JSON form of a verification verdict.
type verifyReport struct {
	Archive           string `json:"archive"`
	Outcome           string `json:"outcome"`
	FailedStage       string `json:"failed_stage,omitempty"`
	Error             string `json:"error,omitempty"`
	ExtractedFiles    int    `json:"extracted_files"`
	Hash              string `json:"hash,omitempty"`
	StoredSignature   string `json:"stored_signature,omitempty"`
	ComputedSignature string `json:"computed_signature,omitempty"`
	StoredHash        string `json:"stored_hash,omitempty"`
}

// failedStage returns the stage that err identifies, if any.
func failedStage(err error) (integrity.Stage, bool) {
	var se *integrity.StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}

// progress writes a line describing the completion of stage s.
func (a *App) progress(s integrity.Stage, r integrity.VerifyResult) {
	switch s {
	case integrity.StageReadSignature:
		fmt.Fprintf(a.opts.out, "[1/4] Read signature from %v\n", r.Archive)
	case integrity.StageExtract:
		fmt.Fprintf(a.opts.out, "[2/4] Extracted %v file(s)\n", r.Extracted)
	case integrity.StageComputeHash:
		fmt.Fprintf(a.opts.out, "[3/4] Computed hash %v\n", r.Hash)
	case integrity.StageEncrypt:
		fmt.Fprintln(a.opts.out, "[4/4] Encrypted hash")
	}
}

// writeVerdict writes the text verdict of a verification with result r and error err.
func (a *App) writeVerdict(r integrity.VerifyResult, err error) error {
	if err != nil {
		if s, ok := failedStage(err); ok {
			_, err = fmt.Fprintf(a.opts.out, "%v: %v: %v\n", a.paint(colorYellow, "Failed"), s, err)
		} else {
			_, err = fmt.Fprintf(a.opts.out, "%v: %v\n", a.paint(colorYellow, "Failed"), err)
		}
		return err
	}

	tw := tabwriter.NewWriter(a.opts.out, 0, 0, 2, ' ', 0)

	if r.Verified() {
		fmt.Fprintf(tw, "%v: archive contents match the embedded signature\n",
			a.paint(colorGreen, r.Outcome.String()))
		fmt.Fprintf(tw, "  Stored:\t%v\n", r.Stored)
		fmt.Fprintf(tw, "  Computed:\t%v\n", r.Computed)
		return tw.Flush()
	}

	storedHash := string(r.StoredHash)
	if storedHash == "" {
		storedHash = "(not decryptable)"
	}

	fmt.Fprintf(tw, "%v: %v\n", a.paint(colorRed, r.Outcome.String()), ErrTampered)
	fmt.Fprintf(tw, "  Stored:\t%v\n", r.Stored)
	fmt.Fprintf(tw, "  Computed:\t%v\n", r.Computed)
	fmt.Fprintf(tw, "  Stored hash:\t%v\n", storedHash)
	fmt.Fprintf(tw, "  Computed hash:\t%v\n", r.Hash)
	return tw.Flush()
}

// writeReport writes the JSON verdict of a verification with result r and error err.
func (a *App) writeReport(r integrity.VerifyResult, err error) error {
	rep := verifyReport{
		Archive:           r.Archive,
		ExtractedFiles:    r.Extracted,
		Hash:              string(r.Hash),
		StoredSignature:   string(r.Stored),
		ComputedSignature: string(r.Computed),
		StoredHash:        string(r.StoredHash),
	}

	if err != nil {
		rep.Outcome = "Failed"
		rep.Error = err.Error()
		if s, ok := failedStage(err); ok {
			rep.FailedStage = s.String()
		}
	} else {
		rep.Outcome = r.Outcome.String()
	}

	enc := json.NewEncoder(a.opts.out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Verify verifies the PMR archive at path against its embedded signature, and writes the
// verdict. If extractDir is not empty, the archive is extracted there and the directory is
// kept. Otherwise, a temporary directory is used.
//
// If verification completes and the contents do not match, ErrTampered is returned. If it
// cannot complete, the *integrity.StageError identifying the failed stage is returned.
func (a *App) Verify(path, extractDir string) error {
	opts := []integrity.VerifyOpt{
		integrity.OptVerifyOpener(a.open),
		integrity.OptVerifyHashOpts(a.hashOpts()...),
	}

	if extractDir != "" {
		opts = append(opts, integrity.OptVerifyExtractDir(extractDir))
	}

	if a.opts.cfg.TempDir != "" {
		opts = append(opts, integrity.OptVerifyTempDir(a.opts.cfg.TempDir))
	}

	if !a.opts.json {
		opts = append(opts, integrity.OptVerifyCallback(a.progress))
	}

	v, err := integrity.NewVerifier(path, opts...)
	if err != nil {
		return err
	}

	r, err := v.Verify()

	if a.opts.json {
		if werr := a.writeReport(r, err); werr != nil {
			return werr
		}
	} else if werr := a.writeVerdict(r, err); werr != nil {
		return werr
	}

	if err != nil {
		return err
	}

	if !r.Verified() {
		return ErrTampered
	}
	return nil
}
