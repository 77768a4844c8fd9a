// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"fmt"
	"strings"
)

// Stage identifies a step of verification.
type Stage int

// Verification stages, in the order they are performed.
const (
	StageReadSignature Stage = iota + 1
	StageExtract
	StageComputeHash
	StageEncrypt
	StageCompare
	StageDone
)

var stageNames = map[Stage]string{
	StageReadSignature: "read signature",
	StageExtract:       "extract",
	StageComputeHash:   "compute hash",
	StageEncrypt:       "encrypt",
	StageCompare:       "compare",
	StageDone:          "done",
}

// String returns a human readable name of s.
func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError records a failure that prevented verification from completing.
type StageError struct {
	Stage Stage // Stage that failed.
	Err   error // Wrapped error.
}

var stageErrorKinds = map[Stage]string{
	StageReadSignature: "archive unreadable or signature missing",
	StageExtract:       "extraction failed",
	StageComputeHash:   "hash computation failed",
	StageEncrypt:       "signature encryption failed",
}

func (e *StageError) Error() string {
	b := &strings.Builder{}

	if k, ok := stageErrorKinds[e.Stage]; ok {
		fmt.Fprint(b, k)
	} else {
		fmt.Fprintf(b, "%v failed", e.Stage)
	}

	if e.Err != nil {
		fmt.Fprintf(b, ": %v", e.Err)
	}

	return b.String()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is compares e against target. If target is a StageError and matches the stage of e, or target
// has a zero value Stage, true is returned.
func (e *StageError) Is(target error) bool {
	t, ok := target.(*StageError)
	if !ok {
		return false
	}
	return e.Stage == t.Stage || t.Stage == 0
}

// Errors usable as targets of errors.Is, one per failure kind.
var (
	ErrArchiveRead     error = &StageError{Stage: StageReadSignature}
	ErrExtraction      error = &StageError{Stage: StageExtract}
	ErrHashComputation error = &StageError{Stage: StageComputeHash}
	ErrCipher          error = &StageError{Stage: StageEncrypt}
)
