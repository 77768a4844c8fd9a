// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Separator is the path separator used in canonical paths.
const Separator = '\\'

// CaseFold selects how letters in relative paths are lowercased.
type CaseFold int

const (
	// FoldSimple applies Unicode simple case mapping to each rune. For ASCII names it is plain
	// ASCII lowercasing.
	FoldSimple CaseFold = iota

	// FoldFull applies full, context-sensitive Unicode lowercasing (for example, a trailing
	// capital sigma becomes a final sigma).
	FoldFull
)

var foldNames = map[CaseFold]string{
	FoldSimple: "simple",
	FoldFull:   "full",
}

// String returns the name of f.
func (f CaseFold) String() string {
	if n, ok := foldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("CaseFold(%d)", int(f))
}

var errUnknownCaseFold = errors.New("unknown case fold")

// ParseCaseFold returns the CaseFold named s.
func ParseCaseFold(s string) (CaseFold, error) {
	for f, n := range foldNames {
		if strings.EqualFold(n, s) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", errUnknownCaseFold, s)
}

// lower lowercases s according to f.
func (f CaseFold) lower(s string) string {
	if f == FoldFull {
		// A cases.Caser is stateful, so one is created per call.
		return cases.Lower(language.Und).String(s)
	}
	return strings.ToLower(s)
}

// CanonicalPath returns the canonical form of the relative path rel: every separator is
// replaced by a backslash, and the result is lowercased using simple case mapping.
func CanonicalPath(rel string) string {
	return canonicalPath(rel, FoldSimple)
}

func canonicalPath(rel string, f CaseFold) string {
	b := []byte(rel)
	for i, c := range b {
		if c == '/' || c == filepath.Separator {
			b[i] = Separator
		}
	}
	return f.lower(string(b))
}
