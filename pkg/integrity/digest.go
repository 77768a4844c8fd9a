// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"crypto"
	_ "crypto/md5" // register MD5 with crypto
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// digestHash is the hash function used both for per-file digests and for the summary digest.
const digestHash = crypto.MD5

var (
	errHashUnavailable = errors.New("hash algorithm unavailable")
	errDigestMalformed = errors.New("digest malformed")
)

// SummaryHash is the lowercase hexadecimal digest of a directory tree.
type SummaryHash string

// EmptyTreeHash is the SummaryHash of a directory containing no regular files.
const EmptyTreeHash SummaryHash = "d41d8cd98f00b204e9800998ecf8427e"

// ParseSummaryHash validates s as a SummaryHash. Upper case hex digits are accepted and
// folded to lower case.
func ParseSummaryHash(s string) (SummaryHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errDigestMalformed, err)
	}
	if len(b) != digestHash.Size() {
		return "", errDigestMalformed
	}
	return SummaryHash(hex.EncodeToString(b)), nil
}

// hashValue calculates a digest by applying hash function h to the contents read from r. If h is
// not available, errHashUnavailable is returned.
func hashValue(h crypto.Hash, r io.Reader) ([]byte, error) {
	if !h.Available() {
		return nil, errHashUnavailable
	}

	w := h.New()
	if _, err := io.Copy(w, r); err != nil {
		return nil, err
	}
	return w.Sum(nil), nil
}

// hashFile returns the digest of the full contents of the file at path.
func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return hashValue(digestHash, f)
}

// FileDigest records the contribution of one regular file to a SummaryHash.
type FileDigest struct {
	Name         string // Slash-separated path relative to the hashed root.
	Path         string // Canonical path relative to the hashed root.
	AbsolutePath string // Location of the file on disk.
	Value        []byte // Digest of the file contents.
}

// String returns d in the form "<hex digest>  <canonical path>".
func (d FileDigest) String() string {
	return fmt.Sprintf("%x  %s", d.Value, d.Path)
}

// Fold absorbs the canonical path and raw digest of each of ds, in order, into a single
// digest, and returns it as a SummaryHash. The digests are expected in the order returned by
// HashDirectoryEntries.
//
// If a digest value is malformed, a HashComputationError is returned.
func Fold(ds []FileDigest) (SummaryHash, error) {
	if !digestHash.Available() {
		return "", &StageError{Stage: StageComputeHash, Err: errHashUnavailable}
	}

	w := digestHash.New()
	for _, d := range ds {
		if len(d.Value) != w.Size() {
			return "", &StageError{
				Stage: StageComputeHash,
				Err:   fmt.Errorf("%s: %w", d.Path, errDigestMalformed),
			}
		}
		io.WriteString(w, d.Path) //nolint:errcheck // hash writes do not fail
		w.Write(d.Value)          //nolint:errcheck
	}

	return SummaryHash(hex.EncodeToString(w.Sum(nil))), nil
}
