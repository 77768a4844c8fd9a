// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pmrtools/pmr/pkg/pmr"
)

var (
	errNoArchivePath    = errors.New("archive path not specified")
	errSignatureMissing = errors.New("archive comment is empty")
)

// Archive is an open archive carrying an embedded signature.
type Archive interface {
	// Comment returns the embedded signature text.
	Comment() string

	// Extract writes the archive contents below dir, and returns the number of files written.
	Extract(dir string) (int, error)

	// Close releases resources associated with the archive.
	Close() error
}

// OpenFunc opens the archive at path.
type OpenFunc func(path string) (Archive, error)

// openPMR opens the PMR archive at path using the shared password.
func openPMR(path string) (Archive, error) {
	a, err := pmr.Open(path)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// VerifyCallback is called immediately after stage s completes successfully, with the result
// accumulated so far.
type VerifyCallback func(s Stage, r VerifyResult)

// verifyOpts accumulates verification options.
type verifyOpts struct {
	extractDir string
	tempDir    string
	open       OpenFunc
	scheme     Scheme
	hashOpts   []HashOpt
	cb         VerifyCallback
}

// VerifyOpt are used to configure v.
type VerifyOpt func(v *verifyOpts) error

// OptVerifyExtractDir specifies that archive contents are extracted to dir. The directory is
// created if necessary, and is not removed once verification completes.
func OptVerifyExtractDir(dir string) VerifyOpt {
	return func(vo *verifyOpts) error {
		vo.extractDir = dir
		return nil
	}
}

// OptVerifyTempDir specifies dir as the parent of the temporary extraction directory.
func OptVerifyTempDir(dir string) VerifyOpt {
	return func(vo *verifyOpts) error {
		vo.tempDir = dir
		return nil
	}
}

// OptVerifyOpener specifies fn as the function used to open archives.
func OptVerifyOpener(fn OpenFunc) VerifyOpt {
	return func(vo *verifyOpts) error {
		vo.open = fn
		return nil
	}
}

// OptVerifyHashOpts specifies opts are applied when hashing extracted contents.
func OptVerifyHashOpts(opts ...HashOpt) VerifyOpt {
	return func(vo *verifyOpts) error {
		var ho hashOpts
		for _, opt := range opts {
			if err := opt(&ho); err != nil {
				return err
			}
		}
		vo.hashOpts = append(vo.hashOpts, opts...)
		return nil
	}
}

// OptVerifyCallback registers f as the verification callback.
func OptVerifyCallback(cb VerifyCallback) VerifyOpt {
	return func(vo *verifyOpts) error {
		vo.cb = cb
		return nil
	}
}

// Verifier verifies the contents of an archive against its embedded signature.
type Verifier struct {
	path string
	opts verifyOpts
}

// NewVerifier returns a Verifier to examine the archive at path, according to opts.
//
// By default, the archive is opened as a PMR archive, and extracted to a private temporary
// directory that is removed once verification completes. To extract to a persistent directory,
// use OptVerifyExtractDir. To override how the archive is opened, use OptVerifyOpener.
func NewVerifier(path string, opts ...VerifyOpt) (*Verifier, error) {
	if path == "" {
		return nil, errNoArchivePath
	}

	v := Verifier{
		path: path,
		opts: verifyOpts{
			open:   openPMR,
			scheme: DefaultScheme,
		},
	}

	for _, opt := range opts {
		if err := opt(&v.opts); err != nil {
			return nil, err
		}
	}

	return &v, nil
}

// progress calls the verification callback, if applicable.
func (v *Verifier) progress(s Stage, r VerifyResult) {
	if v.opts.cb != nil {
		v.opts.cb(s, r)
	}
}

// extractDir returns the directory to extract to, and a func that releases it.
func (v *Verifier) extractDir() (string, func(), error) {
	if v.opts.extractDir != "" {
		if err := os.MkdirAll(v.opts.extractDir, 0o755); err != nil {
			return "", nil, err
		}
		return v.opts.extractDir, func() {}, nil
	}

	root := v.opts.tempDir
	if root == "" {
		root = os.TempDir()
	}

	dir := filepath.Join(root, "pmr-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", nil, err
	}

	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("Error removing temporary directory: %v", err)
		}
	}, nil
}

// Verify performs verification. Stages run in order, and the first stage to fail ends
// verification. Once all stages succeed, the callback is invoked a final time with StageDone.
//
// If the archive contents match the embedded signature, the Outcome of the returned result is
// OutcomeVerified. If they do not, it is OutcomeTampered. A mismatch is not an error.
//
// If verification cannot be completed, a StageError is returned, identifying the failed stage.
func (v *Verifier) Verify() (VerifyResult, error) {
	r := VerifyResult{Archive: v.path}

	a, err := v.opts.open(v.path)
	if err != nil {
		return r, &StageError{Stage: StageReadSignature, Err: err}
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing archive: %v", err)
		}
	}()

	if r.Stored = EncryptedSignature(a.Comment()); r.Stored == "" {
		return r, &StageError{Stage: StageReadSignature, Err: errSignatureMissing}
	}
	v.progress(StageReadSignature, r)

	dir, release, err := v.extractDir()
	if err != nil {
		return r, &StageError{Stage: StageExtract, Err: err}
	}
	defer release()

	r.Dir = dir
	if r.Extracted, err = a.Extract(dir); err != nil {
		return r, &StageError{Stage: StageExtract, Err: err}
	}
	v.progress(StageExtract, r)

	if r.Hash, err = HashDirectory(dir, v.opts.hashOpts...); err != nil {
		if !errors.Is(err, ErrHashComputation) {
			err = &StageError{Stage: StageComputeHash, Err: err}
		}
		return r, err
	}
	v.progress(StageComputeHash, r)

	if r.Computed, err = v.opts.scheme.Encrypt(r.Hash); err != nil {
		return r, err
	}
	v.progress(StageEncrypt, r)

	if r.Computed == r.Stored {
		r.Outcome = OutcomeVerified
	} else {
		r.Outcome = OutcomeTampered

		// A stored value that does not decrypt is reported without its plaintext.
		if h, err := v.opts.scheme.Decrypt(r.Stored); err == nil {
			r.StoredHash = h
		}
	}
	v.progress(StageCompare, r)
	v.progress(StageDone, r)

	return r, nil
}
