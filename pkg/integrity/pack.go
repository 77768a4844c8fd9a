// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pmrtools/pmr/pkg/pmr"
)

// ErrPackageValidation is the error returned when a newly created archive does not carry the
// expected signature.
var ErrPackageValidation = errors.New("package validation failed")

// packOpts accumulates packaging options.
type packOpts struct {
	hashOpts  []HashOpt
	cleanTemp bool
	password  string
	scheme    Scheme
	signature EncryptedSignature
}

// PackOpt are used to specify packaging options.
type PackOpt func(po *packOpts) error

// OptPackHashOpts specifies opts are applied when selecting and hashing source files. Use
// OptHashPattern to package a subset of files.
func OptPackHashOpts(opts ...HashOpt) PackOpt {
	return func(po *packOpts) error {
		po.hashOpts = append(po.hashOpts, opts...)
		return nil
	}
}

// OptPackCleanTemp specifies whether "*.tmp" files directly within the source directory are
// deleted before packaging.
func OptPackCleanTemp(b bool) PackOpt {
	return func(po *packOpts) error {
		po.cleanTemp = b
		return nil
	}
}

// OptPackPassword specifies pw as the password used to encrypt archive entries.
func OptPackPassword(pw string) PackOpt {
	return func(po *packOpts) error {
		po.password = pw
		return nil
	}
}

// OptPackSignature specifies sig is embedded in place of the computed signature.
func OptPackSignature(sig EncryptedSignature) PackOpt {
	return func(po *packOpts) error {
		po.signature = sig
		return nil
	}
}

// cleanTempFiles deletes "*.tmp" files directly within dir. Failures are logged and ignored.
func cleanTempFiles(dir string) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		log.Printf("Error listing temporary files: %v", err)
		return
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			log.Printf("Error removing temporary file: %v", err)
		}
	}
}

// validatePackage checks that the archive at path carries signature sig.
func validatePackage(path, password string, sig EncryptedSignature) error {
	a, err := pmr.Open(path, pmr.OptOpenPassword(password))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackageValidation, err)
	}
	defer a.Close()

	if got := EncryptedSignature(a.Comment()); got != sig {
		return fmt.Errorf("%w: comment %q does not match signature %q", ErrPackageValidation, got, sig)
	}
	return nil
}

// Pack creates a PMR archive at path from the regular files below srcDir, and returns the
// signature embedded in it.
//
// The signature is the encrypted SummaryHash of exactly the packaged files. After the archive
// is written it is re-opened, and if it does not carry the signature it is removed and an error
// wrapping ErrPackageValidation is returned.
func Pack(srcDir, path string, opts ...PackOpt) (EncryptedSignature, error) {
	po := packOpts{
		password: pmr.DefaultPassword,
		scheme:   DefaultScheme,
	}

	for _, opt := range opts {
		if err := opt(&po); err != nil {
			return "", err
		}
	}

	if po.cleanTemp {
		cleanTempFiles(srcDir)
	}

	ds, err := HashDirectoryEntries(srcDir, po.hashOpts...)
	if err != nil {
		return "", err
	}

	h, err := Fold(ds)
	if err != nil {
		return "", err
	}

	sig := po.signature
	if sig == "" {
		if sig, err = po.scheme.Encrypt(h); err != nil {
			return "", err
		}
	}

	fis := make([]pmr.FileInput, 0, len(ds))
	for _, d := range ds {
		fis = append(fis, pmr.FileInput{Name: d.Name, Path: d.AbsolutePath})
	}

	err = pmr.Create(path, fis,
		pmr.OptCreatePassword(po.password),
		pmr.OptCreateComment(string(sig)),
	)
	if err != nil {
		os.Remove(path)
		return "", err
	}

	if err := validatePackage(path, po.password, sig); err != nil {
		if rerr := os.Remove(path); rerr != nil {
			log.Printf("Error removing invalid package: %v", rerr)
		}
		return "", err
	}

	return sig, nil
}
