// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"fmt"

	"github.com/pmrtools/pmr/pkg/integrity"
)

// Pack creates a PMR archive at path from the regular files below srcDir, embedding their
// signature. If pattern is not empty, only files with base names matching it are packaged. If
// cleanTemp is true, "*.tmp" files directly within srcDir are deleted first.
func (a *App) Pack(srcDir, path, pattern string, cleanTemp bool) error {
	hashOpts := a.hashOpts()
	if pattern != "" {
		hashOpts = append(hashOpts, integrity.OptHashPattern(pattern))
	}

	sig, err := integrity.Pack(srcDir, path,
		integrity.OptPackHashOpts(hashOpts...),
		integrity.OptPackCleanTemp(cleanTemp),
		integrity.OptPackPassword(a.opts.cfg.Password),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.opts.out, "Created %v\n", path)
	_, err = fmt.Fprintf(a.opts.out, "Signature: %v\n", sig)
	return err
}
