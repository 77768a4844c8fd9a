// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

var (
	errDuplicatePath = errors.New("duplicate canonical path")
	errNotDirectory  = errors.New("not a directory")
)

// hashOpts accumulates directory hashing options.
type hashOpts struct {
	fold    CaseFold
	jobs    int
	pattern string
}

// HashOpt are used to specify directory hashing options.
type HashOpt func(*hashOpts) error

// OptHashCaseFold specifies f as the case fold applied to relative paths.
func OptHashCaseFold(f CaseFold) HashOpt {
	return func(ho *hashOpts) error {
		if _, ok := foldNames[f]; !ok {
			return fmt.Errorf("%w: %v", errUnknownCaseFold, f)
		}
		ho.fold = f
		return nil
	}
}

// OptHashConcurrency specifies that up to n files may be digested concurrently. Values less than
// one are treated as one.
func OptHashConcurrency(n int) HashOpt {
	return func(ho *hashOpts) error {
		if n < 1 {
			n = 1
		}
		ho.jobs = n
		return nil
	}
}

// OptHashPattern specifies that only regular files with a base name matching the shell pattern
// pattern contribute to the hash. The pattern syntax is that of filepath.Match.
func OptHashPattern(pattern string) HashOpt {
	return func(ho *hashOpts) error {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("while parsing pattern: %w", err)
		}
		ho.pattern = pattern
		return nil
	}
}

// listFiles returns the regular files below root, keyed by canonical path and sorted by
// ordinal comparison of that key. Digest values are not populated. If root is a symbolic link
// to a directory, the directory it refers to is walked.
func listFiles(root string, ho hashOpts) ([]FileDigest, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %v", errNotDirectory, root)
	}

	if root, err = filepath.EvalSymlinks(root); err != nil {
		return nil, err
	}

	var ds []FileDigest

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if ho.pattern != "" {
			if ok, _ := filepath.Match(ho.pattern, d.Name()); !ok {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		ds = append(ds, FileDigest{
			Name:         filepath.ToSlash(rel),
			Path:         canonicalPath(rel, ho.fold),
			AbsolutePath: path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(ds, func(i, j int) bool { return ds[i].Path < ds[j].Path })

	// On case-sensitive filesystems, two names may fold to the same key. Their relative order
	// would depend on walk order, so reject them.
	for i := 1; i < len(ds); i++ {
		if ds[i].Path == ds[i-1].Path {
			return nil, fmt.Errorf("%w: %v", errDuplicatePath, ds[i].Path)
		}
	}

	return ds, nil
}

// digestFiles populates the digest value of each of ds, using up to jobs goroutines.
func digestFiles(ds []FileDigest, jobs int) error {
	if jobs <= 1 {
		for i := range ds {
			v, err := hashFile(ds[i].AbsolutePath)
			if err != nil {
				return err
			}
			ds[i].Value = v
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(jobs)

	// Each goroutine writes only its own element.
	for i := range ds {
		g.Go(func() error {
			v, err := hashFile(ds[i].AbsolutePath)
			if err != nil {
				return err
			}
			ds[i].Value = v
			return nil
		})
	}

	return g.Wait()
}

// HashDirectoryEntries returns the per-file digests that make up the SummaryHash of the
// directory tree rooted at root, in the order they are folded.
//
// If a file cannot be listed or read, a HashComputationError is returned.
func HashDirectoryEntries(root string, opts ...HashOpt) ([]FileDigest, error) {
	ho := hashOpts{
		fold: FoldSimple,
		jobs: 1,
	}

	for _, opt := range opts {
		if err := opt(&ho); err != nil {
			return nil, err
		}
	}

	ds, err := listFiles(root, ho)
	if err != nil {
		return nil, &StageError{Stage: StageComputeHash, Err: err}
	}

	if err := digestFiles(ds, ho.jobs); err != nil {
		return nil, &StageError{Stage: StageComputeHash, Err: err}
	}

	return ds, nil
}

// HashDirectory returns the SummaryHash of the directory tree rooted at root.
//
// Each regular file below root contributes its canonical relative path followed by the digest
// of its contents, in ordinal order of canonical path. A tree without regular files yields
// EmptyTreeHash.
//
// If a file cannot be listed or read, a HashComputationError is returned, and no hash.
func HashDirectory(root string, opts ...HashOpt) (SummaryHash, error) {
	ds, err := HashDirectoryEntries(root, opts...)
	if err != nil {
		return "", err
	}

	return Fold(ds)
}
