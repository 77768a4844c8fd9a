// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmr

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"
)

// Archive is an open PMR archive.
type Archive struct {
	rc       *zip.ReadCloser
	password string
}

// openOpts accumulates archive open options.
type openOpts struct {
	password string
}

// OpenOpt are used to specify archive open options.
type OpenOpt func(*openOpts) error

// OptOpenPassword specifies pw as the password used to decrypt entries.
func OptOpenPassword(pw string) OpenOpt {
	return func(oo *openOpts) error {
		oo.password = pw
		return nil
	}
}

// Open opens the PMR archive at path, according to opts.
//
// By default, entries are decrypted using DefaultPassword. To override this behavior, use
// OptOpenPassword.
func Open(path string, opts ...OpenOpt) (*Archive, error) {
	oo := openOpts{
		password: DefaultPassword,
	}

	for _, opt := range opts {
		if err := opt(&oo); err != nil {
			return nil, err
		}
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("while opening archive: %w", err)
	}

	return &Archive{rc: rc, password: oo.password}, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	return a.rc.Close()
}

// Comment returns the archive comment.
func (a *Archive) Comment() string {
	return a.rc.Comment
}

// Entry describes an entry of an archive.
type Entry struct {
	Name      string // Slash-separated name.
	Size      uint64 // Uncompressed size in bytes.
	Encrypted bool   // Whether the entry data is encrypted.
	Dir       bool   // Whether the entry is a directory.
}

// Entries returns the entries of the archive, in archive order.
func (a *Archive) Entries() []Entry {
	es := make([]Entry, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		es = append(es, Entry{
			Name:      f.Name,
			Size:      f.UncompressedSize64,
			Encrypted: f.IsEncrypted(),
			Dir:       isDir(f),
		})
	}
	return es
}

func isDir(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || f.Mode().IsDir()
}

// open returns a reader of the decrypted, decompressed data of f.
func (a *Archive) open(f *zip.File) (io.ReadCloser, error) {
	if f.IsEncrypted() {
		f.SetPassword(a.password)
	}
	return f.Open()
}

// entryPath returns the path, relative to the extraction directory, that the entry named name
// is extracted to. If name is absolute, or refers to a location outside of the extraction
// directory, errUnsafeEntryName is returned.
func entryPath(name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", errUnsafeEntryName, name)
	}
	return rel, nil
}

// mkdirAll creates directory rel within root, along with any necessary parents.
func mkdirAll(root *os.Root, rel string) error {
	if rel == "." {
		return nil
	}

	if err := mkdirAll(root, filepath.Dir(rel)); err != nil {
		return err
	}

	if err := root.Mkdir(rel, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}
	return nil
}

// extractFile writes the contents of f to rel within root.
func (a *Archive) extractFile(root *os.Root, f *zip.File, rel string) (err error) {
	if fi, err := root.Lstat(rel); err == nil && !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %v", errNotRegularTarget, rel)
	}

	if err := mkdirAll(root, filepath.Dir(rel)); err != nil {
		return err
	}

	r, err := a.open(f)
	if err != nil {
		return fmt.Errorf("while opening entry %q: %w", f.Name, err)
	}
	defer r.Close()

	w, err := root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("while extracting entry %q: %w", f.Name, err)
	}
	return nil
}

// Extract decrypts and writes all entries of the archive below dir, creating dir if necessary,
// and returns the number of files written.
//
// Extraction stops at the first error. Entries that would be written outside of dir are
// rejected, including through symbolic links already present below dir.
func (a *Archive) Extract(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return 0, err
	}
	defer root.Close()

	n := 0
	for _, f := range a.rc.File {
		rel, err := entryPath(f.Name)
		if err != nil {
			return n, err
		}

		if isDir(f) {
			if err := mkdirAll(root, rel); err != nil {
				return n, err
			}
			continue
		}

		if err := a.extractFile(root, f, rel); err != nil {
			return n, err
		}
		n++
	}

	return n, nil
}
