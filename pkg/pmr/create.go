// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/yeka/zip"
)

const (
	directoryEndSignature = 0x06054b50
	directoryEndLen       = 22 // Length of end of central directory record, excluding comment.
)

// FileInput describes a file to be added to an archive.
type FileInput struct {
	Name string // Slash-separated entry name.
	Path string // Location of the file contents on disk.
}

// createOpts accumulates archive creation options.
type createOpts struct {
	password string
	comment  string
}

// CreateOpt are used to specify archive creation options.
type CreateOpt func(*createOpts) error

// OptCreatePassword specifies pw as the password used to encrypt entries.
func OptCreatePassword(pw string) CreateOpt {
	return func(co *createOpts) error {
		co.password = pw
		return nil
	}
}

// OptCreateComment specifies s as the archive comment.
func OptCreateComment(s string) CreateOpt {
	return func(co *createOpts) error {
		if len(s) > math.MaxUint16 {
			return errCommentTooLong
		}
		co.comment = s
		return nil
	}
}

// writeEntry adds the contents of the file described by fi to w as an AES-256 encrypted entry.
func writeEntry(w *zip.Writer, fi FileInput, password string) error {
	f, err := os.Open(fi.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	ew, err := w.Encrypt(fi.Name, password, zip.AES256Encryption)
	if err != nil {
		return fmt.Errorf("while adding entry %q: %w", fi.Name, err)
	}

	if _, err := io.Copy(ew, f); err != nil {
		return fmt.Errorf("while adding entry %q: %w", fi.Name, err)
	}
	return nil
}

// setComment sets the comment of the archive in f, which must end with an end of central
// directory record carrying no comment.
func setComment(f *os.File, comment string) error {
	if len(comment) > math.MaxUint16 {
		return errCommentTooLong
	}

	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end < directoryEndLen {
		return errNoDirectoryEnd
	}

	rec := make([]byte, directoryEndLen)
	if _, err := f.ReadAt(rec, end-directoryEndLen); err != nil {
		return err
	}

	if binary.LittleEndian.Uint32(rec) != directoryEndSignature ||
		binary.LittleEndian.Uint16(rec[20:]) != 0 {
		return errNoDirectoryEnd
	}

	binary.LittleEndian.PutUint16(rec[20:], uint16(len(comment)))
	if _, err := f.WriteAt(rec[20:], end-2); err != nil {
		return err
	}

	_, err = f.WriteAt([]byte(comment), end)
	return err
}

// Create creates a new PMR archive at path containing the files described by fis, in order,
// according to opts.
//
// By default, entries are encrypted using DefaultPassword, and the archive carries no comment.
// To override this behavior, use OptCreatePassword and/or OptCreateComment.
func Create(path string, fis []FileInput, opts ...CreateOpt) (err error) {
	co := createOpts{
		password: DefaultPassword,
	}

	for _, opt := range opts {
		if err := opt(&co); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("archive file creation failed: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := zip.NewWriter(f)
	for _, fi := range fis {
		if err := writeEntry(w, fi, co.password); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while writing central directory: %w", err)
	}

	if co.comment != "" {
		if err := setComment(f, co.comment); err != nil {
			return fmt.Errorf("while setting comment: %w", err)
		}
	}

	return nil
}
