// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package pmr implements reading, extraction and creation of PMR archives.
//
// A PMR archive is a zip archive whose entries are encrypted with WinZip AES-256 under a shared
// password. The archive comment carries the integrity signature of the packaged files; this
// package treats the comment as opaque text. See package integrity for computing and verifying
// signatures.
//
// To open an archive and extract its contents:
//
//	a, err := pmr.Open("MonitorFile_20250101_120000.pmr")
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	sig := a.Comment()
//	n, err := a.Extract(dir)
package pmr

import "errors"

// DefaultPassword is the shared password protecting the entries of PMR archives.
const DefaultPassword = "CPPUAPA"

// Extension is the conventional file name extension of PMR archives.
const Extension = ".pmr"

var (
	errUnsafeEntryName  = errors.New("entry name escapes extraction directory")
	errNotRegularTarget = errors.New("extraction target exists and is not a regular file")
	errCommentTooLong   = errors.New("comment too long")
	errNoDirectoryEnd   = errors.New("end of central directory record not found")
)
