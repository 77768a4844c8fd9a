// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package pmrtool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pmrtools/pmr/pkg/integrity"
)

// nestedTree maps slash-separated names to contents of a tree with files at several depths.
var nestedTree = map[string]string{
	"a.txt":         "hello",
	"sub/b.bin":     "\x00\x01\x02",
	"sub/dir/c.csv": "pid,name\n1,init\n",
}

// writeTree creates the files fs below root.
func writeTree(t *testing.T, root string, fs map[string]string) {
	t.Helper()

	for name, data := range fs {
		path := filepath.Join(root, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// inTempDir changes the working directory to a new temporary directory for the duration of
// the test, so that relative paths written to output are stable.
func inTempDir(t *testing.T) {
	t.Helper()

	t.Chdir(t.TempDir())
}

// packArchive packs fs into the archive "MonitorFile.pmr" in the working directory.
func packArchive(t *testing.T, fs map[string]string, opts ...integrity.PackOpt) string {
	t.Helper()

	writeTree(t, "src", fs)

	if _, err := integrity.Pack("src", "MonitorFile.pmr", opts...); err != nil {
		t.Fatal(err)
	}
	return "MonitorFile.pmr"
}

// fixtureDir is the absolute path of the golden files, as tests change the working directory.
var fixtureDir = func() string {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	return dir
}()
