// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"os"
	"path/filepath"
	"testing"
)

// testFile describes a file in a test tree.
type testFile struct {
	name string // Slash-separated path relative to the tree root.
	data string
}

// nestedTree is a tree with files at several depths.
var nestedTree = []testFile{
	{"a.txt", "hello"},
	{"sub/b.bin", "\x00\x01\x02"},
	{"sub/dir/c.csv", "pid,name\n1,init\n"},
}

// writeTree creates the files fs below root, in order.
func writeTree(t *testing.T, root string, fs []testFile) {
	t.Helper()

	for _, f := range fs {
		path := filepath.Join(root, filepath.FromSlash(f.name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(f.data), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// makeTree returns a temporary directory containing fs.
func makeTree(t *testing.T, fs []testFile) string {
	t.Helper()

	dir := t.TempDir()
	writeTree(t, dir, fs)
	return dir
}

// caseSensitive reports whether names differing only in case refer to distinct files in the
// temporary directory.
func caseSensitive(t *testing.T) bool {
	t.Helper()

	dir := makeTree(t, []testFile{{"a", "1"}, {"A", "2"}})

	es, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(es) == 2
}
