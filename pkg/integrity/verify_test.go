// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pmrtools/pmr/pkg/pmr"
)

// mockArchive is an Archive whose extraction writes a fixed tree.
type mockArchive struct {
	comment string
	files   []testFile
	err     error
}

func (a mockArchive) Comment() string { return a.comment }

func (a mockArchive) Extract(dir string) (int, error) {
	if a.err != nil {
		return 0, a.err
	}

	for _, f := range a.files {
		path := filepath.Join(dir, filepath.FromSlash(f.name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, err
		}

		if err := os.WriteFile(path, []byte(f.data), 0o644); err != nil {
			return 0, err
		}
	}
	return len(a.files), nil
}

func (a mockArchive) Close() error { return nil }

// mockOpener returns an OpenFunc that opens a, or fails with err.
func mockOpener(a Archive, err error) OpenFunc {
	return func(string) (Archive, error) {
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// packTree packs fs into a new archive, and returns its path.
func packTree(t *testing.T, fs []testFile, opts ...PackOpt) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "MonitorFile"+pmr.Extension)

	if _, err := Pack(makeTree(t, fs), path, opts...); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewVerifier(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		opts      []VerifyOpt
		wantError error
	}{
		{
			name:      "NoPath",
			wantError: errNoArchivePath,
		},
		{
			name: "Defaults",
			path: "MonitorFile.pmr",
		},
		{
			name:      "BadHashOpt",
			path:      "MonitorFile.pmr",
			opts:      []VerifyOpt{OptVerifyHashOpts(OptHashPattern("["))},
			wantError: filepath.ErrBadPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(tt.path, tt.opts...)
			if got, want := err, tt.wantError; !errors.Is(got, want) {
				t.Fatalf("got error %v, want %v", got, want)
			}

			if err == nil && v.opts.scheme != DefaultScheme {
				t.Errorf("got scheme %v, want default", v.opts.scheme)
			}
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	tests := []struct {
		name           string
		files          []testFile
		opts           []PackOpt
		wantOutcome    Outcome
		wantHash       SummaryHash
		wantStoredHash SummaryHash
	}{
		{
			name:        "Empty",
			wantOutcome: OutcomeVerified,
			wantHash:    EmptyTreeHash,
		},
		{
			name:        "SingleFile",
			files:       []testFile{{"a.txt", "hello"}},
			wantOutcome: OutcomeVerified,
			wantHash:    "26b24a2731213bffd120fd2b1357024a",
		},
		{
			name:        "Nested",
			files:       nestedTree,
			wantOutcome: OutcomeVerified,
			wantHash:    "3f92854a63618ef4e5b97e1713281d86",
		},
		{
			name:        "Pattern",
			files:       append([]testFile{{"ProcessLog_1.csv", "1,init\n"}}, nestedTree...),
			opts:        []PackOpt{OptPackHashOpts(OptHashPattern("ProcessLog_*.csv"))},
			wantOutcome: OutcomeVerified,
			wantHash:    "a40346b63a2251e1c301f3913355e140",
		},
		{
			name:  "SignatureOfOtherTree",
			files: nestedTree,
			opts: []PackOpt{
				OptPackSignature("vbaBYdXvv28+9gZj1PJE0fVQxfXURg01sHUC8/j2LeveGCtrFv/MhhVhV4MfaOam"),
			},
			wantOutcome:    OutcomeTampered,
			wantHash:       "3f92854a63618ef4e5b97e1713281d86",
			wantStoredHash: "26b24a2731213bffd120fd2b1357024a",
		},
		{
			name:        "SignatureGarbage",
			files:       nestedTree,
			opts:        []PackOpt{OptPackSignature("not a signature")},
			wantOutcome: OutcomeTampered,
			wantHash:    "3f92854a63618ef4e5b97e1713281d86",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := packTree(t, tt.files, tt.opts...)

			v, err := NewVerifier(path, OptVerifyTempDir(t.TempDir()))
			if err != nil {
				t.Fatal(err)
			}

			r, err := v.Verify()
			if err != nil {
				t.Fatal(err)
			}

			if got, want := r.Outcome, tt.wantOutcome; got != want {
				t.Errorf("got outcome %v, want %v", got, want)
			}

			if got, want := r.Verified(), tt.wantOutcome == OutcomeVerified; got != want {
				t.Errorf("got verified %v, want %v", got, want)
			}

			if got, want := r.Hash, tt.wantHash; got != want {
				t.Errorf("got hash %v, want %v", got, want)
			}

			if got, want := r.StoredHash, tt.wantStoredHash; got != want {
				t.Errorf("got stored hash %v, want %v", got, want)
			}

			if r.Outcome == OutcomeVerified && r.Computed != r.Stored {
				t.Errorf("verified with computed %v, stored %v", r.Computed, r.Stored)
			}
		})
	}
}

func TestVerifier_Verify_Tampered(t *testing.T) {
	tests := []struct {
		name  string
		files []testFile
	}{
		{
			name:  "ByteChanged",
			files: []testFile{nestedTree[0], {"sub/b.bin", "\x00\x01\x03"}, nestedTree[2]},
		},
		{
			name:  "FileRemoved",
			files: nestedTree[:2],
		},
		{
			name:  "FileAdded",
			files: append([]testFile{{"extra", ""}}, nestedTree...),
		},
		{
			name:  "FileRenamed",
			files: []testFile{{"b.txt", "hello"}, nestedTree[1], nestedTree[2]},
		},
	}

	sig, err := EncryptHash("3f92854a63618ef4e5b97e1713281d86")
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := packTree(t, tt.files, OptPackSignature(sig))

			v, err := NewVerifier(path, OptVerifyTempDir(t.TempDir()))
			if err != nil {
				t.Fatal(err)
			}

			r, err := v.Verify()
			if err != nil {
				t.Fatal(err)
			}

			if got, want := r.Outcome, OutcomeTampered; got != want {
				t.Errorf("got outcome %v, want %v", got, want)
			}

			if got, want := r.StoredHash, SummaryHash("3f92854a63618ef4e5b97e1713281d86"); got != want {
				t.Errorf("got stored hash %v, want %v", got, want)
			}
		})
	}
}

func TestVerifier_Verify_Errors(t *testing.T) {
	noComment := filepath.Join(t.TempDir(), "NoComment.pmr")
	if err := pmr.Create(noComment, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		path      string
		opts      []VerifyOpt
		wantError error
		wantStage Stage
	}{
		{
			name:      "ArchiveMissing",
			path:      filepath.Join(t.TempDir(), "missing.pmr"),
			wantError: ErrArchiveRead,
			wantStage: StageReadSignature,
		},
		{
			name:      "SignatureMissing",
			path:      noComment,
			wantError: errSignatureMissing,
			wantStage: StageReadSignature,
		},
		{
			name: "OpenError",
			path: "MonitorFile.pmr",
			opts: []VerifyOpt{
				OptVerifyOpener(mockOpener(nil, io.ErrUnexpectedEOF)),
			},
			wantError: io.ErrUnexpectedEOF,
			wantStage: StageReadSignature,
		},
		{
			name: "ExtractError",
			path: "MonitorFile.pmr",
			opts: []VerifyOpt{
				OptVerifyOpener(mockOpener(mockArchive{comment: "sig", err: io.ErrUnexpectedEOF}, nil)),
			},
			wantError: io.ErrUnexpectedEOF,
			wantStage: StageExtract,
		},
		{
			name: "ExtractDirUnusable",
			path: "MonitorFile.pmr",
			opts: []VerifyOpt{
				OptVerifyOpener(mockOpener(mockArchive{comment: "sig"}, nil)),
				OptVerifyTempDir(filepath.Join(t.TempDir(), "missing")),
			},
			wantError: ErrExtraction,
			wantStage: StageExtract,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewVerifier(tt.path, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}

			r, err := v.Verify()
			if got, want := err, tt.wantError; !errors.Is(got, want) {
				t.Fatalf("got error %v, want %v", got, want)
			}

			var se *StageError
			if !errors.As(err, &se) {
				t.Fatalf("got error %T, want *StageError", err)
			}

			if got, want := se.Stage, tt.wantStage; got != want {
				t.Errorf("got stage %v, want %v", got, want)
			}

			if r.Outcome != 0 {
				t.Errorf("got outcome %v for incomplete verification", r.Outcome)
			}
		})
	}
}

func TestVerifier_Verify_HashError(t *testing.T) {
	if !caseSensitive(t) {
		t.Skip("filesystem is not case-sensitive")
	}

	a := mockArchive{
		comment: "sig",
		files:   []testFile{{"a.txt", "1"}, {"A.txt", "2"}},
	}

	v, err := NewVerifier("MonitorFile.pmr",
		OptVerifyOpener(mockOpener(a, nil)),
		OptVerifyTempDir(t.TempDir()),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Verify(); !errors.Is(err, errDuplicatePath) {
		t.Errorf("got error %v, want %v", err, errDuplicatePath)
	} else if !errors.Is(err, ErrHashComputation) {
		t.Errorf("got error %v, want %v", err, ErrHashComputation)
	}
}

func TestVerifier_Verify_TempDir(t *testing.T) {
	path := packTree(t, nestedTree)
	tmp := t.TempDir()

	var dirExisted bool
	cb := func(s Stage, r VerifyResult) {
		if s == StageExtract {
			_, err := os.Stat(filepath.Join(r.Dir, "sub", "dir", "c.csv"))
			dirExisted = err == nil
		}
	}

	v, err := NewVerifier(path, OptVerifyTempDir(tmp), OptVerifyCallback(cb))
	if err != nil {
		t.Fatal(err)
	}

	r, err := v.Verify()
	if err != nil {
		t.Fatal(err)
	}

	if !dirExisted {
		t.Error("extracted files not present during verification")
	}

	if got, want := filepath.Dir(r.Dir), tmp; got != want {
		t.Errorf("got extraction parent %v, want %v", got, want)
	}

	if _, err := os.Stat(r.Dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary directory not removed: %v", err)
	}

	es, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(es), 0; got != want {
		t.Errorf("got %v entries in temporary root, want %v", got, want)
	}
}

func TestVerifier_Verify_ExtractDir(t *testing.T) {
	path := packTree(t, nestedTree)
	dir := filepath.Join(t.TempDir(), "out")

	v, err := NewVerifier(path, OptVerifyExtractDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	r, err := v.Verify()
	if err != nil {
		t.Fatal(err)
	}

	if got, want := r.Dir, dir; got != want {
		t.Errorf("got directory %v, want %v", got, want)
	}

	if got, want := r.Extracted, len(nestedTree); got != want {
		t.Errorf("got %v files extracted, want %v", got, want)
	}

	for _, f := range nestedTree {
		b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.name)))
		if err != nil {
			t.Fatal(err)
		}

		if got, want := string(b), f.data; got != want {
			t.Errorf("%v: got %q, want %q", f.name, got, want)
		}
	}
}

func TestVerifier_Verify_Callback(t *testing.T) {
	tests := []struct {
		name       string
		opts       []PackOpt
		wantStages []Stage
	}{
		{
			name: "Verified",
			wantStages: []Stage{
				StageReadSignature,
				StageExtract,
				StageComputeHash,
				StageEncrypt,
				StageCompare,
				StageDone,
			},
		},
		{
			name: "Tampered",
			opts: []PackOpt{OptPackSignature("bm90IGEgc2lnbmF0dXJl")},
			wantStages: []Stage{
				StageReadSignature,
				StageExtract,
				StageComputeHash,
				StageEncrypt,
				StageCompare,
				StageDone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := packTree(t, nestedTree, tt.opts...)

			var stages []Stage
			var last VerifyResult
			cb := func(s Stage, r VerifyResult) {
				stages = append(stages, s)
				last = r
			}

			v, err := NewVerifier(path, OptVerifyCallback(cb), OptVerifyTempDir(t.TempDir()))
			if err != nil {
				t.Fatal(err)
			}

			r, err := v.Verify()
			if err != nil {
				t.Fatal(err)
			}

			if got, want := stages, tt.wantStages; !reflect.DeepEqual(got, want) {
				t.Errorf("got stages %v, want %v", got, want)
			}

			if got, want := last, r; got != want {
				t.Errorf("got final callback result %+v, want %+v", got, want)
			}
		})
	}
}

func TestVerifier_Verify_CallbackStopsOnError(t *testing.T) {
	var stages []Stage
	cb := func(s Stage, _ VerifyResult) { stages = append(stages, s) }

	v, err := NewVerifier("MonitorFile.pmr",
		OptVerifyOpener(mockOpener(mockArchive{comment: "sig", err: io.ErrUnexpectedEOF}, nil)),
		OptVerifyCallback(cb),
		OptVerifyTempDir(t.TempDir()),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Verify(); err == nil {
		t.Fatal("got nil error")
	}

	if got, want := stages, []Stage{StageReadSignature}; !reflect.DeepEqual(got, want) {
		t.Errorf("got stages %v, want %v", got, want)
	}
}
