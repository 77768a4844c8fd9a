// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

/*
Package integrity implements functions to compute, embed, and verify the integrity signature of
a PMR archive.

The signature of a directory tree is derived in two steps. First, the tree is reduced to a
SummaryHash: every regular file contributes its canonical relative path (separators replaced by
a backslash, lowercased) followed by the MD5 digest of its contents, in ordinal order of
canonical path, and the whole sequence is digested with MD5. Second, the lowercase hex text of
the SummaryHash is encrypted with AES-256-CBC under a key derived from a fixed passphrase, with an
all-zero IV and PKCS#7 padding, and encoded as standard base64. These parameters are shared with
independent producers and must match them exactly.

Hash

To compute the SummaryHash of a directory:

	h, err := integrity.HashDirectory(dir)

To digest up to four files concurrently (the result does not change):

	h, err := integrity.HashDirectory(dir, integrity.OptHashConcurrency(4))

Pack

To create a PMR archive from a directory, embedding its signature:

	sig, err := integrity.Pack(dir, "MonitorFile.pmr")

Verify

To verify a PMR archive, create a Verifier:

	v, err := integrity.NewVerifier("MonitorFile.pmr")

By default, the archive is extracted to a private temporary directory that is removed once
verification completes. To extract to a persistent directory instead:

	v, err := integrity.NewVerifier("MonitorFile.pmr", integrity.OptVerifyExtractDir(dir))

Finally, to perform verification:

	r, err := v.Verify()

A non-nil error indicates verification could not be completed, and identifies the failed stage.
Otherwise, r.Outcome reports whether the archive contents match the embedded signature.
*/
package integrity
