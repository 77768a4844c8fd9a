// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import "fmt"

// Outcome is the result of a verification that ran to completion.
type Outcome int

const (
	// OutcomeVerified indicates the archive contents match the embedded signature.
	OutcomeVerified Outcome = iota + 1

	// OutcomeTampered indicates the archive contents do not match the embedded signature.
	OutcomeTampered
)

// String returns a human readable name of o.
func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "Verified"
	case OutcomeTampered:
		return "Tampered"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// VerifyResult describes the progress or result of verifying an archive. Fields are populated
// as the corresponding stages complete.
type VerifyResult struct {
	Archive    string             // Path of the archive.
	Dir        string             // Directory the archive was extracted to.
	Stored     EncryptedSignature // Signature read from the archive.
	Extracted  int                // Number of files extracted.
	Hash       SummaryHash        // Hash computed over the extracted files.
	Computed   EncryptedSignature // Encrypted form of Hash.
	StoredHash SummaryHash        // Decrypted Stored, if it could be decrypted and did not match.
	Outcome    Outcome            // Zero until the compare stage completes.
}

// Verified reports whether r records a completed verification with a matching signature.
func (r VerifyResult) Verified() bool {
	return r.Outcome == OutcomeVerified
}
