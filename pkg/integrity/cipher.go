// Copyright (c) 2026, PMR Tools Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package integrity

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/blang/semver/v4"
)

// SchemeVersion is the version of the signature scheme implemented by this package.
var SchemeVersion = semver.MustParse("1.0.0")

// Scheme holds the fixed parameters of the signature cipher. These values are shared with the
// producer of PMR archives and must not change.
type Scheme struct {
	Passphrase string           // Key derivation input.
	IV         [16]byte         // CBC initialization vector.
	Encoding   *base64.Encoding // Text encoding of ciphertext.
}

// DefaultScheme is the scheme used by PMR producers: key SHA-256("cppuapa"), AES-256-CBC with an
// all-zero IV, PKCS#7 padding, standard base64.
var DefaultScheme = Scheme{
	Passphrase: "cppuapa",
	Encoding:   base64.StdEncoding,
}

var (
	errCiphertextLength = errors.New("ciphertext is not a positive multiple of the block size")
	errPaddingInvalid   = errors.New("padding invalid")
)

// EncryptedSignature is the base64 text of an encrypted SummaryHash, as stored in the comment of
// a PMR archive.
type EncryptedSignature string

// DeriveKey returns the AES-256 key of the default scheme.
func DeriveKey() [32]byte {
	return DefaultScheme.DeriveKey()
}

// DeriveKey returns the SHA-256 digest of the scheme passphrase.
func (s Scheme) DeriveKey() [32]byte {
	return sha256.Sum256([]byte(s.Passphrase))
}

// EncryptHash encrypts h using the default scheme.
func EncryptHash(h SummaryHash) (EncryptedSignature, error) {
	return DefaultScheme.Encrypt(h)
}

// DecryptSignature decrypts sig using the default scheme.
func DecryptSignature(sig EncryptedSignature) (SummaryHash, error) {
	return DefaultScheme.Decrypt(sig)
}

// newBlock returns the block cipher keyed for s.
func (s Scheme) newBlock() (cipher.Block, error) {
	key := s.DeriveKey()
	return aes.NewCipher(key[:])
}

// pad appends PKCS#7 padding to b.
func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// unpad removes and validates PKCS#7 padding from b.
func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errCiphertextLength
	}

	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, errPaddingInvalid
	}

	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errPaddingInvalid
		}
	}

	return b[:len(b)-n], nil
}

// Encrypt encrypts the UTF-8 text of h, and returns the encoded ciphertext.
//
// If encryption fails, a CipherError is returned.
func (s Scheme) Encrypt(h SummaryHash) (EncryptedSignature, error) {
	b, err := s.newBlock()
	if err != nil {
		return "", &StageError{Stage: StageEncrypt, Err: err}
	}

	buf := pad([]byte(h), b.BlockSize())
	cipher.NewCBCEncrypter(b, s.IV[:]).CryptBlocks(buf, buf)

	return EncryptedSignature(s.Encoding.EncodeToString(buf)), nil
}

// Decrypt decodes and decrypts sig, and returns the plaintext hash.
//
// If sig is not valid ciphertext for s, a CipherError is returned.
func (s Scheme) Decrypt(sig EncryptedSignature) (SummaryHash, error) {
	b, err := s.newBlock()
	if err != nil {
		return "", &StageError{Stage: StageEncrypt, Err: err}
	}

	buf, err := s.Encoding.DecodeString(string(sig))
	if err != nil {
		return "", &StageError{Stage: StageEncrypt, Err: fmt.Errorf("while decoding signature: %w", err)}
	}

	if len(buf) == 0 || len(buf)%b.BlockSize() != 0 {
		return "", &StageError{Stage: StageEncrypt, Err: errCiphertextLength}
	}

	cipher.NewCBCDecrypter(b, s.IV[:]).CryptBlocks(buf, buf)

	pt, err := unpad(buf, b.BlockSize())
	if err != nil {
		return "", &StageError{Stage: StageEncrypt, Err: err}
	}

	return SummaryHash(pt), nil
}
