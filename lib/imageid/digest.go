// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidID is returned when a string matches none of the
	// identifier grammars.
	ErrInvalidID = errors.New("imageid: invalid image identifier")

	// ErrMalformedHash is returned when the hash segment of an
	// identifier is not 32 hex characters. Distinct from ErrInvalidID
	// so callers and tests can tell a grammar miss from a bad payload.
	ErrMalformedHash = errors.New("imageid: malformed hash payload")
)

// DigestSize is the length of an image content digest (MD5) in bytes.
const DigestSize = 16

// Digest is the MD5 content hash embedded in every image identifier.
type Digest [DigestSize]byte

// DeriveDigest extracts the MD5 embedded in an identifier. The rule
// depends on the grammar:
//
//	{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png   → braces and extension stripped
//	/000000000-3814297509-BFB7027B9354B8F8...   → everything after the second '-'
//	/f8f1ab55-bf8e-4236-b55e-955848d7069f       → leading '/' stripped
//
// Hyphens inside the digest are ignored and hex is case-insensitive.
func DeriveDigest(raw string) (Digest, error) {
	switch Classify(raw) {
	case FormatGroupCustomFace:
		// "{" + 36 characters + "}" is exactly the braced UUID form.
		return decodeHash(raw[:38])
	case FormatFriendResourceLong:
		rest := raw[strings.IndexByte(raw, '-')+1:]
		return decodeHash(rest[strings.IndexByte(rest, '-')+1:])
	case FormatFriendResource:
		return decodeHash(raw[1:])
	default:
		return Digest{}, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
}

// decodeHash decodes a hash segment into a Digest. Accepted forms are
// the 32-hex raw form, the hyphenated 8-4-4-4-12 form and the braced
// hyphenated form.
func decodeHash(segment string) (Digest, error) {
	parsed, err := uuid.Parse(segment)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %q: %v", ErrMalformedHash, segment, err)
	}
	return Digest(parsed), nil
}

// ParseDigest parses a 32-character hex string (either case) into a
// Digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	if len(decoded) != DigestSize {
		return digest, fmt.Errorf("%w: digest is %d bytes, want %d", ErrMalformedHash, len(decoded), DigestSize)
	}
	copy(digest[:], decoded)
	return digest, nil
}

// String returns the digest as 32 uppercase hex characters, the case
// group identifiers use.
func (d Digest) String() string {
	return strings.ToUpper(hex.EncodeToString(d[:]))
}

// IsZero reports whether every byte of the digest is zero.
func (d Digest) IsZero() bool { return d == Digest{} }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(data []byte) error {
	parsed, err := ParseDigest(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
