// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageid

import "fmt"

// ID is a validated image identifier. Two IDs name the same image if
// and only if their strings are equal; no normalization is applied.
//
// ID is an immutable value type and is comparable, so it can be used
// directly as a map key. The zero value is not valid; use IsZero to
// check.
type ID struct {
	id     string
	format Format
	digest Digest
}

// Parse validates raw against the identifier grammars and derives its
// digest. Returns an error wrapping ErrInvalidID when no grammar
// matches and ErrMalformedHash when the digest segment does not decode.
func Parse(raw string) (ID, error) {
	format := Classify(raw)
	if format == FormatNone {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	digest, err := DeriveDigest(raw)
	if err != nil {
		return ID{}, err
	}
	return ID{id: raw, format: format, digest: digest}, nil
}

// MustParse is like Parse but panics on error. Use in tests and static
// initialization where the input is known-valid.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("imageid.MustParse(%q): %v", raw, err))
	}
	return id
}

// String returns the identifier exactly as it was parsed.
func (i ID) String() string { return i.id }

// IsZero reports whether the ID is the zero value (uninitialized).
func (i ID) IsZero() bool { return i.id == "" }

// Format returns the grammar the identifier satisfies.
func (i ID) Format() Format { return i.format }

// Digest returns the MD5 embedded in the identifier.
func (i ID) Digest() Digest { return i.digest }

// MarshalText implements encoding.TextMarshaler. The zero value
// marshals to empty text.
func (i ID) MarshalText() ([]byte, error) {
	if i.id == "" {
		return nil, nil
	}
	return []byte(i.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input
// produces the zero value.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = ID{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
