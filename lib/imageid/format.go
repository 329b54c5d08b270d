// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageid

import "regexp"

// Format identifies which identifier grammar a string satisfies.
type Format uint8

const (
	// FormatNone is returned for strings that match no grammar.
	FormatNone Format = iota

	// FormatGroupCustomFace is the group channel form: a braced,
	// hyphenated 32-hex digest followed by a 3-5 character extension.
	FormatGroupCustomFace

	// FormatFriendResource is the short private channel form: a
	// slash followed by a hyphenated 32-hex digest.
	FormatFriendResource

	// FormatFriendResourceLong is the long private channel form: a
	// slash, two decimal fields, then the 32-hex digest.
	FormatFriendResourceLong
)

var (
	groupCustomFacePattern = regexp.MustCompile(
		`^\{[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\}\..{3,5}$`)
	friendResourcePattern = regexp.MustCompile(
		`^/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	friendResourceLongPattern = regexp.MustCompile(
		`^/[0-9]*-[0-9]*-[0-9a-fA-F]{32}$`)
)

// Classify reports the grammar raw satisfies, or FormatNone. The
// check order (group, long friend, short friend) is fixed.
func Classify(raw string) Format {
	switch {
	case raw == "":
		return FormatNone
	case groupCustomFacePattern.MatchString(raw):
		return FormatGroupCustomFace
	case friendResourceLongPattern.MatchString(raw):
		return FormatFriendResourceLong
	case friendResourcePattern.MatchString(raw):
		return FormatFriendResource
	default:
		return FormatNone
	}
}

// Valid reports whether f names one of the three grammars.
func (f Format) Valid() bool {
	return f >= FormatGroupCustomFace && f <= FormatFriendResourceLong
}

func (f Format) String() string {
	switch f {
	case FormatGroupCustomFace:
		return "group-custom-face"
	case FormatFriendResource:
		return "friend-resource"
	case FormatFriendResourceLong:
		return "friend-resource-long"
	default:
		return "none"
	}
}
