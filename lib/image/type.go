// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"fmt"
	"strings"
)

// Type is the encoded image format. The zero value is TypeUnknown.
type Type uint8

const (
	TypeUnknown Type = iota
	TypePNG
	TypeBMP
	TypeJPG
	TypeGIF
	TypeAPNG
)

var typeNames = [...]string{
	TypeUnknown: "UNKNOWN",
	TypePNG:     "PNG",
	TypeBMP:     "BMP",
	TypeJPG:     "JPG",
	TypeGIF:     "GIF",
	TypeAPNG:    "APNG",
}

// formatNames are the file extensions servers expect for each type.
// APNG travels as png. Unknown images are sent as gif, which every
// client renders.
var formatNames = [...]string{
	TypeUnknown: "gif",
	TypePNG:     "png",
	TypeBMP:     "bmp",
	TypeJPG:     "jpg",
	TypeGIF:     "gif",
	TypeAPNG:    "png",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// FormatName returns the file extension used when uploading an image
// of this type.
func (t Type) FormatName() string {
	if int(t) < len(formatNames) {
		return formatNames[t]
	}
	return formatNames[TypeUnknown]
}

// MatchType returns the Type whose name equals s, ignoring case, or
// TypeUnknown.
func MatchType(s string) Type {
	t, _ := MatchTypeOK(s)
	return t
}

// MatchTypeOK is like MatchType but also reports whether s named a
// type. "unknown" is a match.
func MatchTypeOK(s string) (Type, bool) {
	for t, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(t), true
		}
	}
	return TypeUnknown, false
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("image: invalid type %d", uint8(t))
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized
// names are an error rather than TypeUnknown so typos in stored data
// surface.
func (t *Type) UnmarshalText(data []byte) error {
	parsed, ok := MatchTypeOK(string(data))
	if !ok {
		return fmt.Errorf("image: unknown type %q", data)
	}
	*t = parsed
	return nil
}
