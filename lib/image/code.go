// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/chatimage/lib/imageid"
)

const (
	codePrefix = "[mirai:image:"
	codeSuffix = "]"
)

// FormatCode returns the inline code form of an identifier:
//
//	[mirai:image:{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png]
func FormatCode(id imageid.ID) string {
	return codePrefix + id.String() + codeSuffix
}

// AppendCode appends the inline code form of id to dst.
func AppendCode(dst []byte, id imageid.ID) []byte {
	dst = append(dst, codePrefix...)
	dst = append(dst, id.String()...)
	return append(dst, codeSuffix...)
}

// ParseCode parses exactly one inline code element and returns its
// identifier. Surrounding text and escape sequences are not accepted;
// those belong to the message markup codec.
func ParseCode(code string) (imageid.ID, error) {
	if !strings.HasPrefix(code, codePrefix) || !strings.HasSuffix(code, codeSuffix) ||
		len(code) < len(codePrefix)+len(codeSuffix) {
		return imageid.ID{}, fmt.Errorf("image: %q is not an image code (want %s<id>%s)", code, codePrefix, codeSuffix)
	}
	raw := code[len(codePrefix) : len(code)-len(codeSuffix)]
	id, err := imageid.Parse(raw)
	if err != nil {
		return imageid.ID{}, fmt.Errorf("image: code %q: %w", code, err)
	}
	return id, nil
}
