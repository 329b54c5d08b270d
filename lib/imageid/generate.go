// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imageid

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultExtension is the extension used for group identifiers when the
// caller does not know the image format.
const DefaultExtension = "mirai"

// GroupCustomFaceID builds the group channel identifier for content
// with the given digest:
//
//	{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png
//
// The digest is rendered in uppercase. An empty extension becomes
// DefaultExtension; otherwise it must be 3 to 5 characters.
func GroupCustomFaceID(digest Digest, extension string) (ID, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	length := utf8.RuneCountInString(extension)
	if length < 3 || length > 5 || strings.Contains(extension, "\n") {
		return ID{}, fmt.Errorf("imageid: extension %q must be 3 to 5 characters", extension)
	}
	raw := "{" + strings.ToUpper(uuid.UUID(digest).String()) + "}." + extension
	return ID{id: raw, format: FormatGroupCustomFace, digest: digest}, nil
}

// FriendResourceID builds the short private channel identifier for
// content with the given digest:
//
//	/f8f1ab55-bf8e-4236-b55e-955848d7069f
func FriendResourceID(digest Digest) ID {
	return ID{
		id:     "/" + uuid.UUID(digest).String(),
		format: FormatFriendResource,
		digest: digest,
	}
}
