// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imageid implements the chat image identifier grammars and the
// content hash derivation built on them.
//
// An image identifier is the single source of truth for an image's
// identity. Exactly three textual grammars are accepted:
//
//   - [FormatGroupCustomFace]: {01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png
//   - [FormatFriendResource]: /f8f1ab55-bf8e-4236-b55e-955848d7069f
//   - [FormatFriendResourceLong]: /000000000-3814297509-BFB7027B9354B8F899A062061D74E206
//
// [Classify] reports which grammar a string satisfies. The grammars are
// disjoint: group custom faces start with '{', the short friend form
// carries four hyphens and the long friend form carries two. Matching
// still runs in a fixed order (group, long friend, short friend) so the
// result never depends on map or slice iteration.
//
// Every accepted identifier embeds the image's MD5. [DeriveDigest]
// extracts it without a network round trip. [GroupCustomFaceID] and
// [FriendResourceID] go the other way, producing an identifier for
// content that is about to be uploaded.
//
// [ID] is the validated, immutable value type. Like the Matrix ref
// types it serializes to its canonical string via
// encoding.TextMarshaler, so it can sit directly in JSON and CBOR
// structs.
//
// This package depends on no other chatimage packages.
package imageid
