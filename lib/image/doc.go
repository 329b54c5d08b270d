// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package image defines the chat image value types.
//
// An [Image] is either a [FriendImage] (private chat channel) or a
// [GroupImage] (group channel). Both carry the same contract: an
// identifier ([imageid.ID]), the MD5 derived from it unless a backend
// supplied one, and optional metadata (size, [Type], width, height,
// emoji flag) where zero means unknown. Which variant an identifier
// becomes is decided by the backend factory, not by this package.
//
// Identity is the identifier alone. [Equal] and Image.HashCode ignore
// every metadata field, so an image rebuilt from its identifier with no
// metadata still equals the original. Variants cannot be compared with
// ==; key maps by [imageid.ID] rather than by Image. Display is also identifier-only:
// String returns the inline code form [mirai:image:<id>] and Summary
// returns "[image]" or "[animated emoji]".
//
// Images serialize at the wire boundary as their identifier, either as
// a bare string (compact form) or as a one-field [Record]
// ({"imageId": ...}). Both forms are supported in JSON and CBOR; see
// [EncodeJSON], [EncodeCBOR], [DecodeJSONID] and [DecodeCBORID].
//
// All values in this package are immutable and safe to share between
// goroutines.
package image
