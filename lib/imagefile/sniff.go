// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagefile

import (
	"encoding/binary"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bureau-foundation/chatimage/lib/image"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Detect returns the image type of data from its leading bytes. PNG
// files carrying an animation control chunk before their first image
// data chunk are APNG. Anything unrecognized is TypeUnknown.
func Detect(data []byte) image.Type {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is("image/vnd.mozilla.apng"):
		return image.TypeAPNG
	case detected.Is("image/png"):
		// mimetype only looks for acTL directly after IHDR.
		if len(data) >= len(pngSignature) && isAnimatedPNG(data[len(pngSignature):]) {
			return image.TypeAPNG
		}
		return image.TypePNG
	case detected.Is("image/jpeg"):
		return image.TypeJPG
	case detected.Is("image/gif"):
		return image.TypeGIF
	case detected.Is("image/bmp") && hasBitmapHeader(data):
		return image.TypeBMP
	default:
		return image.TypeUnknown
	}
}

// isAnimatedPNG walks the chunk list looking for acTL ahead of IDAT.
// Each chunk is a 4-byte big-endian length, a 4-byte type, the data,
// and a 4-byte CRC. A truncated chunk list ends the walk.
func isAnimatedPNG(chunks []byte) bool {
	for len(chunks) >= 8 {
		length := binary.BigEndian.Uint32(chunks[:4])
		switch string(chunks[4:8]) {
		case "acTL":
			return true
		case "IDAT", "IEND":
			return false
		}
		next := uint64(length) + 12
		if next > uint64(len(chunks)) {
			return false
		}
		chunks = chunks[next:]
	}
	return false
}

// bitmapInfoSizes are the DIB header sizes Windows and OS/2 bitmaps
// declare, from BITMAPCOREHEADER (12) to BITMAPV5HEADER (124).
var bitmapInfoSizes = map[uint32]bool{12: true, 16: true, 40: true, 52: true, 56: true, 64: true, 108: true, 124: true}

// hasBitmapHeader reports whether data past the "BM" magic holds a
// plausible file header: a DIB header of a known size, and a declared
// file size that is either zero or covers both headers.
func hasBitmapHeader(data []byte) bool {
	const fileHeaderSize = 14
	if len(data) < fileHeaderSize+4 {
		return false
	}
	infoSize := binary.LittleEndian.Uint32(data[fileHeaderSize:])
	if !bitmapInfoSizes[infoSize] {
		return false
	}
	fileSize := binary.LittleEndian.Uint32(data[2:6])
	return fileSize == 0 || fileSize >= fileHeaderSize+infoSize
}
