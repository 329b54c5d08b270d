// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// ImageFormat names an encoding EncodeImage can produce.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	JPEG ImageFormat = "jpg"
	GIF  ImageFormat = "gif"
	BMP  ImageFormat = "bmp"
)

var imagingFormats = map[ImageFormat]imaging.Format{
	PNG:  imaging.PNG,
	JPEG: imaging.JPEG,
	GIF:  imaging.GIF,
	BMP:  imaging.BMP,
}

// EncodeImage returns a width x height image filled with fill and
// encoded as format.
func EncodeImage(t testing.TB, format ImageFormat, width, height int, fill color.Color) []byte {
	t.Helper()
	target, ok := imagingFormats[format]
	if !ok {
		t.Fatalf("unsupported fixture format %q", format)
	}
	var buffer bytes.Buffer
	if err := imaging.Encode(&buffer, imaging.New(width, height, fill), target); err != nil {
		t.Fatalf("encoding %dx%d %s fixture: %v", width, height, format, err)
	}
	return buffer.Bytes()
}

// WriteImage writes data to name inside a fresh temporary directory
// and returns the full path.
func WriteImage(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// AnimatedPNG turns a PNG into an APNG header by inserting an acTL
// chunk (one frame, infinite loop) directly after IHDR. The frame
// control chunks are omitted: the result is only meant for type
// detection and header decoding.
func AnimatedPNG(t testing.TB, pngData []byte) []byte {
	t.Helper()
	const signatureLength = 8
	const ihdrLength = 8 + 13 + 4
	if len(pngData) < signatureLength+ihdrLength || string(pngData[12:16]) != "IHDR" {
		t.Fatalf("AnimatedPNG: input is not a PNG starting with IHDR")
	}

	var payload [8]byte
	binary.BigEndian.PutUint32(payload[0:4], 1) // num_frames
	binary.BigEndian.PutUint32(payload[4:8], 0) // num_plays

	var chunk bytes.Buffer
	_ = binary.Write(&chunk, binary.BigEndian, uint32(len(payload)))
	chunk.WriteString("acTL")
	chunk.Write(payload[:])
	crc := crc32.NewIEEE()
	crc.Write([]byte("acTL"))
	crc.Write(payload[:])
	_ = binary.Write(&chunk, binary.BigEndian, crc.Sum32())

	split := signatureLength + ihdrLength
	result := make([]byte, 0, len(pngData)+chunk.Len())
	result = append(result, pngData[:split]...)
	result = append(result, chunk.Bytes()...)
	return append(result, pngData[split:]...)
}
