// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagefile inspects local image files before upload: content
// digest, byte size, encoded type and pixel dimensions. The result
// feeds the presence check and identifier generation.
//
//	info, err := imagefile.Inspect("cat.png")
//	uploaded, err := presence.IsUploaded(ctx, imagepresence.Query{
//	    MD5: info.MD5, Size: info.Size, Type: info.Type,
//	    Width: info.Width, Height: info.Height, Channel: channel,
//	})
package imagefile

import (
	"bytes"
	"crypto/md5"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// MaxSize is the largest file Inspect reads. Chat servers reject
// images well below this.
const MaxSize = 64 << 20

// Info describes an image file's content.
type Info struct {
	MD5    imageid.Digest `json:"md5"`
	Size   int64          `json:"size"`
	Type   image.Type     `json:"type"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
}

// Inspect reads and describes the file at path.
func Inspect(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("imagefile: %w", err)
	}
	defer file.Close()

	info, err := InspectReader(file)
	if err != nil {
		return Info{}, fmt.Errorf("imagefile: %s: %w", path, err)
	}
	return info, nil
}

// InspectReader reads r to EOF and describes its content. Content of
// an unrecognized type yields TypeUnknown with zero dimensions rather
// than an error; a recognized type whose header does not decode is an
// error.
func InspectReader(r io.Reader) (Info, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return Info{}, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxSize {
		return Info{}, fmt.Errorf("image exceeds %d bytes", MaxSize)
	}
	if len(data) == 0 {
		return Info{}, fmt.Errorf("image is empty")
	}

	info := Info{
		MD5:  md5.Sum(data),
		Size: int64(len(data)),
		Type: Detect(data),
	}
	if info.Type == image.TypeUnknown {
		return info, nil
	}

	config, _, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("reading %s header: %w", info.Type, err)
	}
	info.Width = config.Width
	info.Height = config.Height
	return info, nil
}

// Attributes returns the image attributes described by info, with the
// content digest as an explicit MD5.
func (i Info) Attributes() image.Attributes {
	digest := i.MD5
	return image.Attributes{
		Size:   i.Size,
		Type:   i.Type,
		Width:  i.Width,
		Height: i.Height,
		MD5:    &digest,
	}
}

// GroupID returns the group custom-face identifier for this content,
// using the type's upload extension.
func (i Info) GroupID() (imageid.ID, error) {
	return imageid.GroupCustomFaceID(i.MD5, i.Type.FormatName())
}

// FriendID returns the friend resource identifier for this content.
func (i Info) FriendID() imageid.ID {
	return imageid.FriendResourceID(i.MD5)
}

// ID returns the identifier for kind.
func (i Info) ID(kind image.Kind) (imageid.ID, error) {
	switch kind {
	case image.KindGroup:
		return i.GroupID()
	case image.KindFriend:
		return i.FriendID(), nil
	default:
		return imageid.ID{}, fmt.Errorf("imagefile: no identifier form for kind %s", kind)
	}
}
