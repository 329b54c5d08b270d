// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagefactory

import (
	"fmt"

	"github.com/bureau-foundation/chatimage/lib/image"
)

// Builder accumulates image metadata field by field. Set the fields
// directly, then call Build. A Builder may be built any number of
// times; each call constructs an independent image from the current
// field values.
type Builder struct {
	ImageID string
	Size    int64
	Type    image.Type
	Width   int
	Height  int
	IsEmoji bool

	constructor *Constructor
}

// NewBuilder returns a Builder for id with all metadata unknown.
func (c *Constructor) NewBuilder(id string) *Builder {
	return &Builder{ImageID: id, constructor: c}
}

// Build constructs the image through CreateWith.
func (b *Builder) Build() (image.Image, error) {
	if b.constructor == nil {
		return nil, fmt.Errorf("imagefactory: Builder for %q was not created by Constructor.NewBuilder", b.ImageID)
	}
	return b.constructor.CreateWith(b.ImageID, image.Attributes{
		Size:    b.Size,
		Type:    b.Type,
		Width:   b.Width,
		Height:  b.Height,
		IsEmoji: b.IsEmoji,
	})
}
