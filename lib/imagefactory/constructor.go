// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagefactory is the entry point for building images from
// identifier strings. It validates the identifier, then delegates to
// whatever Factory the backend registered.
//
//	registry := imagebackend.NewRegistry()
//	offline.Install(registry)
//	images := imagefactory.New(imagebackend.NewCapabilities(registry, logger))
//	img, err := images.Create("{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png")
package imagefactory

import (
	"fmt"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// Constructor builds images through the backend's registered Factory.
// It is safe for concurrent use.
type Constructor struct {
	capabilities *imagebackend.Capabilities
}

// New returns a Constructor that resolves its Factory from
// capabilities on first use.
func New(capabilities *imagebackend.Capabilities) *Constructor {
	return &Constructor{capabilities: capabilities}
}

// Create builds an image with unknown metadata: size 0, TypeUnknown,
// 0x0, not an emoji.
func (c *Constructor) Create(id string) (image.Image, error) {
	return c.CreateWith(id, image.Attributes{})
}

// CreateWith builds an image with the given metadata. The identifier
// is validated before the backend is consulted, so an invalid string
// fails with imageid.ErrInvalidID even when no backend is registered.
func (c *Constructor) CreateWith(id string, attributes image.Attributes) (image.Image, error) {
	parsed, err := imageid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("imagefactory: %w", err)
	}
	return c.CreateFromID(parsed, attributes)
}

// CreateFromID is CreateWith for an identifier that has already been
// parsed.
func (c *Constructor) CreateFromID(id imageid.ID, attributes image.Attributes) (image.Image, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("imagefactory: %w: empty identifier", imageid.ErrInvalidID)
	}
	factory, err := c.capabilities.Factory()
	if err != nil {
		return nil, fmt.Errorf("imagefactory: %w", err)
	}
	img, err := factory.CreateImage(id, attributes)
	if err != nil {
		return nil, fmt.Errorf("imagefactory: creating %q: %w", id, err)
	}
	if img == nil {
		return nil, fmt.Errorf("imagefactory: backend factory %T returned no image for %q", factory, id)
	}
	return img, nil
}

// DecodeJSON rebuilds an image from either JSON wire form. Only the
// identifier travels, so the result carries unknown metadata.
func (c *Constructor) DecodeJSON(data []byte) (image.Image, error) {
	id, err := image.DecodeJSONID(data)
	if err != nil {
		return nil, fmt.Errorf("imagefactory: %w", err)
	}
	return c.CreateFromID(id, image.Attributes{})
}

// DecodeCBOR rebuilds an image from either CBOR wire form.
func (c *Constructor) DecodeCBOR(data []byte) (image.Image, error) {
	id, err := image.DecodeCBORID(data)
	if err != nil {
		return nil, fmt.Errorf("imagefactory: %w", err)
	}
	return c.CreateFromID(id, image.Attributes{})
}
