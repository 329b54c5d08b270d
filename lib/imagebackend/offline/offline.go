// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package offline provides the grammar-driven image factory. It needs
// no server: the identifier format alone decides the variant. Group
// custom-face identifiers become GroupImage; both friend resource forms
// become FriendImage.
//
// The localstore and remote backends register this factory as their
// FactoryService. Install registers it on its own, for tools that only
// parse and display images.
package offline

import (
	"fmt"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// Factory implements imagebackend.Factory.
type Factory struct{}

// KindOf returns the variant an identifier maps to.
func KindOf(id imageid.ID) (image.Kind, error) {
	switch id.Format() {
	case imageid.FormatGroupCustomFace:
		return image.KindGroup, nil
	case imageid.FormatFriendResource, imageid.FormatFriendResourceLong:
		return image.KindFriend, nil
	default:
		return 0, fmt.Errorf("offline: %w: %q", imageid.ErrInvalidID, id)
	}
}

// CreateImage builds the variant selected by the identifier's format.
func (Factory) CreateImage(id imageid.ID, attributes image.Attributes) (image.Image, error) {
	kind, err := KindOf(id)
	if err != nil {
		return nil, err
	}
	return image.New(kind, id, attributes)
}

// Install registers Factory as the registry's FactoryService.
func Install(registry *imagebackend.Registry) error {
	return registry.Provide(imagebackend.FactoryService, imagebackend.Value(Factory{}))
}
