// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagebackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// ErrNoBackend is returned when a capability has no registered
// provider. It is a configuration failure: Capabilities caches it and
// never retries.
var ErrNoBackend = errors.New("imagebackend: no backend registered")

// ErrNoSession is returned by operations that need an authenticated
// session when none is active.
var ErrNoSession = errors.New("imagebackend: no active session")

// Factory builds images. The identifier has already been validated;
// the factory picks the variant and applies the attributes.
type Factory interface {
	CreateImage(id imageid.ID, attributes image.Attributes) (image.Image, error)
}

// Protocol checks server-side upload presence.
type Protocol interface {
	// IsUploaded reports whether the server already holds content
	// matching query, as seen by session. A size of 0 means unknown and
	// backends may answer false without a round trip.
	IsUploaded(ctx context.Context, session Session, query UploadQuery) (bool, error)
}

// URLResolver resolves download URLs.
type URLResolver interface {
	QueryURL(ctx context.Context, session Session, img image.Image) (string, error)
}

// UploadQuery describes content whose presence is being checked.
type UploadQuery struct {
	MD5     imageid.Digest
	Size    int64
	Type    image.Type
	Width   int
	Height  int
	Channel Channel
}

// Channel identifies a friend or group conversation. The zero value
// means the query carries no channel context.
type Channel struct {
	Kind image.Kind `json:"kind,omitempty"`
	ID   string     `json:"id,omitempty"`
}

// IsZero reports whether c carries no channel context.
func (c Channel) IsZero() bool { return c.Kind == 0 && c.ID == "" }

// Validate checks that a non-zero channel names both a kind and an ID.
func (c Channel) Validate() error {
	if c.IsZero() {
		return nil
	}
	if c.Kind != image.KindFriend && c.Kind != image.KindGroup {
		return fmt.Errorf("imagebackend: channel %q has invalid kind %s", c.ID, c.Kind)
	}
	if c.ID == "" {
		return fmt.Errorf("imagebackend: %s channel is missing an ID", c.Kind)
	}
	return nil
}

// String returns "kind:id", or "" for the zero channel.
func (c Channel) String() string {
	if c.IsZero() {
		return ""
	}
	return c.Kind.String() + ":" + c.ID
}
