// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// Image is the contract shared by FriendImage and GroupImage.
type Image interface {
	// ID returns the identifier, the image's sole identity key.
	ID() imageid.ID

	// Kind reports which channel variant the backend assigned.
	Kind() Kind

	// MD5 returns the content digest: the backend-supplied value if
	// there was one, otherwise the digest derived from ID.
	MD5() imageid.Digest

	// Size is the encoded size in bytes, 0 if unknown.
	Size() int64

	// Type is the encoded format, TypeUnknown if unknown.
	Type() Type

	// Width and Height are pixel dimensions, 0 if unknown.
	Width() int
	Height() int

	// IsEmoji reports whether the image is an animated emoji.
	IsEmoji() bool

	// String returns the inline code form [mirai:image:<id>].
	String() string

	// Summary returns a short human-readable description.
	Summary() string

	// AppendCode appends the inline code form to dst.
	AppendCode(dst []byte) []byte

	// HashCode returns a hash of the identifier. Images that are Equal
	// have equal hash codes; the value is stable across processes.
	HashCode() uint64
}

// Attributes is the metadata an image is constructed with. Zero values
// mean unknown.
type Attributes struct {
	Size    int64
	Type    Type
	Width   int
	Height  int
	IsEmoji bool

	// MD5 overrides the digest derived from the identifier when
	// non-nil. Backends set it when the server reported a digest.
	MD5 *imageid.Digest
}

func (a Attributes) validate() error {
	if a.Size < 0 {
		return fmt.Errorf("image: negative size %d", a.Size)
	}
	if a.Width < 0 || a.Height < 0 {
		return fmt.Errorf("image: negative dimensions %dx%d", a.Width, a.Height)
	}
	if int(a.Type) >= len(typeNames) {
		return fmt.Errorf("image: invalid type %d", uint8(a.Type))
	}
	return nil
}

// common holds the state and behaviour both variants share. The
// zero-length func array makes variants non-comparable: == would
// compare metadata, and identity is the identifier alone.
type common struct {
	_ [0]func()

	id      imageid.ID
	digest  imageid.Digest
	size    int64
	typ     Type
	width   int
	height  int
	isEmoji bool
}

func newCommon(id imageid.ID, attributes Attributes) (common, error) {
	if id.IsZero() {
		return common{}, fmt.Errorf("image: %w: empty identifier", imageid.ErrInvalidID)
	}
	if err := attributes.validate(); err != nil {
		return common{}, err
	}
	digest := id.Digest()
	if attributes.MD5 != nil {
		digest = *attributes.MD5
	}
	return common{
		id:      id,
		digest:  digest,
		size:    attributes.Size,
		typ:     attributes.Type,
		width:   attributes.Width,
		height:  attributes.Height,
		isEmoji: attributes.IsEmoji,
	}, nil
}

func (c common) ID() imageid.ID { return c.id }
func (c common) MD5() imageid.Digest { return c.digest }
func (c common) Size() int64 { return c.size }
func (c common) Type() Type { return c.typ }
func (c common) Width() int { return c.width }
func (c common) Height() int { return c.height }
func (c common) IsEmoji() bool { return c.isEmoji }
func (c common) String() string { return FormatCode(c.id) }
func (c common) HashCode() uint64 { return hashIdentifier(c.id) }
func (c common) AppendCode(dst []byte) []byte { return AppendCode(dst, c.id) }

func (c common) Summary() string {
	if c.isEmoji {
		return "[animated emoji]"
	}
	return "[image]"
}

// Attributes returns the metadata the image was built with. MD5 is
// always set.
func (c common) Attributes() Attributes {
	digest := c.digest
	return Attributes{
		Size:    c.size,
		Type:    c.typ,
		Width:   c.width,
		Height:  c.height,
		IsEmoji: c.isEmoji,
		MD5:     &digest,
	}
}

// MarshalText implements encoding.TextMarshaler with the compact wire
// form: the identifier string.
func (c common) MarshalText() ([]byte, error) {
	return c.id.MarshalText()
}

// FriendImage is an image sent or received in a private chat.
type FriendImage struct{ common }

// NewFriendImage builds a FriendImage. The identifier must be non-zero
// and sizes non-negative.
func NewFriendImage(id imageid.ID, attributes Attributes) (FriendImage, error) {
	c, err := newCommon(id, attributes)
	if err != nil {
		return FriendImage{}, err
	}
	return FriendImage{c}, nil
}

// Kind returns KindFriend.
func (FriendImage) Kind() Kind { return KindFriend }

// GroupImage is an image sent or received in a group chat.
type GroupImage struct{ common }

// NewGroupImage builds a GroupImage. The identifier must be non-zero
// and sizes non-negative.
func NewGroupImage(id imageid.ID, attributes Attributes) (GroupImage, error) {
	c, err := newCommon(id, attributes)
	if err != nil {
		return GroupImage{}, err
	}
	return GroupImage{c}, nil
}

// Kind returns KindGroup.
func (GroupImage) Kind() Kind { return KindGroup }

// New builds the variant named by kind.
func New(kind Kind, id imageid.ID, attributes Attributes) (Image, error) {
	var (
		built Image
		err   error
	)
	switch kind {
	case KindFriend:
		built, err = NewFriendImage(id, attributes)
	case KindGroup:
		built, err = NewGroupImage(id, attributes)
	default:
		return nil, fmt.Errorf("image: cannot build image of kind %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return built, nil
}

// Equal reports whether a and b name the same image. Only identifiers
// are compared; metadata and variant do not participate. Two nil
// images are equal.
func Equal(a, b Image) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func hashIdentifier(id imageid.ID) uint64 {
	sum := blake3.Sum256([]byte(id.String()))
	return binary.BigEndian.Uint64(sum[:8])
}

var (
	_ Image = FriendImage{}
	_ Image = GroupImage{}
)
