// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bureau-foundation/chatimage/lib/imageid"
)

const (
	groupID  = "{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png"
	friendID = "/f8f1ab55-bf8e-4236-b55e-955848d7069f"
)

func TestNewImageDefaults(t *testing.T) {
	img, err := NewGroupImage(imageid.MustParse(groupID), Attributes{})
	if err != nil {
		t.Fatalf("NewGroupImage: %v", err)
	}
	if img.Kind() != KindGroup {
		t.Errorf("Kind() = %s, want group", img.Kind())
	}
	if img.Size() != 0 || img.Width() != 0 || img.Height() != 0 {
		t.Errorf("size/width/height = %d/%d/%d, want zeros", img.Size(), img.Width(), img.Height())
	}
	if img.Type() != TypeUnknown {
		t.Errorf("Type() = %s, want UNKNOWN", img.Type())
	}
	if img.IsEmoji() {
		t.Error("IsEmoji() = true, want false")
	}
	if img.MD5() != img.ID().Digest() {
		t.Errorf("MD5() = %s, want derived %s", img.MD5(), img.ID().Digest())
	}
}

func TestNewImageAttributes(t *testing.T) {
	override := imageid.Digest{0xde, 0xad, 0xbe, 0xef}
	img, err := NewFriendImage(imageid.MustParse(friendID), Attributes{
		Size:    1024,
		Type:    TypeJPG,
		Width:   640,
		Height:  480,
		IsEmoji: true,
		MD5:     &override,
	})
	if err != nil {
		t.Fatalf("NewFriendImage: %v", err)
	}
	if img.Kind() != KindFriend {
		t.Errorf("Kind() = %s, want friend", img.Kind())
	}
	if img.Size() != 1024 || img.Type() != TypeJPG || img.Width() != 640 || img.Height() != 480 || !img.IsEmoji() {
		t.Errorf("attributes not preserved: %+v", img.Attributes())
	}
	if img.MD5() != override {
		t.Errorf("MD5() = %s, want override %s", img.MD5(), override)
	}

	// The override pointer is copied, not retained.
	override[0] = 0
	if img.MD5()[0] != 0xde {
		t.Error("image shares the caller's MD5 override")
	}
}

func TestNewImageRejects(t *testing.T) {
	tests := []struct {
		name       string
		id         imageid.ID
		attributes Attributes
	}{
		{"zero identifier", imageid.ID{}, Attributes{}},
		{"negative size", imageid.MustParse(groupID), Attributes{Size: -1}},
		{"negative width", imageid.MustParse(groupID), Attributes{Width: -1}},
		{"negative height", imageid.MustParse(groupID), Attributes{Height: -5}},
		{"invalid type", imageid.MustParse(groupID), Attributes{Type: Type(99)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewGroupImage(test.id, test.attributes); err == nil {
				t.Error("NewGroupImage succeeded, want error")
			}
			if _, err := NewFriendImage(test.id, test.attributes); err == nil {
				t.Error("NewFriendImage succeeded, want error")
			}
		})
	}

	_, err := NewGroupImage(imageid.ID{}, Attributes{})
	if !errors.Is(err, imageid.ErrInvalidID) {
		t.Errorf("zero identifier: err = %v, want ErrInvalidID", err)
	}
}

func TestNew(t *testing.T) {
	id := imageid.MustParse(friendID)
	for _, kind := range []Kind{KindFriend, KindGroup} {
		img, err := New(kind, id, Attributes{})
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		if img.Kind() != kind {
			t.Errorf("New(%s).Kind() = %s", kind, img.Kind())
		}
	}
	if img, err := New(0, id, Attributes{}); err == nil || img != nil {
		t.Errorf("New(0) = %v, %v; want nil, error", img, err)
	}
	if img, err := New(KindGroup, id, Attributes{Size: -1}); err == nil || img != nil {
		t.Errorf("New with invalid attributes = %v, %v; want nil, error", img, err)
	}
}

func TestEqualityIgnoresMetadata(t *testing.T) {
	id := imageid.MustParse(groupID)
	plain, err := NewGroupImage(id, Attributes{})
	if err != nil {
		t.Fatal(err)
	}
	rich, err := NewGroupImage(id, Attributes{Size: 99, Type: TypeGIF, Width: 10, Height: 20, IsEmoji: true})
	if err != nil {
		t.Fatal(err)
	}
	friend, err := NewFriendImage(id, Attributes{Size: 7})
	if err != nil {
		t.Fatal(err)
	}

	for _, other := range []Image{rich, friend} {
		if !Equal(plain, other) {
			t.Errorf("Equal(%v, %v) = false", plain, other)
		}
		if plain.HashCode() != other.HashCode() {
			t.Errorf("HashCode differs: %d vs %d", plain.HashCode(), other.HashCode())
		}
	}

	different, err := NewGroupImage(imageid.MustParse("{01e9451b-70ed-eae3-b37c-101f1eebf5b5}.png"), Attributes{})
	if err != nil {
		t.Fatal(err)
	}
	if Equal(plain, different) {
		t.Error("images with different identifier strings compare equal")
	}

	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) = false")
	}
	if Equal(plain, nil) || Equal(nil, plain) {
		t.Error("Equal with one nil image = true")
	}
}

func TestVariantsNotComparable(t *testing.T) {
	// Two images with the same identifier but different metadata are
	// Equal; == must not be available to disagree.
	for _, variant := range []Image{GroupImage{}, FriendImage{}} {
		if reflect.TypeOf(variant).Comparable() {
			t.Errorf("%T is comparable", variant)
		}
	}
}

func TestHashCodeStable(t *testing.T) {
	a, _ := NewGroupImage(imageid.MustParse(groupID), Attributes{})
	b, _ := NewFriendImage(imageid.MustParse(friendID), Attributes{})
	if a.HashCode() == b.HashCode() {
		t.Error("distinct identifiers produced the same hash code")
	}
	if a.HashCode() != hashIdentifier(imageid.MustParse(groupID)) {
		t.Error("HashCode is not a function of the identifier")
	}
}

func TestDisplay(t *testing.T) {
	id := imageid.MustParse(groupID)
	img, _ := NewGroupImage(id, Attributes{Size: 10})
	emoji, _ := NewGroupImage(id, Attributes{IsEmoji: true})

	want := "[mirai:image:{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png]"
	if img.String() != want {
		t.Errorf("String() = %q, want %q", img.String(), want)
	}
	if emoji.String() != want {
		t.Errorf("emoji String() = %q, want %q", emoji.String(), want)
	}
	if got := string(img.AppendCode([]byte("see "))); got != "see "+want {
		t.Errorf("AppendCode = %q", got)
	}
	if img.Summary() != "[image]" {
		t.Errorf("Summary() = %q, want [image]", img.Summary())
	}
	if emoji.Summary() != "[animated emoji]" {
		t.Errorf("emoji Summary() = %q, want [animated emoji]", emoji.Summary())
	}
}
