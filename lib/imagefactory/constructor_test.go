// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagefactory

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/offline"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

const (
	groupID  = "{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png"
	friendID = "/f8f1ab55-bf8e-4236-b55e-955848d7069f"
)

// countingFactory records how often the backend was asked to build an
// image and delegates to the offline factory.
type countingFactory struct {
	calls atomic.Int32
	err   error
}

func (f *countingFactory) CreateImage(id imageid.ID, attributes image.Attributes) (image.Image, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return offline.Factory{}.CreateImage(id, attributes)
}

func newConstructor(t *testing.T, factory imagebackend.Factory) *Constructor {
	t.Helper()
	registry := imagebackend.NewRegistry()
	if err := registry.Provide(imagebackend.FactoryService, imagebackend.Value(factory)); err != nil {
		t.Fatal(err)
	}
	return New(imagebackend.NewCapabilities(registry, nil))
}

func TestCreate(t *testing.T) {
	factory := &countingFactory{}
	constructor := newConstructor(t, factory)

	img, err := constructor.Create(groupID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if img.ID().String() != groupID || img.Kind() != image.KindGroup {
		t.Errorf("Create(%q) = %v (%s)", groupID, img, img.Kind())
	}
	if img.Size() != 0 || img.Type() != image.TypeUnknown || img.Width() != 0 || img.Height() != 0 || img.IsEmoji() {
		t.Errorf("Create did not default metadata: %+v", img)
	}
	if factory.calls.Load() != 1 {
		t.Errorf("factory called %d times, want 1", factory.calls.Load())
	}
}

func TestCreateWith(t *testing.T) {
	constructor := newConstructor(t, &countingFactory{})
	img, err := constructor.CreateWith(friendID, image.Attributes{Size: 2048, Type: image.TypePNG, Width: 32, Height: 16})
	if err != nil {
		t.Fatalf("CreateWith: %v", err)
	}
	if img.Kind() != image.KindFriend || img.Size() != 2048 || img.Type() != image.TypePNG || img.Width() != 32 || img.Height() != 16 {
		t.Errorf("CreateWith = %v kind=%s size=%d type=%s %dx%d",
			img, img.Kind(), img.Size(), img.Type(), img.Width(), img.Height())
	}

	if _, err := constructor.CreateWith(friendID, image.Attributes{Width: -1}); err == nil {
		t.Error("CreateWith accepted a negative width")
	}
}

func TestCreateInvalidSkipsBackend(t *testing.T) {
	factory := &countingFactory{}
	constructor := newConstructor(t, factory)

	for _, input := range []string{"", "hello", "{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}", "f8f1ab55-bf8e-4236-b55e-955848d7069f"} {
		img, err := constructor.Create(input)
		if !errors.Is(err, imageid.ErrInvalidID) || img != nil {
			t.Errorf("Create(%q) = %v, %v; want nil, ErrInvalidID", input, img, err)
		}
	}
	if factory.calls.Load() != 0 {
		t.Errorf("factory called %d times for invalid identifiers", factory.calls.Load())
	}

	// Invalid identifiers are reported as such even with no backend.
	unwired := New(imagebackend.NewCapabilities(imagebackend.NewRegistry(), nil))
	if _, err := unwired.Create("hello"); !errors.Is(err, imageid.ErrInvalidID) {
		t.Errorf("unwired Create(invalid) err = %v, want ErrInvalidID", err)
	}
}

func TestCreateNoBackend(t *testing.T) {
	constructor := New(imagebackend.NewCapabilities(imagebackend.NewRegistry(), nil))
	for n := 0; n < 2; n++ {
		if _, err := constructor.Create(groupID); !errors.Is(err, imagebackend.ErrNoBackend) {
			t.Errorf("Create err = %v, want ErrNoBackend", err)
		}
	}
}

func TestCreateBackendError(t *testing.T) {
	sentinel := errors.New("quota exceeded")
	constructor := newConstructor(t, &countingFactory{err: sentinel})
	if _, err := constructor.Create(groupID); !errors.Is(err, sentinel) {
		t.Errorf("Create err = %v, want wrapped backend error", err)
	}
}

func TestDecode(t *testing.T) {
	constructor := newConstructor(t, &countingFactory{})
	original, err := constructor.CreateWith(groupID, image.Attributes{Size: 77})
	if err != nil {
		t.Fatal(err)
	}

	for _, form := range []image.WireForm{image.WireCompact, image.WireRecord} {
		jsonData, err := image.EncodeJSON(original, form)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := constructor.DecodeJSON(jsonData)
		if err != nil {
			t.Fatalf("DecodeJSON(%s): %v", jsonData, err)
		}
		if !image.Equal(decoded, original) || decoded.Kind() != image.KindGroup {
			t.Errorf("DecodeJSON(%s) = %v", jsonData, decoded)
		}
		if decoded.Size() != 0 {
			t.Errorf("decoded image carries size %d; metadata does not travel", decoded.Size())
		}

		cborData, err := image.EncodeCBOR(original, form)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err = constructor.DecodeCBOR(cborData)
		if err != nil {
			t.Fatalf("DecodeCBOR: %v", err)
		}
		if !image.Equal(decoded, original) {
			t.Errorf("DecodeCBOR = %v, want %v", decoded, original)
		}
	}

	if _, err := constructor.DecodeJSON([]byte(`"nope"`)); !errors.Is(err, imageid.ErrInvalidID) {
		t.Errorf("DecodeJSON(invalid) err = %v, want ErrInvalidID", err)
	}
}
