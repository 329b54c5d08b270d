// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

func TestCreateImage(t *testing.T) {
	tests := []struct {
		id   string
		kind image.Kind
	}{
		{"{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png", image.KindGroup},
		{"/f8f1ab55-bf8e-4236-b55e-955848d7069f", image.KindFriend},
		{"/000000000-3814297509-BFB7027B9354B8F899A062061D74E206", image.KindFriend},
	}
	for _, test := range tests {
		img, err := Factory{}.CreateImage(imageid.MustParse(test.id), image.Attributes{Size: 5})
		if err != nil {
			t.Fatalf("CreateImage(%q): %v", test.id, err)
		}
		if img.Kind() != test.kind {
			t.Errorf("CreateImage(%q).Kind() = %s, want %s", test.id, img.Kind(), test.kind)
		}
		if img.Size() != 5 {
			t.Errorf("CreateImage(%q).Size() = %d, want 5", test.id, img.Size())
		}
	}
}

func TestCreateImageRejectsZero(t *testing.T) {
	img, err := Factory{}.CreateImage(imageid.ID{}, image.Attributes{})
	if !errors.Is(err, imageid.ErrInvalidID) || img != nil {
		t.Errorf("CreateImage(zero) = %v, %v; want nil, ErrInvalidID", img, err)
	}
}

func TestInstall(t *testing.T) {
	registry := imagebackend.NewRegistry()
	if err := Install(registry); err != nil {
		t.Fatalf("Install: %v", err)
	}
	factory, err := imagebackend.NewCapabilities(registry, nil).Factory()
	if err != nil {
		t.Fatalf("Factory(): %v", err)
	}
	if _, ok := factory.(Factory); !ok {
		t.Errorf("resolved factory is %T, want offline.Factory", factory)
	}
	if err := Install(registry); err == nil {
		t.Error("second Install succeeded")
	}
}
