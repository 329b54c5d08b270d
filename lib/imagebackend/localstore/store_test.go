// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/chatimage/lib/clock"
	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagefactory"
	"github.com/bureau-foundation/chatimage/lib/imageid"
	"github.com/bureau-foundation/chatimage/lib/imagepresence"
	"github.com/bureau-foundation/chatimage/lib/testutil"
)

var (
	session = imagebackend.UserSession("alice")
	digest  = imageid.Digest{0x01, 0xe9, 0x45, 0x1b, 0x70, 0xed, 0xea, 0xe3, 0xb3, 0x7c, 0x10, 0x1f, 0x1e, 0xeb, 0xf5, 0xb5}
)

func openStore(t *testing.T, template string, storeClock clock.Clock) *Store {
	t.Helper()
	store, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "uploads.db"),
		PoolSize:    2,
		URLTemplate: template,
		Clock:       storeClock,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func groupChannel() imagebackend.Channel {
	return imagebackend.Channel{Kind: image.KindGroup, ID: testutil.UniqueID("group")}
}

func TestIsUploadedMatching(t *testing.T) {
	store := openStore(t, "", nil)
	ctx := context.Background()
	channel := groupChannel()

	if err := store.RecordUpload(ctx, Upload{Channel: channel, MD5: digest, Size: 100, Type: image.TypePNG}); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}

	otherGroup := groupChannel()
	friend := imagebackend.Channel{Kind: image.KindFriend, ID: channel.ID}
	tests := []struct {
		name  string
		query imagebackend.UploadQuery
		want  bool
	}{
		{"same channel", imagebackend.UploadQuery{MD5: digest, Size: 100, Channel: channel}, true},
		{"no channel", imagebackend.UploadQuery{MD5: digest, Size: 100}, true},
		{"other group", imagebackend.UploadQuery{MD5: digest, Size: 100, Channel: otherGroup}, false},
		{"friend namespace with same id", imagebackend.UploadQuery{MD5: digest, Size: 100, Channel: friend}, false},
		{"different size", imagebackend.UploadQuery{MD5: digest, Size: 101, Channel: channel}, false},
		{"unknown size", imagebackend.UploadQuery{MD5: digest, Size: 0, Channel: channel}, false},
		{"different digest", imagebackend.UploadQuery{MD5: imageid.Digest{1}, Size: 100, Channel: channel}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := store.IsUploaded(ctx, session, test.query)
			if err != nil {
				t.Fatalf("IsUploaded: %v", err)
			}
			if got != test.want {
				t.Errorf("IsUploaded = %v, want %v", got, test.want)
			}
		})
	}
}

func TestChannellessUploadMatchesEveryChannel(t *testing.T) {
	store := openStore(t, "", nil)
	ctx := context.Background()
	if err := store.RecordUpload(ctx, Upload{MD5: digest, Size: 7}); err != nil {
		t.Fatal(err)
	}
	got, err := store.IsUploaded(ctx, session, imagebackend.UploadQuery{MD5: digest, Size: 7, Channel: groupChannel()})
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("channel-less upload not visible in a group channel")
	}
}

func TestRecordUploadRejects(t *testing.T) {
	store := openStore(t, "", nil)
	ctx := context.Background()
	uploads := []Upload{
		{MD5: digest, Size: 0},
		{MD5: digest, Size: 1, Width: -1},
		{MD5: digest, Size: 1, Channel: imagebackend.Channel{Kind: image.KindGroup}},
	}
	for _, upload := range uploads {
		if err := store.RecordUpload(ctx, upload); err == nil {
			t.Errorf("RecordUpload(%+v) succeeded", upload)
		}
	}
}

func TestQueryURL(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	store := openStore(t, "https://img.example/{MD5}.{FORMAT}", fake)
	ctx := context.Background()

	img, err := image.NewGroupImage(imageid.MustParse("{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png"), image.Attributes{Type: image.TypeAPNG})
	if err != nil {
		t.Fatal(err)
	}

	url, err := store.QueryURL(ctx, session, img)
	if err != nil {
		t.Fatalf("QueryURL: %v", err)
	}
	if want := "https://img.example/01E9451B70EDEAE3B37C101F1EEBF5B5.png"; url != want {
		t.Errorf("template URL = %q, want %q", url, want)
	}

	channel := groupChannel()
	if err := store.RecordUpload(ctx, Upload{Channel: channel, MD5: digest, Size: 10, URL: "https://cdn.example/old"}); err != nil {
		t.Fatal(err)
	}
	fake.Advance(time.Minute)
	if err := store.RecordUpload(ctx, Upload{Channel: groupChannel(), MD5: digest, Size: 10, URL: "https://cdn.example/new"}); err != nil {
		t.Fatal(err)
	}
	url, err = store.QueryURL(ctx, session, img)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example/new" {
		t.Errorf("recorded URL = %q, want most recent", url)
	}

	// Re-recording without a URL keeps the stored one.
	fake.Advance(time.Minute)
	if err := store.RecordUpload(ctx, Upload{Channel: channel, MD5: digest, Size: 10}); err != nil {
		t.Fatal(err)
	}
	url, err = store.QueryURL(ctx, session, img)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example/old" {
		t.Errorf("URL after refresh = %q, want the refreshed row's URL", url)
	}
}

func TestQueryURLNotFound(t *testing.T) {
	store := openStore(t, "", nil)
	img, err := image.NewFriendImage(imageid.MustParse("/f8f1ab55-bf8e-4236-b55e-955848d7069f"), image.Attributes{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.QueryURL(context.Background(), session, img); !errors.Is(err, ErrNotFound) {
		t.Errorf("QueryURL err = %v, want ErrNotFound", err)
	}
}

func TestOpenRejectsTemplateWithoutDigest(t *testing.T) {
	_, err := Open(Config{Path: filepath.Join(t.TempDir(), "x.db"), URLTemplate: "https://img.example/static"})
	if err == nil {
		t.Fatal("Open accepted a template without {MD5}")
	}
}

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	first, err := Open(Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := first.RecordUpload(ctx, Upload{MD5: digest, Size: 5}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	got, err := second.IsUploaded(ctx, session, imagebackend.UploadQuery{MD5: digest, Size: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("upload not visible after reopening")
	}
}

// TestInstalledBackend drives the store through the public facades.
func TestInstalledBackend(t *testing.T) {
	store := openStore(t, "https://img.example/{MD5}", nil)
	registry := imagebackend.NewRegistry()
	if err := store.Install(registry); err != nil {
		t.Fatalf("Install: %v", err)
	}
	capabilities := imagebackend.NewCapabilities(registry, nil)
	images := imagefactory.New(capabilities)
	presence := imagepresence.New(capabilities, imagebackend.Users("alice"))
	ctx := context.Background()

	img, err := images.CreateWith("{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png", image.Attributes{Size: 321})
	if err != nil {
		t.Fatalf("CreateWith: %v", err)
	}
	channel := groupChannel()

	uploaded, err := presence.ImageUploaded(ctx, img, channel)
	if err != nil || uploaded {
		t.Fatalf("ImageUploaded before recording = %v, %v", uploaded, err)
	}
	if err := store.RecordUpload(ctx, Upload{Channel: channel, MD5: img.MD5(), Size: img.Size()}); err != nil {
		t.Fatal(err)
	}
	uploaded, err = presence.ImageUploaded(ctx, img, channel)
	if err != nil || !uploaded {
		t.Errorf("ImageUploaded after recording = %v, %v", uploaded, err)
	}

	url, err := presence.QueryURL(ctx, img)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://img.example/01E9451B70EDEAE3B37C101F1EEBF5B5" {
		t.Errorf("QueryURL = %q", url)
	}
}
