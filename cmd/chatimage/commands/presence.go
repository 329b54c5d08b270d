// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chatimage/cmd/chatimage/cli"
	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/localstore"
	"github.com/bureau-foundation/chatimage/lib/imagefile"
)

// imageFlags describe the image a backend command operates on: an
// identifier argument plus attributes, or a file whose content supplies
// both.
type imageFlags struct {
	file     string
	size     int64
	typeName string
	width    int
	height   int
	emoji    bool
	channel  string
}

func (f *imageFlags) addTo(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.file, "file", "", "take the digest and attributes from this image file")
	flagSet.Int64Var(&f.size, "size", 0, "content size in bytes (0 = unknown)")
	flagSet.StringVar(&f.typeName, "type", "", "image type: PNG, BMP, JPG, GIF, APNG")
	flagSet.IntVar(&f.width, "width", 0, "width in pixels")
	flagSet.IntVar(&f.height, "height", 0, "height in pixels")
	flagSet.BoolVar(&f.emoji, "emoji", false, "mark the image as an emoji")
	flagSet.StringVar(&f.channel, "channel", "", "conversation as kind:id, e.g. group:123456")
}

// resolve turns the positional arguments and flags into an image
// created through the backend's factory, plus the channel.
func (f *imageFlags) resolve(b *backend, args []string) (image.Image, imagebackend.Channel, error) {
	channel, err := parseChannel(f.channel)
	if err != nil {
		return nil, channel, err
	}

	var attributes image.Attributes
	var raw string
	switch {
	case f.file != "":
		info, err := imagefile.Inspect(f.file)
		if err != nil {
			return nil, channel, err
		}
		attributes = info.Attributes()
		if len(args) == 1 {
			raw = args[0]
		} else if len(args) == 0 {
			kind := channel.Kind
			if kind == 0 {
				kind = image.KindGroup
			}
			id, err := info.ID(kind)
			if err != nil {
				return nil, channel, err
			}
			raw = id.String()
		} else {
			return nil, channel, fmt.Errorf("at most one identifier with --file")
		}
	case len(args) == 1:
		raw = args[0]
	default:
		return nil, channel, fmt.Errorf("exactly one identifier (or --file) is required")
	}

	if f.size != 0 {
		attributes.Size = f.size
	}
	if f.typeName != "" {
		imageType, ok := image.MatchTypeOK(f.typeName)
		if !ok {
			return nil, channel, fmt.Errorf("unknown --type %q", f.typeName)
		}
		attributes.Type = imageType
	}
	if f.width != 0 {
		attributes.Width = f.width
	}
	if f.height != 0 {
		attributes.Height = f.height
	}
	attributes.IsEmoji = f.emoji

	img, err := b.images.CreateWith(raw, attributes)
	if err != nil {
		return nil, channel, err
	}
	return img, channel, nil
}

// parseChannel parses "group:123" or "friend:alice". Empty means no
// channel.
func parseChannel(text string) (imagebackend.Channel, error) {
	if text == "" {
		return imagebackend.Channel{}, nil
	}
	kindName, id, ok := strings.Cut(text, ":")
	if !ok {
		return imagebackend.Channel{}, fmt.Errorf("--channel %q must be kind:id", text)
	}
	kind, err := image.ParseKind(kindName)
	if err != nil {
		return imagebackend.Channel{}, err
	}
	channel := imagebackend.Channel{Kind: kind, ID: id}
	if err := channel.Validate(); err != nil {
		return imagebackend.Channel{}, err
	}
	return channel, nil
}

// withBackend opens the configured backend, runs fn with an
// interrupt-cancelled context, and closes the backend.
func withBackend(flags *backendFlags, fn func(ctx context.Context, b *backend) error) (err error) {
	b, err := flags.open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := b.Close(); err == nil {
			err = closeErr
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx, b)
}

func uploadedCommand() *cli.Command {
	var (
		backendParams backendFlags
		imageParams   imageFlags
		params        struct{ cli.JSONOutput }
	)
	return &cli.Command{
		Name:    "uploaded",
		Summary: "Ask the backend whether an image is already on the server",
		Description: `Ask the backend whether an image is already on the server.

The query runs as the first active session. Prints "uploaded" and exits
0, or prints "absent" and exits 1. A size of 0 is always absent.`,
		Usage: "chatimage uploaded [flags] (<id> | --file <path>)",
		Examples: []cli.Example{
			{
				Description: "Check a file before uploading it to a group",
				Command:     "chatimage uploaded --file cat.png --channel group:123456",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("uploaded", pflag.ContinueOnError)
			backendParams.addTo(flagSet)
			imageParams.addTo(flagSet)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			return withBackend(&backendParams, func(ctx context.Context, b *backend) error {
				img, channel, err := imageParams.resolve(b, args)
				if err != nil {
					return err
				}
				uploaded, err := b.presence.ImageUploaded(ctx, img, channel)
				if err != nil {
					return err
				}

				result := struct {
					ID       string `json:"id"`
					Uploaded bool   `json:"uploaded"`
				}{img.ID().String(), uploaded}
				if done, err := params.EmitJSON(result); done {
					if err != nil {
						return err
					}
				} else if uploaded {
					fmt.Println("uploaded")
				} else {
					fmt.Println("absent")
				}
				if !uploaded {
					return &cli.ExitError{Code: 1}
				}
				return nil
			})
		},
	}
}

func urlCommand() *cli.Command {
	var (
		backendParams backendFlags
		params        struct{ cli.JSONOutput }
	)
	return &cli.Command{
		Name:    "url",
		Summary: "Resolve an image's download URL",
		Usage:   "chatimage url [flags] <id>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("url", pflag.ContinueOnError)
			backendParams.addTo(flagSet)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one identifier is required")
			}
			return withBackend(&backendParams, func(ctx context.Context, b *backend) error {
				img, err := b.images.Create(args[0])
				if err != nil {
					return err
				}
				url, err := b.presence.QueryURL(ctx, img)
				if err != nil {
					return err
				}
				result := struct {
					ID  string `json:"id"`
					URL string `json:"url"`
				}{img.ID().String(), url}
				if done, err := params.EmitJSON(result); done {
					return err
				}
				fmt.Println(url)
				return nil
			})
		},
	}
}

func recordCommand() *cli.Command {
	var (
		backendParams backendFlags
		imageParams   imageFlags
		url           string
	)
	return &cli.Command{
		Name:    "record",
		Summary: "Record a completed upload in the local backend",
		Description: `Record a completed upload in the local backend.

Later "uploaded" queries with the same digest, size and channel answer
true, and "url" returns --url when given. Only the local backend keeps
a record.`,
		Usage: "chatimage record [flags] (<id> | --file <path>)",
		Examples: []cli.Example{
			{
				Command: "chatimage record --file cat.png --channel group:123456 --url https://cdn.example/cat.png",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("record", pflag.ContinueOnError)
			backendParams.addTo(flagSet)
			imageParams.addTo(flagSet)
			flagSet.StringVar(&url, "url", "", "where the server said the upload can be fetched")
			return flagSet
		},
		Run: func(args []string) error {
			return withBackend(&backendParams, func(ctx context.Context, b *backend) error {
				if b.store == nil {
					return fmt.Errorf("record needs the local backend (configured: %s)", b.config.Backend)
				}
				img, channel, err := imageParams.resolve(b, args)
				if err != nil {
					return err
				}
				err = b.store.RecordUpload(ctx, localstore.Upload{
					Channel: channel,
					MD5:     img.MD5(),
					Size:    img.Size(),
					Type:    img.Type(),
					Width:   img.Width(),
					Height:  img.Height(),
					URL:     url,
				})
				if err != nil {
					return err
				}
				b.logger.Info("upload recorded", "id", img.ID().String(), "channel", channel.String())
				return nil
			})
		},
	}
}
