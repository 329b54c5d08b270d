// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chatimage/cmd/chatimage/cli"
	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/offline"
	"github.com/bureau-foundation/chatimage/lib/imagefactory"
	"github.com/bureau-foundation/chatimage/lib/imagefile"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

type classification struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Kind   string `json:"kind,omitempty"`
	Valid  bool   `json:"valid"`
}

func classifyCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "classify",
		Summary: "Report which identifier grammar each argument matches",
		Description: `Report which identifier grammar each argument matches.

Exits 1 if any argument matches no grammar.`,
		Usage: "chatimage classify [flags] <id>...",
		Examples: []cli.Example{
			{Command: "chatimage classify '{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.png'"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("classify", pflag.ContinueOnError)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one identifier is required")
			}
			results := make([]classification, 0, len(args))
			invalid := false
			for _, raw := range args {
				result := classification{ID: raw, Format: imageid.Classify(raw).String()}
				if id, err := imageid.Parse(raw); err == nil {
					result.Valid = true
					if kind, err := offline.KindOf(id); err == nil {
						result.Kind = kind.String()
					}
				} else {
					invalid = true
				}
				results = append(results, result)
			}

			if done, err := params.EmitJSON(results); done {
				if err != nil {
					return err
				}
			} else {
				tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, result := range results {
					kind := result.Kind
					if kind == "" {
						kind = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", result.Format, kind, result.ID)
				}
				tw.Flush()
			}
			if invalid {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func digestCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "digest",
		Summary: "Print the MD5 digest encoded in each identifier",
		Usage:   "chatimage digest [flags] <id>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("digest", pflag.ContinueOnError)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one identifier is required")
			}
			type digestResult struct {
				ID  string         `json:"id"`
				MD5 imageid.Digest `json:"md5"`
			}
			results := make([]digestResult, 0, len(args))
			for _, raw := range args {
				digest, err := imageid.DeriveDigest(raw)
				if err != nil {
					return err
				}
				results = append(results, digestResult{ID: raw, MD5: digest})
			}
			if done, err := params.EmitJSON(results); done {
				return err
			}
			for _, result := range results {
				if len(results) == 1 {
					fmt.Println(result.MD5)
				} else {
					fmt.Printf("%s  %s\n", result.MD5, result.ID)
				}
			}
			return nil
		},
	}
}

func generateCommand() *cli.Command {
	var (
		kindName  string
		extension string
		file      string
	)
	return &cli.Command{
		Name:    "generate",
		Summary: "Build an identifier from an MD5 digest or a file",
		Description: `Build an identifier from an MD5 digest or a file.

Group identifiers carry a file extension; with --file it is taken from
the detected image type.`,
		Usage: "chatimage generate [flags] (<md5> | --file <path>)",
		Examples: []cli.Example{
			{
				Description: "Friend identifier for a digest",
				Command:     "chatimage generate --kind friend 01E9451B70EDEAE3B37C101F1EEBF5B5",
			},
			{
				Description: "Group identifier for a file",
				Command:     "chatimage generate --file cat.png",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("generate", pflag.ContinueOnError)
			flagSet.StringVar(&kindName, "kind", "group", "identifier kind: group or friend")
			flagSet.StringVar(&extension, "ext", "", "group identifier extension (default: from --file, else "+imageid.DefaultExtension+")")
			flagSet.StringVar(&file, "file", "", "derive the digest from this image file")
			return flagSet
		},
		Run: func(args []string) error {
			kind, err := image.ParseKind(kindName)
			if err != nil || kind == 0 {
				return fmt.Errorf("--kind must be group or friend, got %q", kindName)
			}

			var digest imageid.Digest
			switch {
			case file != "" && len(args) == 0:
				info, err := imagefile.Inspect(file)
				if err != nil {
					return err
				}
				digest = info.MD5
				if extension == "" {
					extension = info.Type.FormatName()
				}
			case file == "" && len(args) == 1:
				digest, err = imageid.ParseDigest(args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("exactly one of <md5> or --file is required")
			}

			var id imageid.ID
			if kind == image.KindFriend {
				id = imageid.FriendResourceID(digest)
			} else if id, err = imageid.GroupCustomFaceID(digest, extension); err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}

// Wire formats accepted by the code command.
const (
	wireCode       = "code"
	wireJSON       = "json"
	wireJSONRecord = "json-record"
	wireCBOR       = "cbor"
	wireCBORRecord = "cbor-record"
)

func codeCommand() *cli.Command {
	var (
		wire  string
		parse bool
	)
	return &cli.Command{
		Name:    "code",
		Summary: "Convert identifiers to and from message code and wire forms",
		Description: `Convert identifiers to and from message code and wire forms.

By default each identifier is printed in its inline message code form.
--wire selects a serialized form instead; CBOR is written as hex. With
--parse the arguments are read in the selected form and the identifier
is printed.`,
		Usage: "chatimage code [flags] <id>...",
		Examples: []cli.Example{
			{Command: "chatimage code '/f8f1ab55-bf8e-4236-b55e-955848d7069f'"},
			{Command: "chatimage code --parse '[mirai:image:/f8f1ab55-bf8e-4236-b55e-955848d7069f]'"},
			{Command: "chatimage code --wire cbor-record '/f8f1ab55-bf8e-4236-b55e-955848d7069f'"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("code", pflag.ContinueOnError)
			flagSet.StringVar(&wire, "wire", wireCode, "form: code, json, json-record, cbor, or cbor-record")
			flagSet.BoolVar(&parse, "parse", false, "read arguments in the --wire form and print identifiers")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one argument is required")
			}
			images, err := offlineImages()
			if err != nil {
				return err
			}
			for _, arg := range args {
				var line string
				if parse {
					line, err = decodeWire(images, wire, arg)
				} else {
					line, err = encodeWire(images, wire, arg)
				}
				if err != nil {
					return err
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func encodeWire(images *imagefactory.Constructor, wire, raw string) (string, error) {
	img, err := images.Create(raw)
	if err != nil {
		return "", err
	}
	switch wire {
	case wireCode:
		return img.String(), nil
	case wireJSON, wireJSONRecord:
		data, err := image.EncodeJSON(img, wireForm(wire))
		return string(data), err
	case wireCBOR, wireCBORRecord:
		data, err := image.EncodeCBOR(img, wireForm(wire))
		return hex.EncodeToString(data), err
	default:
		return "", fmt.Errorf("unknown --wire %q", wire)
	}
}

func decodeWire(images *imagefactory.Constructor, wire, text string) (string, error) {
	switch wire {
	case wireCode:
		id, err := image.ParseCode(text)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	case wireJSON, wireJSONRecord:
		img, err := images.DecodeJSON([]byte(text))
		if err != nil {
			return "", err
		}
		return img.ID().String(), nil
	case wireCBOR, wireCBORRecord:
		data, err := hex.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return "", fmt.Errorf("CBOR input must be hex: %w", err)
		}
		img, err := images.DecodeCBOR(data)
		if err != nil {
			return "", err
		}
		return img.ID().String(), nil
	default:
		return "", fmt.Errorf("unknown --wire %q", wire)
	}
}

func wireForm(wire string) image.WireForm {
	if strings.HasSuffix(wire, "-record") {
		return image.WireRecord
	}
	return image.WireCompact
}

// offlineImages returns a constructor backed only by the offline
// factory, for commands that never talk to a server.
func offlineImages() (*imagefactory.Constructor, error) {
	registry := imagebackend.NewRegistry()
	if err := offline.Install(registry); err != nil {
		return nil, err
	}
	return imagefactory.New(imagebackend.NewCapabilities(registry, nil)), nil
}
