// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chatimage/cmd/chatimage/cli"
	"github.com/bureau-foundation/chatimage/lib/imagefile"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

type inspection struct {
	Path string `json:"path"`
	imagefile.Info
	GroupID  imageid.ID `json:"group_id"`
	FriendID imageid.ID `json:"friend_id"`
}

func inspectCommand() *cli.Command {
	var params struct {
		cli.JSONOutput
	}
	return &cli.Command{
		Name:    "inspect",
		Summary: "Describe image files and the identifiers they upload under",
		Usage:   "chatimage inspect [flags] <file>...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			params.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one file is required")
			}
			results := make([]inspection, 0, len(args))
			for _, path := range args {
				info, err := imagefile.Inspect(path)
				if err != nil {
					return err
				}
				groupID, err := info.GroupID()
				if err != nil {
					return err
				}
				results = append(results, inspection{
					Path:     path,
					Info:     info,
					GroupID:  groupID,
					FriendID: info.FriendID(),
				})
			}

			if done, err := params.EmitJSON(results); done {
				return err
			}
			for i, result := range results {
				if i > 0 {
					fmt.Println()
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "path:\t%s\n", result.Path)
				fmt.Fprintf(tw, "md5:\t%s\n", result.MD5)
				fmt.Fprintf(tw, "size:\t%d\n", result.Size)
				fmt.Fprintf(tw, "type:\t%s\n", result.Type)
				fmt.Fprintf(tw, "dimensions:\t%dx%d\n", result.Width, result.Height)
				fmt.Fprintf(tw, "group id:\t%s\n", result.GroupID)
				fmt.Fprintf(tw, "friend id:\t%s\n", result.FriendID)
				tw.Flush()
			}
			return nil
		},
	}
}
