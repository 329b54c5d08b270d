// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the chatimage command tree.
package commands

import (
	"github.com/bureau-foundation/chatimage/cmd/chatimage/cli"
)

// Root returns the top-level chatimage command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "chatimage",
		Summary: "Inspect, derive, and resolve chat image identifiers",
		Description: `Inspect, derive, and resolve chat image identifiers.

Offline commands (classify, digest, generate, code, inspect) need no
configuration. Backend commands (uploaded, url, record) read the file
named by --config or CHATIMAGE_CONFIG to pick a backend and the active
sessions.`,
		Subcommands: []*cli.Command{
			classifyCommand(),
			digestCommand(),
			generateCommand(),
			codeCommand(),
			inspectCommand(),
			uploadedCommand(),
			urlCommand(),
			recordCommand(),
		},
	}
}
