// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command chatimage inspects chat image files, derives and classifies
// image identifiers, and queries a configured backend for upload
// presence and download URLs.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/chatimage/cmd/chatimage/commands"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		// Commands that answer through their exit status (uploaded,
		// classify) have already printed their output.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
