// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the chatimage
// binary.
//
// A [Command] tree dispatches on the first positional argument, parses
// per-command flags with pflag, and prints structured help. Unknown
// commands and flags get a "did you mean" suggestion when one is within
// a short edit distance. [NewCommandLogger] builds the slog logger
// commands share, and [JSONOutput] adds a --json flag to data
// commands.
package cli
