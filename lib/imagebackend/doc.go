// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagebackend defines the capabilities a chat backend supplies
// to the image layer and the registry that binds them at runtime.
//
// There are three capabilities:
//
//   - [Factory] builds concrete images from a validated identifier.
//   - [Protocol] asks the server whether content is already uploaded.
//   - [URLResolver] asks the server for a download URL.
//
// A backend registers providers for them under well-known names in a
// [Registry]. Callers wrap the registry in [Capabilities], which
// resolves each capability at most once on first use and caches the
// outcome, failures included. There is no process-global registry: the
// composition root creates one and passes it down.
//
// A missing registration surfaces as [ErrNoBackend]. Operations that
// talk to the server need an authenticated [Session]; the presence
// layer reports [ErrNoSession] when a [SessionSource] has none.
package imagebackend
