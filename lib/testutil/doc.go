// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the timeout safety valve
// (select with a time.After fallback) so a broken concurrency test
// fails instead of hanging the suite.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation, such as channel IDs shared across subtests.
//
// [EncodeImage], [WriteImage] and [AnimatedPNG] produce small image
// files of every type the chat layer recognizes, for tests that need
// real encoded content rather than hand-built byte strings.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
