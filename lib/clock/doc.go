// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Components that stamp records or measure latency take a Clock
// instead of calling time.Now directly:
//
//	type Store struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production, Real() provides the standard library behavior. In
// tests, Fake() returns a clock that stands still until Advance or Set
// is called, optionally stepping forward by a fixed amount on every
// read so that durations measured across a call are non-zero and
// predictable.
package clock
