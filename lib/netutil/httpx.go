// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading for the
// remote image backend.
//
// Image service responses are small JSON documents. Every read is
// capped at MaxResponseSize so a misbehaving server cannot exhaust
// memory; a body over the cap is an error rather than a silently
// truncated document.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize bounds response body reads: 1 MB.
const MaxResponseSize int64 = 1 << 20

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("netutil: response body exceeds size limit")

// ReadResponse reads a response body of at most MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// DecodeResponse reads a bounded response body and JSON-decodes it
// into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an error response body for a diagnostic message,
// truncated to MaxErrorBody bytes. Read errors are ignored.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBody+1))
	if len(data) > MaxErrorBody {
		return string(data[:MaxErrorBody]) + "..."
	}
	return string(data)
}

// MaxErrorBody bounds how much of an error body ErrorBody returns.
const MaxErrorBody = 512
