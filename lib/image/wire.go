// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// WireForm selects how an image is serialized.
type WireForm uint8

const (
	// WireCompact encodes the image as a bare identifier string.
	WireCompact WireForm = iota

	// WireRecord encodes the image as a Record with a single imageId
	// field.
	WireRecord
)

// Record is the structured wire form of an image: a record with one
// field holding the identifier. The json tag names the field in both
// JSON and CBOR.
type Record struct {
	ImageID imageid.ID `json:"imageId"`
}

// NewRecord returns the structured wire form of img.
func NewRecord(img Image) Record {
	return Record{ImageID: img.ID()}
}

// cborEncMode uses Core Deterministic Encoding so the same image
// always produces identical bytes. Identifiers encode as text strings
// through their TextMarshaler.
var cborEncMode cbor.EncMode

var cborDecMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	cborEncMode, err = encOptions.EncMode()
	if err != nil {
		panic("image: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("image: CBOR decoder initialization failed: " + err.Error())
	}
}

func wireValue(img Image, form WireForm) (any, error) {
	if img == nil {
		return nil, fmt.Errorf("image: cannot encode nil image")
	}
	switch form {
	case WireCompact:
		return img.ID(), nil
	case WireRecord:
		return NewRecord(img), nil
	default:
		return nil, fmt.Errorf("image: unknown wire form %d", form)
	}
}

// EncodeJSON encodes img in the given form: a JSON string or
// {"imageId": "..."}.
func EncodeJSON(img Image, form WireForm) ([]byte, error) {
	value, err := wireValue(img, form)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// EncodeCBOR encodes img in the given form: a CBOR text string or a
// one-entry map keyed "imageId".
func EncodeCBOR(img Image, form WireForm) ([]byte, error) {
	value, err := wireValue(img, form)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(value)
}

// DecodeJSONID decodes either JSON wire form and returns the validated
// identifier. Rebuilding the image itself needs a backend factory; see
// package imagefactory.
func DecodeJSONID(data []byte) (imageid.ID, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return imageid.ID{}, fmt.Errorf("image: empty JSON input")
	}

	var id imageid.ID
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return imageid.ID{}, fmt.Errorf("image: decoding JSON identifier: %w", err)
		}
	case '{':
		var record Record
		if err := json.Unmarshal(trimmed, &record); err != nil {
			return imageid.ID{}, fmt.Errorf("image: decoding JSON record: %w", err)
		}
		id = record.ImageID
	default:
		return imageid.ID{}, fmt.Errorf("image: JSON image must be a string or an object, got %q", trimmed[:1])
	}
	if id.IsZero() {
		return imageid.ID{}, fmt.Errorf("image: %w: missing identifier", imageid.ErrInvalidID)
	}
	return id, nil
}

// CBOR major types (RFC 8949 §3.1) of the two wire forms.
const (
	cborMajorText = 3
	cborMajorMap  = 5
)

// DecodeCBORID decodes either CBOR wire form and returns the validated
// identifier.
func DecodeCBORID(data []byte) (imageid.ID, error) {
	if len(data) == 0 {
		return imageid.ID{}, fmt.Errorf("image: empty CBOR input")
	}

	var id imageid.ID
	switch data[0] >> 5 {
	case cborMajorText:
		if err := cborDecMode.Unmarshal(data, &id); err != nil {
			return imageid.ID{}, fmt.Errorf("image: decoding CBOR identifier: %w", err)
		}
	case cborMajorMap:
		var record Record
		if err := cborDecMode.Unmarshal(data, &record); err != nil {
			return imageid.ID{}, fmt.Errorf("image: decoding CBOR record: %w", err)
		}
		id = record.ImageID
	default:
		return imageid.ID{}, fmt.Errorf("image: CBOR image must be a text string or a map, got major type %d", data[0]>>5)
	}
	if id.IsZero() {
		return imageid.ID{}, fmt.Errorf("image: %w: missing identifier", imageid.ErrInvalidID)
	}
	return id, nil
}
