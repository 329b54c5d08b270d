// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import (
	"encoding/json"
	"testing"
)

func TestMatchType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
		ok    bool
	}{
		{"png", TypePNG, true},
		{"PNG", TypePNG, true},
		{"Bmp", TypeBMP, true},
		{"jpg", TypeJPG, true},
		{"gif", TypeGIF, true},
		{"apng", TypeAPNG, true},
		{"unknown", TypeUnknown, true},
		{"jpeg", TypeUnknown, false},
		{"webp", TypeUnknown, false},
		{"", TypeUnknown, false},
	}
	for _, test := range tests {
		got, ok := MatchTypeOK(test.input)
		if got != test.want || ok != test.ok {
			t.Errorf("MatchTypeOK(%q) = %s, %v; want %s, %v", test.input, got, ok, test.want, test.ok)
		}
		if MatchType(test.input) != test.want {
			t.Errorf("MatchType(%q) = %s, want %s", test.input, MatchType(test.input), test.want)
		}
	}
}

func TestTypeFormatName(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypePNG, "png"},
		{TypeBMP, "bmp"},
		{TypeJPG, "jpg"},
		{TypeGIF, "gif"},
		{TypeAPNG, "png"},
		{TypeUnknown, "gif"},
		{Type(200), "gif"},
	}
	for _, test := range tests {
		if got := test.typ.FormatName(); got != test.want {
			t.Errorf("%s.FormatName() = %q, want %q", test.typ, got, test.want)
		}
	}
	if Type(200).String() != "Type(200)" {
		t.Errorf("Type(200).String() = %q", Type(200).String())
	}
}

func TestTypeJSON(t *testing.T) {
	type wrapper struct {
		Type Type `json:"type"`
	}
	data, err := json.Marshal(wrapper{Type: TypeAPNG})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"type":"APNG"}` {
		t.Errorf("Marshal = %s", data)
	}
	var decoded wrapper
	if err := json.Unmarshal([]byte(`{"type":"gif"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Type != TypeGIF {
		t.Errorf("decoded type = %s, want GIF", decoded.Type)
	}
	if err := json.Unmarshal([]byte(`{"type":"tiff"}`), &decoded); err == nil {
		t.Error("Unmarshal accepted an unknown type name")
	}
}

func TestKind(t *testing.T) {
	for _, kind := range []Kind{KindFriend, KindGroup} {
		parsed, err := ParseKind(kind.String())
		if err != nil || parsed != kind {
			t.Errorf("ParseKind(%q) = %s, %v", kind.String(), parsed, err)
		}
	}
	if kind, err := ParseKind(""); err != nil || kind != 0 {
		t.Errorf("ParseKind(\"\") = %s, %v; want zero kind", kind, err)
	}
	if _, err := ParseKind("channel"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
	if _, err := Kind(9).MarshalText(); err == nil {
		t.Error("MarshalText accepted an invalid kind")
	}
}
