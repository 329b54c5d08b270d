// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package image

import "fmt"

// Kind is the channel an image belongs to. Friend and group uploads
// live in separate server-side namespaces. The zero value means no
// channel.
type Kind uint8

const (
	KindFriend Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindFriend:
		return "friend"
	case KindGroup:
		return "group"
	case 0:
		return ""
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind parses "friend" or "group". The empty string parses to the
// zero Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "friend":
		return KindFriend, nil
	case "group":
		return KindGroup, nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("image: unknown kind %q (want friend or group)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k > KindGroup {
		return nil, fmt.Errorf("image: invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
