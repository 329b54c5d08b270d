// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads chatimage configuration.
//
// Configuration comes from a single file named by either the
// CHATIMAGE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no per-field environment
// override. YAML is the native format; files ending in .json or .jsonc
// are accepted with // and /* */ comments and trailing commas.
//
// A file only needs the keys it changes from [Default]. Unknown keys
// are an error. ${VAR} and ${VAR:-default} are expanded in
// local.path, remote.base_url and remote.token after decoding.
//
//	backend: local
//	sessions: [alice]
//	local:
//	  path: ${XDG_STATE_HOME:-/var/lib/chatimage}/uploads.db
//	  url_template: https://img.example/{MD5}.{FORMAT}
//	log:
//	  level: debug
//
// This package depends on no other chatimage packages.
package config
