// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package imagebackend

// Session is an authenticated account connection. Backends may assert
// it to their own concrete type to reach transport state.
type Session interface {
	UserID() string
}

// SessionSource lists the sessions currently able to talk to the
// server.
type SessionSource interface {
	ActiveSessions() []Session
}

// UserSession is a Session that carries only an account identifier.
// The bundled backends need nothing more.
type UserSession string

func (s UserSession) UserID() string { return string(s) }

// StaticSessions is a fixed SessionSource.
type StaticSessions []Session

// ActiveSessions returns a copy of the list.
func (s StaticSessions) ActiveSessions() []Session {
	if len(s) == 0 {
		return nil
	}
	return append([]Session(nil), s...)
}

// Users builds a StaticSessions from account identifiers.
func Users(userIDs ...string) StaticSessions {
	sessions := make(StaticSessions, len(userIDs))
	for i, userID := range userIDs {
		sessions[i] = UserSession(userID)
	}
	return sessions
}
