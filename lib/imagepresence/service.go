// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagepresence asks the chat server whether image content is
// already uploaded and where an image can be downloaded from.
//
// Both questions need an authenticated session. Callers either name
// one explicitly or let the Service pick any active session from its
// SessionSource. With no active session the Service fails with
// imagebackend.ErrNoSession before the backend is touched.
//
// The Service neither retries nor imposes timeouts. The caller's
// context is passed to the backend unchanged.
package imagepresence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/chatimage/lib/clock"
	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imageid"
)

// Query describes content whose upload presence is being checked.
type Query struct {
	// Session to ask as. Nil selects an arbitrary active session.
	Session imagebackend.Session

	MD5  imageid.Digest
	Size int64

	// Channel scopes the check to a conversation namespace. The zero
	// value asks without channel context.
	Channel imagebackend.Channel

	Type   image.Type
	Width  int
	Height int
}

// Service implements the presence and URL operations.
type Service struct {
	capabilities *imagebackend.Capabilities
	sessions     imagebackend.SessionSource
	logger       *slog.Logger
	clock        clock.Clock
	metrics      *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the clock used to measure request latency.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMetrics records request counts and latencies in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

// New returns a Service that resolves backend capabilities from
// capabilities and picks sessions from sessions.
func New(capabilities *imagebackend.Capabilities, sessions imagebackend.SessionSource, options ...Option) *Service {
	service := &Service{
		capabilities: capabilities,
		sessions:     sessions,
	}
	for _, option := range options {
		option(service)
	}
	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.clock == nil {
		service.clock = clock.Real()
	}
	return service
}

// IsUploaded reports whether the server already holds content matching
// query.
func (s *Service) IsUploaded(ctx context.Context, query Query) (bool, error) {
	session, err := s.pickSession(query.Session)
	if err != nil {
		s.metrics.count(operationIsUploaded, outcomeNoSession)
		return false, err
	}
	if query.Size < 0 || query.Width < 0 || query.Height < 0 {
		s.metrics.count(operationIsUploaded, outcomeInvalid)
		return false, fmt.Errorf("imagepresence: negative size or dimensions in query for %s", query.MD5)
	}
	if err := query.Channel.Validate(); err != nil {
		s.metrics.count(operationIsUploaded, outcomeInvalid)
		return false, fmt.Errorf("imagepresence: %w", err)
	}

	protocol, err := s.capabilities.Protocol()
	if err != nil {
		s.metrics.count(operationIsUploaded, outcomeNoBackend)
		return false, fmt.Errorf("imagepresence: %w", err)
	}

	s.metrics.begin(operationIsUploaded)
	defer s.metrics.done(operationIsUploaded)
	start := s.clock.Now()
	uploaded, err := protocol.IsUploaded(ctx, session, imagebackend.UploadQuery{
		MD5:     query.MD5,
		Size:    query.Size,
		Type:    query.Type,
		Width:   query.Width,
		Height:  query.Height,
		Channel: query.Channel,
	})
	elapsed := clock.Since(s.clock, start)
	s.metrics.observe(operationIsUploaded, elapsed)

	if err != nil {
		s.metrics.count(operationIsUploaded, outcomeError)
		s.logger.Warn("image presence check failed",
			"md5", query.MD5.String(),
			"user_id", session.UserID(),
			"error", err,
		)
		return false, fmt.Errorf("imagepresence: checking %s as %s: %w", query.MD5, session.UserID(), err)
	}

	outcome := outcomeAbsent
	if uploaded {
		outcome = outcomeUploaded
	}
	s.metrics.count(operationIsUploaded, outcome)
	s.logger.Debug("image presence checked",
		"md5", query.MD5.String(),
		"size", query.Size,
		"channel", query.Channel.String(),
		"user_id", session.UserID(),
		"uploaded", uploaded,
		"duration", elapsed,
	)
	return uploaded, nil
}

// ImageUploaded checks whether img is present in channel, using the
// image's own digest, size, type and dimensions.
func (s *Service) ImageUploaded(ctx context.Context, img image.Image, channel imagebackend.Channel) (bool, error) {
	if img == nil {
		return false, fmt.Errorf("imagepresence: nil image")
	}
	return s.IsUploaded(ctx, Query{
		MD5:     img.MD5(),
		Size:    img.Size(),
		Channel: channel,
		Type:    img.Type(),
		Width:   img.Width(),
		Height:  img.Height(),
	})
}

// QueryURL returns a download URL for img as seen by an arbitrary
// active session.
func (s *Service) QueryURL(ctx context.Context, img image.Image) (string, error) {
	return s.queryURL(ctx, nil, img)
}

// QueryURLWith returns a download URL for img as seen by session.
func (s *Service) QueryURLWith(ctx context.Context, session imagebackend.Session, img image.Image) (string, error) {
	if session == nil {
		s.metrics.count(operationQueryURL, outcomeNoSession)
		return "", fmt.Errorf("imagepresence: %w: nil session", imagebackend.ErrNoSession)
	}
	return s.queryURL(ctx, session, img)
}

func (s *Service) queryURL(ctx context.Context, requested imagebackend.Session, img image.Image) (string, error) {
	session, err := s.pickSession(requested)
	if err != nil {
		s.metrics.count(operationQueryURL, outcomeNoSession)
		return "", err
	}
	if img == nil {
		s.metrics.count(operationQueryURL, outcomeInvalid)
		return "", fmt.Errorf("imagepresence: nil image")
	}

	resolver, err := s.capabilities.URLResolver()
	if err != nil {
		s.metrics.count(operationQueryURL, outcomeNoBackend)
		return "", fmt.Errorf("imagepresence: %w", err)
	}

	s.metrics.begin(operationQueryURL)
	defer s.metrics.done(operationQueryURL)
	start := s.clock.Now()
	url, err := resolver.QueryURL(ctx, session, img)
	elapsed := clock.Since(s.clock, start)
	s.metrics.observe(operationQueryURL, elapsed)

	if err == nil && url == "" {
		err = errors.New("backend returned an empty URL")
	}
	if err != nil {
		s.metrics.count(operationQueryURL, outcomeError)
		s.logger.Warn("image URL query failed",
			"image_id", img.ID().String(),
			"user_id", session.UserID(),
			"error", err,
		)
		return "", fmt.Errorf("imagepresence: querying URL of %s as %s: %w", img.ID(), session.UserID(), err)
	}

	s.metrics.count(operationQueryURL, outcomeResolved)
	s.logger.Debug("image URL resolved",
		"image_id", img.ID().String(),
		"user_id", session.UserID(),
		"duration", elapsed,
	)
	return url, nil
}

// pickSession returns requested if non-nil, otherwise the first active
// session.
func (s *Service) pickSession(requested imagebackend.Session) (imagebackend.Session, error) {
	if requested != nil {
		return requested, nil
	}
	if s.sessions != nil {
		for _, session := range s.sessions.ActiveSessions() {
			if session != nil {
				return session, nil
			}
		}
	}
	return nil, fmt.Errorf("imagepresence: %w", imagebackend.ErrNoSession)
}
