// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package localstore is an image backend that answers presence and URL
// queries from a local SQLite index of past uploads.
//
// The uploader records each completed upload with RecordUpload. A
// presence query matches a recorded upload with the same digest and
// byte size in the same channel namespace. Uploads recorded without a
// channel match every namespace, and queries without a channel match
// uploads in any namespace. A size of 0 (unknown) never matches.
//
// URL queries return the most recent URL recorded for the image's
// digest. When none was recorded, the configured URL template is
// rendered instead; without a template the query fails with
// ErrNotFound.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/chatimage/lib/clock"
	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/offline"
	"github.com/bureau-foundation/chatimage/lib/imageid"
	"github.com/bureau-foundation/chatimage/lib/sqlitepool"
)

// ErrNotFound is returned by QueryURL when no URL is known for an
// image and no template is configured.
var ErrNotFound = errors.New("localstore: no URL known for image")

// Template placeholders.
const (
	PlaceholderMD5    = "{MD5}"
	PlaceholderFormat = "{FORMAT}"
)

// migrations[i] upgrades the schema from version i to i+1.
var migrations = []string{
	`CREATE TABLE uploads (
		channel_kind INTEGER NOT NULL,
		channel_id   TEXT    NOT NULL,
		md5          BLOB    NOT NULL,
		size         INTEGER NOT NULL,
		image_type   INTEGER NOT NULL,
		width        INTEGER NOT NULL,
		height       INTEGER NOT NULL,
		url          TEXT    NOT NULL DEFAULT '',
		uploaded_at  INTEGER NOT NULL,
		PRIMARY KEY (channel_kind, channel_id, md5)
	);
	CREATE INDEX uploads_by_md5 ON uploads (md5, size);`,
}

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file.
	Path string

	// PoolSize is passed to sqlitepool. Zero picks the pool default.
	PoolSize int

	// URLTemplate renders a download URL for images with no recorded
	// URL. {MD5} expands to the uppercase hex digest and {FORMAT} to
	// the upload extension of the image type. Empty disables the
	// fallback.
	URLTemplate string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Clock stamps recorded uploads. Defaults to clock.Real().
	Clock clock.Clock
}

// Store implements imagebackend.Protocol and imagebackend.URLResolver
// over a SQLite upload index.
type Store struct {
	pool        *sqlitepool.Pool
	urlTemplate string
	logger      *slog.Logger
	clock       clock.Clock
}

// Upload describes one completed upload.
type Upload struct {
	Channel imagebackend.Channel
	MD5     imageid.Digest
	Size    int64
	Type    image.Type
	Width   int
	Height  int

	// URL is where the server said the upload can be fetched. Optional.
	URL string
}

// Open opens (creating if needed) the upload index at cfg.Path.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	storeClock := cfg.Clock
	if storeClock == nil {
		storeClock = clock.Real()
	}
	if cfg.URLTemplate != "" && !strings.Contains(cfg.URLTemplate, PlaceholderMD5) {
		return nil, fmt.Errorf("localstore: URL template %q has no %s placeholder", cfg.URLTemplate, PlaceholderMD5)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitepool.Migrate(conn, migrations)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("localstore: %w", err)
	}

	store := &Store{
		pool:        pool,
		urlTemplate: cfg.URLTemplate,
		logger:      logger,
		clock:       storeClock,
	}

	// Fail at Open rather than on first query if the schema cannot be
	// applied.
	if err := pool.With(context.Background(), func(*sqlite.Conn) error { return nil }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("localstore: initializing %s: %w", cfg.Path, err)
	}
	return store, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Install registers the store as the registry's Protocol and
// URLResolver, and the offline factory as its Factory.
func (s *Store) Install(registry *imagebackend.Registry) error {
	if err := offline.Install(registry); err != nil {
		return err
	}
	if err := registry.Provide(imagebackend.ProtocolService, imagebackend.Value(s)); err != nil {
		return err
	}
	return registry.Provide(imagebackend.URLService, imagebackend.Value(s))
}

// RecordUpload stores or refreshes an upload. Recording the same
// digest in the same channel again replaces the earlier row.
func (s *Store) RecordUpload(ctx context.Context, upload Upload) (err error) {
	if err := upload.Channel.Validate(); err != nil {
		return fmt.Errorf("localstore: %w", err)
	}
	if upload.Size <= 0 {
		return fmt.Errorf("localstore: upload of %s has no size", upload.MD5)
	}
	if upload.Width < 0 || upload.Height < 0 {
		return fmt.Errorf("localstore: upload of %s has negative dimensions", upload.MD5)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("localstore: record upload: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("localstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `INSERT INTO uploads
		(channel_kind, channel_id, md5, size, image_type, width, height, url, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_kind, channel_id, md5) DO UPDATE SET
			size = excluded.size,
			image_type = excluded.image_type,
			width = excluded.width,
			height = excluded.height,
			url = CASE WHEN excluded.url = '' THEN uploads.url ELSE excluded.url END,
			uploaded_at = excluded.uploaded_at`,
		&sqlitex.ExecOptions{
			Args: []any{
				int(upload.Channel.Kind),
				upload.Channel.ID,
				upload.MD5[:],
				upload.Size,
				int(upload.Type),
				upload.Width,
				upload.Height,
				upload.URL,
				s.clock.Now().UnixMilli(),
			},
		})
	if err != nil {
		return fmt.Errorf("localstore: recording %s: %w", upload.MD5, err)
	}

	s.logger.Debug("upload recorded",
		"md5", upload.MD5.String(),
		"size", upload.Size,
		"channel", upload.Channel.String(),
	)
	return nil
}

// IsUploaded implements imagebackend.Protocol.
func (s *Store) IsUploaded(ctx context.Context, session imagebackend.Session, query imagebackend.UploadQuery) (bool, error) {
	if query.Size <= 0 {
		return false, nil
	}

	sql := `SELECT 1 FROM uploads WHERE md5 = ? AND size = ? LIMIT 1`
	args := []any{query.MD5[:], query.Size}
	if !query.Channel.IsZero() {
		sql = `SELECT 1 FROM uploads WHERE md5 = ? AND size = ?
			AND ((channel_kind = ? AND channel_id = ?) OR channel_kind = 0)
			LIMIT 1`
		args = append(args, int(query.Channel.Kind), query.Channel.ID)
	}

	var found bool
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, sql, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(*sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	})
	if err != nil {
		return false, fmt.Errorf("localstore: presence of %s: %w", query.MD5, err)
	}
	return found, nil
}

// QueryURL implements imagebackend.URLResolver.
func (s *Store) QueryURL(ctx context.Context, session imagebackend.Session, img image.Image) (string, error) {
	digest := img.MD5()

	var url string
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`SELECT url FROM uploads WHERE md5 = ? AND url != '' ORDER BY uploaded_at DESC LIMIT 1`,
			&sqlitex.ExecOptions{
				Args: []any{digest[:]},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					url = stmt.ColumnText(0)
					return nil
				},
			})
	})
	if err != nil {
		return "", fmt.Errorf("localstore: URL of %s: %w", img.ID(), err)
	}
	if url != "" {
		return url, nil
	}
	if s.urlTemplate == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, img.ID())
	}
	return RenderURL(s.urlTemplate, img), nil
}

// RenderURL expands a URL template for img.
func RenderURL(template string, img image.Image) string {
	return strings.NewReplacer(
		PlaceholderMD5, img.MD5().String(),
		PlaceholderFormat, img.Type().FormatName(),
	).Replace(template)
}
