// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chatimage/cmd/chatimage/cli"
	"github.com/bureau-foundation/chatimage/lib/config"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/localstore"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/offline"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/remote"
	"github.com/bureau-foundation/chatimage/lib/imagefactory"
	"github.com/bureau-foundation/chatimage/lib/imagepresence"
)

// backendFlags are shared by the commands that talk to a backend.
type backendFlags struct {
	configPath string
	users      []string
	metrics    bool
}

func (f *backendFlags) addTo(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "config file (default: $"+config.EnvVar+")")
	flagSet.StringSliceVar(&f.users, "user", nil, "session user ID, replacing the configured sessions (repeatable)")
	flagSet.BoolVar(&f.metrics, "metrics", false, "print presence metrics to stderr when done")
}

// backend is an opened, installed image backend and the facades over
// it.
type backend struct {
	config   *config.Config
	logger   *slog.Logger
	images   *imagefactory.Constructor
	presence *imagepresence.Service

	// store is set only for the local backend.
	store *localstore.Store

	registry     *prometheus.Registry
	printMetrics bool
	closers      []func() error
}

func (f *backendFlags) open() (*backend, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logger := cli.NewCommandLogger(cfg.Log.SlogLevel(), cfg.Log.Format).With("backend", string(cfg.Backend))
	b := &backend{
		config:       cfg,
		logger:       logger,
		registry:     prometheus.NewRegistry(),
		printMetrics: f.metrics,
	}

	registry := imagebackend.NewRegistry()
	if err := b.install(registry); err != nil {
		b.Close()
		return nil, err
	}

	metrics, err := imagepresence.NewMetrics(b.registry)
	if err != nil {
		b.Close()
		return nil, err
	}

	users := cfg.Sessions
	if len(f.users) > 0 {
		users = f.users
	}

	capabilities := imagebackend.NewCapabilities(registry, logger)
	b.images = imagefactory.New(capabilities)
	b.presence = imagepresence.New(capabilities, imagebackend.Users(users...),
		imagepresence.WithLogger(logger),
		imagepresence.WithMetrics(metrics),
	)
	return b, nil
}

func (b *backend) install(registry *imagebackend.Registry) error {
	switch b.config.Backend {
	case config.BackendOffline:
		return offline.Install(registry)

	case config.BackendLocal:
		if err := b.config.EnsureStateDir(); err != nil {
			return err
		}
		store, err := localstore.Open(localstore.Config{
			Path:        b.config.Local.Path,
			PoolSize:    b.config.Local.PoolSize,
			URLTemplate: b.config.Local.URLTemplate,
			Logger:      b.logger,
		})
		if err != nil {
			return err
		}
		b.store = store
		b.closers = append(b.closers, store.Close)
		return store.Install(registry)

	case config.BackendRemote:
		client, err := remote.New(remote.Config{
			BaseURL:    b.config.Remote.BaseURL,
			Token:      b.config.Remote.Token,
			HTTPClient: &http.Client{Timeout: b.config.Remote.Timeout},
			Logger:     b.logger,
		})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() error {
			client.CloseIdleConnections()
			return nil
		})
		return client.Install(registry)

	default:
		return fmt.Errorf("unknown backend %q", b.config.Backend)
	}
}

// Close releases backend resources and, with --metrics, writes the
// collected presence metrics in Prometheus text format to stderr.
func (b *backend) Close() error {
	var errs []error
	if b.printMetrics {
		errs = append(errs, writeMetrics(b.registry))
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	return errors.Join(errs...)
}

func writeMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(os.Stderr, expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}
