package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jacentio/guestbook/guestbook"
	"github.com/jacentio/guestbook/internal/config"
	"github.com/jacentio/guestbook/notify"
	"github.com/jacentio/guestbook/store"
)

// app bundles a Book with the backend and sinks it was opened on.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	book     *guestbook.Book
	closeKV  func() error
}

// withBook loads the configuration, opens the Book, runs fn and tears
// everything down again.
func withBook(cmd *cobra.Command, fn func(a *app) error) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return errors.Join(fn(a), a.close())
}

func newApp(ctx context.Context, cfg *config.Config, stderr io.Writer) (*app, error) {
	logger := cfg.Logger(stderr)

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	sink := notify.NewMetrics(registry, notify.Multi{
		notify.NewConsole(stderr, nil),
		notify.NewLog(logger),
	})

	book := guestbook.Open(ctx, kv, sink, cfg.Guestbook(), guestbook.WithLogger(logger))
	logger.Debug("guestbook opened",
		"backend", string(cfg.Backend),
		"entries", book.Len(),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		book:     book,
		closeKV:  closeKV,
	}, nil
}

func (a *app) close() error {
	a.book.Close()

	var errs []error
	if path := a.cfg.MetricsTextfile; path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if a.closeKV != nil {
		errs = append(errs, a.closeKV())
	}
	return errors.Join(errs...)
}

// openKV returns the configured backend and a function releasing it.
func openKV(ctx context.Context, cfg *config.Config) (guestbook.KV, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	case config.BackendSQLite:
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.BackendDynamoDB:
		client, err := newDynamoClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewDynamo(client, cfg.Dynamo()), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

// newDynamoClient builds a client from the default AWS credential chain.
// A configured endpoint points it at DynamoDB Local or another emulator.
func newDynamoClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}
