// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client assembles a ready-to-use state engine from a Config: the
// database, the store, the sync coordinator and the wallet, wired together.
package client

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veilnet-labs/veilclient/api"
	"github.com/veilnet-labs/veilclient/chainsync"
	"github.com/veilnet-labs/veilclient/config"
	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/database/leveldb"
	"github.com/veilnet-labs/veilclient/database/memdb"
	"github.com/veilnet-labs/veilclient/store"
	"github.com/veilnet-labs/veilclient/utils/logging"
	"github.com/veilnet-labs/veilclient/wallet"
)

// Client owns the full local stack for one replica.
type Client struct {
	log      logging.Logger
	db       database.Database
	store    *store.Store
	node     api.NodeClient
	sync     *chainsync.Coordinator
	wallet   *wallet.Wallet
	registry *prometheus.Registry
}

type options struct {
	node   api.NodeClient
	prover wallet.Prover
	log    logging.Logger
}

type Option func(*options)

// WithNodeClient overrides the JSON-RPC node client, typically with a fake.
func WithNodeClient(node api.NodeClient) Option {
	return func(o *options) {
		o.node = node
	}
}

// WithProver overrides the in-process prover, typically with a remote one.
func WithProver(prover wallet.Prover) Option {
	return func(o *options) {
		o.prover = prover
	}
}

func WithLogger(log logging.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func New(cfg config.Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.prover == nil {
		if cfg.ProverEndpoint != "" {
			o.prover = wallet.NewRemoteProverWithTimeout(cfg.ProverEndpoint, cfg.RequestTimeout)
		} else {
			o.prover = wallet.LocalProver{}
		}
	}
	if o.log == nil {
		o.log = logging.NewDefaultLogger("veilclient", cfg.LogLevel)
	}
	if o.node == nil {
		o.node = api.NewClientWithTimeout(cfg.NodeEndpoint, cfg.RequestTimeout)
	}

	var (
		db  database.Database
		err error
	)
	if cfg.DBInMemory {
		db = memdb.New()
	} else {
		db, err = leveldb.New(filepath.Join(cfg.DataDir, "db"))
		if err != nil {
			return nil, err
		}
	}

	s, err := store.New(db, o.log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	coordinator, err := chainsync.New(s, o.node, o.log,
		chainsync.WithRunTimeout(cfg.SyncTimeout),
		chainsync.WithMetricsRegisterer(cfg.MetricsNamespace, registry),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	w := wallet.New(s, o.node, o.prover, coordinator, o.log,
		wallet.WithPollFrequency(cfg.PollFrequency),
		wallet.WithCommitTimeout(cfg.CommitTimeout),
	)

	return &Client{
		log:      o.log,
		db:       db,
		store:    s,
		node:     o.node,
		sync:     coordinator,
		wallet:   w,
		registry: registry,
	}, nil
}

func (c *Client) Store() *store.Store {
	return c.store
}

func (c *Client) Sync() *chainsync.Coordinator {
	return c.sync
}

func (c *Client) Wallet() *wallet.Wallet {
	return c.wallet
}

func (c *Client) Log() logging.Logger {
	return c.log
}

// MetricsGatherer exposes the client's metric registry for scraping.
func (c *Client) MetricsGatherer() prometheus.Gatherer {
	return c.registry
}

func (c *Client) Close() error {
	err := c.db.Close()
	c.log.Stop()
	return err
}
