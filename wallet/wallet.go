// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet builds, executes, proves and submits transactions against
// the local state replica. Each transaction moves through an explicit flow:
// Execute -> Prove -> Submit -> WaitForCommit, with per-stage retry so a slow
// or failing prover never forces re-execution.
package wallet

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/api"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/store"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
)

// Syncer is the slice of the sync coordinator the wallet needs: WaitForCommit
// drives syncs to observe its transaction's resolution.
type Syncer interface {
	Sync(ctx context.Context) (*types.SyncSummary, error)
}

// Wallet coordinates transaction flows over one store.
type Wallet struct {
	log    logging.Logger
	store  *store.Store
	node   api.NodeClient
	prover Prover
	syncer Syncer

	pollFrequency  time.Duration
	commitTimeout  time.Duration
	commitObserver CommitObserver

	// Serializes the check-and-set of account lock flags.
	lockMu sync.Mutex
}

func New(
	s *store.Store,
	node api.NodeClient,
	prover Prover,
	syncer Syncer,
	log logging.Logger,
	opts ...Option,
) *Wallet {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Wallet{
		log:           log,
		store:         s,
		node:          node,
		prover:        prover,
		syncer:        syncer,
		pollFrequency:  o.pollFrequency,
		commitTimeout:  o.commitTimeout,
		commitObserver: o.commitObserver,
	}
}

// lockAccount marks [id] as the base of an outstanding local transaction. A
// second concurrent flow against the same account fails fast instead of
// queuing: two transactions would race on the same nonce.
func (w *Wallet) lockAccount(id ids.AccountID) error {
	w.lockMu.Lock()
	defer w.lockMu.Unlock()

	header, err := w.store.GetAccountHeader(id)
	if err != nil {
		return err
	}
	if header.Locked {
		return store.ErrAccountLocked.WithMessagef("%s", id)
	}
	return w.store.SetAccountLocked(id, true)
}

func (w *Wallet) unlockAccount(id ids.AccountID) {
	w.lockMu.Lock()
	defer w.lockMu.Unlock()

	if err := w.store.SetAccountLocked(id, false); err != nil {
		w.log.Warn("failed to unlock account",
			zap.Stringer("account", id),
			zap.Error(err),
		)
	}
}

// SendTransaction drives a request through the full flow and blocks until the
// transaction resolves on chain.
func (w *Wallet) SendTransaction(ctx context.Context, req *Request) (*types.TransactionRecord, error) {
	flow, err := w.NewFlow(req)
	if err != nil {
		return nil, err
	}
	if err := flow.Execute(); err != nil {
		return nil, err
	}
	if err := flow.Prove(ctx); err != nil {
		flow.Abandon()
		return nil, err
	}
	if _, err := flow.Submit(ctx); err != nil {
		flow.Abandon()
		return nil, err
	}
	return flow.WaitForCommit(ctx)
}
