// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store keeps the client's partial replica of network state: account
// headers with full history, note records and their lifecycle, the partial
// chain needed for inclusion proofs, and the bookkeeping around them. All
// cross-table writes go through one WriteBatch so that readers only ever
// observe fully committed states.
package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/cache"
	"github.com/veilnet-labs/veilclient/cache/lru"
	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
)

const headerCacheSize = 256

// Store is the single durable, shared mutable resource of the client.
// Multiple goroutines may read concurrently; writers serialize through
// WriteBatch commits.
type Store struct {
	log logging.Logger
	db  database.Database

	// Guards commits so that a batch becomes visible atomically with its
	// cache invalidations.
	commitLock sync.Mutex

	headerCache cache.Cacher[ids.AccountID, *types.AccountHeader]
}

// New opens a store over [db], running any pending schema migrations first. A
// migration ledger mismatch is fatal and non-retryable.
func New(db database.Database, log logging.Logger) (*Store, error) {
	s := &Store{
		log:         log,
		db:          db,
		headerCache: lru.NewCache[ids.AccountID, *types.AccountHeader](headerCacheSize),
	}
	if err := s.runMigrations(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	s.headerCache.Flush()
	return s.db.Close()
}

// Compact passes through to the backing database. A no-op on backends without
// compaction.
func (s *Store) Compact() error {
	return wrapStoreErr(s.db.Compact(nil, nil))
}

// NewWriteBatch starts an atomic multi-table write. Reads performed while
// building the batch observe the last committed state, never the batch's own
// pending writes. Account headers are the exception: the batch tracks the
// latest header it has written per account, so several updates for one
// account compose correctly within a single batch.
func (s *Store) NewWriteBatch() *WriteBatch {
	return &WriteBatch{
		s: s,
		b: s.db.NewBatch(),
	}
}

// WriteBatch accumulates writes across every table of the store and commits
// them as one atomic unit.
type WriteBatch struct {
	s *Store
	b database.Batch

	// Latest account headers written by this batch. Batch puts are
	// last-write-wins, so the latest-nonce comparison must see these rows
	// before the committed ones or an unordered delivery could regress the
	// latest projection.
	pendingLatest map[ids.AccountID]*types.AccountHeader

	evictHeaders []ids.AccountID
}

// Commit atomically applies the batch. Either every buffered operation is
// visible afterwards or, on error, none of them are.
func (w *WriteBatch) Commit() error {
	w.s.commitLock.Lock()
	defer w.s.commitLock.Unlock()

	if err := w.b.Write(); err != nil {
		return wrapStoreErr(err)
	}
	for _, id := range w.evictHeaders {
		w.s.headerCache.Evict(id)
	}
	w.s.log.Verbo("committed write batch",
		zap.Int("size", w.b.Size()),
	)
	return nil
}

func (w *WriteBatch) evictHeader(id ids.AccountID) {
	w.evictHeaders = append(w.evictHeaders, id)
}
