// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chainsync reconciles the local store against a remote node. At most
// one sync batch is in flight per store; concurrent callers coalesce onto it
// and share its result. The apply step is one atomic store write: either the
// whole remote update becomes visible or none of it does.
package chainsync

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veilnet-labs/veilclient/api"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/store"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
	"github.com/veilnet-labs/veilclient/utils/set"
	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	ErrSyncTimeout     = verrs.New(verrs.CodeSyncTimeout, "sync timed out")
	ErrStaleGeneration = verrs.New(verrs.CodeStaleGeneration, "sync generation superseded")

	errApplyFailed = verrs.New(verrs.CodeSyncApplyFailed, "atomic sync apply failed")
)

// Coordinator owns the sync state machine for one store. Idle -> Fetching ->
// Applying -> Idle on success; a failure before the apply leaves the store
// untouched and is safe to retry, a failure during the apply is fatal.
type Coordinator struct {
	log      logging.Logger
	store    *store.Store
	node     api.NodeClient
	screener Screener
	lock     StoreLock
	metrics  *metrics

	runTimeout time.Duration

	mu         sync.Mutex
	generation uint64
	inflight   *inflightSync
	lastDone   *inflightSync
}

// inflightSync is one sync batch. Waiters block on done; after it closes,
// summary and err are immutable.
type inflightSync struct {
	generation uint64
	done       chan struct{}

	summary *types.SyncSummary
	err     error
}

func New(s *store.Store, node api.NodeClient, log logging.Logger, opts ...Option) (*Coordinator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m, err := newMetrics(o.metricsNamespace, o.registerer)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		log:        log,
		store:      s,
		node:       node,
		screener:   o.screener,
		lock:       o.lock,
		metrics:    m,
		runTimeout: o.runTimeout,
	}, nil
}

// Sync brings the store up to date with the node and reports what changed. If
// a sync is already in flight, the call joins it instead of triggering a
// second fetch, and receives that sync's result or error.
//
// [ctx] bounds only this caller's wait. The underlying batch keeps running:
// cancellation never aborts a partially applied atomic write.
func (c *Coordinator) Sync(ctx context.Context) (*types.SyncSummary, error) {
	c.mu.Lock()
	if in := c.inflight; in != nil {
		c.mu.Unlock()
		c.metrics.syncsCoalesced.Inc()
		return c.await(ctx, in)
	}

	c.generation++
	in := &inflightSync{
		generation: c.generation,
		done:       make(chan struct{}),
	}
	c.inflight = in
	c.mu.Unlock()

	go c.run(in)
	return c.await(ctx, in)
}

// Generation reports the id of the most recently started sync batch.
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// AwaitGeneration returns the result of sync batch [generation]. A caller
// whose wait timed out may re-await the generation it joined; once a newer
// batch has started and the old result is gone, the wait is rejected as stale
// rather than resolved with the wrong result.
func (c *Coordinator) AwaitGeneration(ctx context.Context, generation uint64) (*types.SyncSummary, error) {
	c.mu.Lock()
	if in := c.inflight; in != nil && in.generation == generation {
		c.mu.Unlock()
		return c.await(ctx, in)
	}
	if last := c.lastDone; last != nil && last.generation == generation {
		c.mu.Unlock()
		return last.summary, last.err
	}
	c.mu.Unlock()
	return nil, ErrStaleGeneration.WithMessagef("generation %d", generation)
}

func (c *Coordinator) await(ctx context.Context, in *inflightSync) (*types.SyncSummary, error) {
	select {
	case <-in.done:
		return in.summary, in.err
	case <-ctx.Done():
		// A caller that cancelled its own wait gets the cancellation back,
		// not a timeout.
		if err := ctx.Err(); !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, ErrSyncTimeout.WithCause(ctx.Err())
	}
}

func (c *Coordinator) run(in *inflightSync) {
	defer func() {
		c.mu.Lock()
		c.inflight = nil
		c.lastDone = in
		c.mu.Unlock()
		close(in.done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.runTimeout)
	defer cancel()

	release, err := c.lock.Acquire(ctx)
	if err != nil {
		in.err = ErrSyncTimeout.WithCause(err)
		c.metrics.syncsFailed.Inc()
		return
	}
	defer release()

	c.metrics.syncsStarted.Inc()
	in.summary, in.err = c.syncOnce(ctx)
	if in.err != nil {
		c.metrics.syncsFailed.Inc()
		c.log.Error("sync failed",
			zap.Uint64("generation", in.generation),
			zap.Error(in.err),
		)
		return
	}
	c.log.Debug("sync applied",
		zap.Uint64("generation", in.generation),
		zap.Uint64("height", in.summary.BlockNum),
	)
}

// syncOnce performs one fetch+apply. Failures returned before apply() leave
// the store untouched.
func (c *Coordinator) syncOnce(ctx context.Context) (*types.SyncSummary, error) {
	height, err := c.store.SyncHeight()
	if err != nil {
		return nil, err
	}
	tracked, err := c.store.AccountHeaders()
	if err != nil {
		return nil, err
	}
	tags, err := c.store.NoteTags()
	if err != nil {
		return nil, err
	}
	nullifiers, err := c.store.UnspentNullifiers()
	if err != nil {
		return nil, err
	}

	accountIDs := make([]ids.AccountID, len(tracked))
	for i, header := range tracked {
		accountIDs[i] = header.ID
	}
	tagValues := make([]uint32, len(tags))
	for i, tag := range tags {
		tagValues[i] = tag.Tag
	}

	// The state update and the nullifier spend-check are independent node
	// queries; fetch them concurrently.
	var (
		update *types.StateUpdate
		spent  []types.NullifierUpdate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		update, err = c.node.StateUpdate(gctx, height, tagValues, nullifiers, accountIDs)
		return err
	})
	g.Go(func() error {
		if len(nullifiers) == 0 {
			return nil
		}
		var err error
		spent, err = c.node.CheckNullifiers(gctx, nullifiers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c.apply(update, spent, tracked, height)
}

// apply fans the remote update out across every table in one atomic batch.
// Any failure here is fatal, not retried: nothing was committed, and a
// failing batch indicates a store bug rather than a transient condition.
func (c *Coordinator) apply(
	update *types.StateUpdate,
	spent []types.NullifierUpdate,
	tracked []*types.AccountHeader,
	prevHeight uint64,
) (*types.SyncSummary, error) {
	newHeight := max(update.SyncHeight, prevHeight)
	summary := &types.SyncSummary{BlockNum: newHeight}
	w := c.store.NewWriteBatch()

	committedNotes := set.NewSet[ids.ID](len(update.InputNotes))
	noteHeights := set.NewSet[uint64](len(update.InputNotes))
	batchNotes := make(map[ids.Nullifier]*types.InputNote, len(update.InputNotes))

	for _, note := range update.InputNotes {
		incoming := note
		if _, err := c.store.GetInputNote(note.ID); errors.Is(err, store.ErrNoteNotFound) {
			if relevant, serr := c.screener.Screen(note, tracked); serr != nil || !relevant {
				if serr != nil {
					c.log.Warn("note failed screening",
						zap.Stringer("note", note.ID),
						zap.Error(serr),
					)
				}
				unverified := *note
				unverified.State = types.NoteStateUnverified
				incoming = &unverified
			}
		} else if err != nil {
			return nil, errApplyFailed.WithCause(err)
		}

		if err := w.UpsertInputNote(incoming); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
		batchNotes[incoming.Nullifier] = incoming
		if incoming.State == types.NoteStateCommitted {
			committedNotes.Add(incoming.ID)
			summary.CommittedNotes = append(summary.CommittedNotes, incoming.ID)
			if incoming.InclusionHeight != 0 {
				noteHeights.Add(incoming.InclusionHeight)
			}
		}
	}

	for _, note := range update.OutputNotes {
		if err := w.UpsertOutputNote(note); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
		if note.State == types.OutputNoteStateCommitted {
			committedNotes.Add(note.ID)
		}
	}

	for i := range update.NoteScripts {
		if err := w.PutNoteScript(&update.NoteScripts[i]); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
	}

	for _, tu := range update.Transactions {
		if err := w.ApplyTransactionUpdate(tu); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
		if tu.Discarded {
			summary.DiscardedTxs = append(summary.DiscardedTxs, tu.ID)
		} else {
			summary.CommittedTxs = append(summary.CommittedTxs, tu.ID)
		}
	}

	// An account's updates apply in nonce order so the latest projections end
	// at the chain head even when the node delivers them unordered.
	slices.SortFunc(update.Accounts, func(a, b types.AccountUpdate) int {
		if byID := bytes.Compare(a.Header.ID.Bytes(), b.Header.ID.Bytes()); byID != 0 {
			return byID
		}
		return cmp.Compare(a.Header.Nonce, b.Header.Nonce)
	})
	for i := range update.Accounts {
		account := &update.Accounts[i]
		if err := w.PutAccountUpdate(account); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
		summary.UpdatedAccounts = append(summary.UpdatedAccounts, account.Header.ID)
	}

	if err := c.applySpentNullifiers(w, batchNotes, update.SpentNullifiers, spent, summary); err != nil {
		return nil, err
	}

	if err := w.SetSyncHeight(newHeight); err != nil {
		return nil, errApplyFailed.WithCause(err)
	}

	for i := range update.BlockHeaders {
		header := &update.BlockHeaders[i]
		if err := w.PutBlockHeader(header, noteHeights.Contains(header.Number)); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
	}

	if len(update.MmrNodes) > 0 {
		indices := make([]uint64, len(update.MmrNodes))
		nodes := make([]ids.ID, len(update.MmrNodes))
		for i, node := range update.MmrNodes {
			indices[i] = node.Index
			nodes[i] = node.Node
		}
		if err := w.PutMmrNodes(indices, nodes); err != nil {
			return nil, errApplyFailed.WithCause(err)
		}
	}

	if err := w.RemoveNoteTagsForNotes(committedNotes.List()); err != nil {
		return nil, errApplyFailed.WithCause(err)
	}

	if err := w.Commit(); err != nil {
		return nil, errApplyFailed.WithCause(err)
	}

	c.metrics.syncHeight.Set(float64(newHeight))
	c.metrics.notesCommitted.Add(float64(len(summary.CommittedNotes)))
	c.metrics.notesConsumed.Add(float64(len(summary.ConsumedNotes)))

	// Header pruning runs outside the batch; a failure here does not undo an
	// already-applied sync.
	if _, err := c.store.PruneBlockHeaders(); err != nil {
		c.log.Warn("header pruning failed",
			zap.Error(err),
		)
	}
	return summary, nil
}

// applySpentNullifiers marks notes consumed elsewhere. Both the update's spent
// list and the explicit spend-check answer feed in; duplicates collapse. A
// note delivered and spent within the same update is found through
// [batchNotes], the committed rows do not carry it yet.
func (c *Coordinator) applySpentNullifiers(
	w *store.WriteBatch,
	batchNotes map[ids.Nullifier]*types.InputNote,
	fromUpdate []types.NullifierUpdate,
	fromCheck []types.NullifierUpdate,
	summary *types.SyncSummary,
) error {
	seen := set.NewSet[ids.Nullifier](len(fromUpdate) + len(fromCheck))
	for _, nu := range append(fromUpdate, fromCheck...) {
		if seen.Contains(nu.Nullifier) {
			continue
		}
		seen.Add(nu.Nullifier)

		note, ok := batchNotes[nu.Nullifier]
		if !ok {
			var err error
			note, err = c.store.InputNoteByNullifier(nu.Nullifier)
			if errors.Is(err, store.ErrNoteNotFound) {
				continue
			}
			if err != nil {
				return errApplyFailed.WithCause(err)
			}
		}
		if note.State.Consumed() {
			continue
		}

		consumed := *note
		// A note this client was consuming itself (Processing, tagged with the
		// consuming transaction) is authenticated by the publication of its
		// nullifier; anything else was spent by another replica.
		if note.State == types.NoteStateProcessing &&
			bytes.Equal(note.StateData, nu.TransactionID.Bytes()) {
			consumed.State = types.NoteStateConsumedAuthenticated
		} else {
			consumed.State = types.NoteStateConsumedExternal
		}
		consumed.StateData = nu.TransactionID.Bytes()
		if err := w.UpsertInputNote(&consumed); err != nil {
			return errApplyFailed.WithCause(err)
		}
		summary.ConsumedNotes = append(summary.ConsumedNotes, note.ID)
	}
	return nil
}

// ConsumableNotes returns the committed notes [accountID] could consume.
func (c *Coordinator) ConsumableNotes(accountID ids.AccountID) ([]*types.InputNote, error) {
	header, err := c.store.GetAccountHeader(accountID)
	if err != nil {
		return nil, err
	}
	committed, err := c.store.QueryInputNotes(store.FilterByState(types.NoteStateCommitted))
	if err != nil {
		return nil, err
	}

	tracked := []*types.AccountHeader{header}
	var consumable []*types.InputNote
	for _, note := range committed {
		if relevant, err := c.screener.Screen(note, tracked); err == nil && relevant {
			consumable = append(consumable, note)
		}
	}
	return consumable, nil
}
