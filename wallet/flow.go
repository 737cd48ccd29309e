// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	ErrInvalidFlowStage     = verrs.New(verrs.CodeInvalidFlowStage, "operation not valid in current flow stage")
	ErrTransactionDiscarded = verrs.New(verrs.CodeTransactionDiscarded, "transaction discarded by the network")

	errCommitTimeout = verrs.New(verrs.CodeSyncTimeout, "timed out waiting for transaction commit")
)

// Stage is the flow's position in Execute -> Prove -> Submit -> WaitForCommit.
type Stage byte

const (
	StageIdle Stage = iota
	StageExecuted
	StageProven
	StageSubmitted
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageExecuted:
		return "executed"
	case StageProven:
		return "proven"
	case StageSubmitted:
		return "submitted"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Flow drives one transaction through its stages. Each stage may be retried
// after a failure without redoing completed work; a flow is never stuck. Not
// safe for concurrent use.
type Flow struct {
	w   *Wallet
	req *Request

	stage     Stage
	locked    bool
	submitted bool
	executed  *types.ExecutedTransaction
	proven    *types.ProvenTransaction
}

// NewFlow validates [req] and returns an idle flow for it. Validation fails
// fast, before any execution or locking.
func (w *Wallet) NewFlow(req *Request) (*Flow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &Flow{
		w:   w,
		req: req,
	}, nil
}

func (f *Flow) Stage() Stage {
	return f.stage
}

// TransactionID is zero until the flow has executed.
func (f *Flow) TransactionID() ids.ID {
	if f.executed == nil {
		return ids.Empty
	}
	return f.executed.ID
}

// Execute locks the account and runs the transaction program against current
// local state. On failure the account is unlocked and the flow stays idle.
func (f *Flow) Execute() error {
	if f.stage != StageIdle {
		return ErrInvalidFlowStage.WithMessagef("execute in stage %s", f.stage)
	}

	if err := f.w.lockAccount(f.req.AccountID); err != nil {
		return err
	}
	executed, err := f.w.execute(f.req)
	if err != nil {
		f.w.unlockAccount(f.req.AccountID)
		return err
	}

	f.executed = executed
	f.locked = true
	f.stage = StageExecuted
	return nil
}

// Prove delegates to the prover. On failure the executed result is kept and
// the call may be retried without re-executing.
func (f *Flow) Prove(ctx context.Context) error {
	if f.stage != StageExecuted {
		return ErrInvalidFlowStage.WithMessagef("prove in stage %s", f.stage)
	}

	proven, err := f.w.prover.Prove(ctx, f.executed)
	if err != nil {
		return err
	}
	f.proven = proven
	f.stage = StageProven
	return nil
}

// Submit sends the proven transaction to the node and persists its pending
// effect: the transaction record, the candidate account state, the consumed
// note transitions and the emitted notes, all in one atomic write. Local
// reads reflect the pending transaction before the next sync confirms it.
func (f *Flow) Submit(ctx context.Context) (ids.ID, error) {
	if f.stage != StageProven {
		return ids.Empty, ErrInvalidFlowStage.WithMessagef("submit in stage %s", f.stage)
	}

	// A retry after a failed local write must not hand the node the same
	// transaction twice.
	if !f.submitted {
		if err := f.w.node.SubmitTransaction(ctx, f.proven); err != nil {
			return ids.Empty, err
		}
		f.submitted = true
	}

	executed := f.executed
	txID := executed.ID

	w := f.w.store.NewWriteBatch()
	if err := w.UpsertTransactionRecord(&types.TransactionRecord{
		ID:         txID,
		AccountID:  executed.AccountID,
		Details:    executed.Details,
		ScriptRoot: executed.ScriptRoot,
		Status:     types.TransactionPending,
	}); err != nil {
		return ids.Empty, err
	}

	if err := w.PutAccountUpdate(&types.AccountUpdate{
		Header: executed.FinalHeader,
		Slots:  executed.FinalSlots,
		Assets: executed.FinalAssets,
	}); err != nil {
		return ids.Empty, err
	}

	unauthenticated := make(map[ids.ID]struct{}, len(f.req.UnauthenticatedNotes))
	for _, id := range f.req.UnauthenticatedNotes {
		unauthenticated[id] = struct{}{}
	}
	for _, note := range executed.ConsumedNotes {
		consuming := *note
		if _, ok := unauthenticated[note.ID]; ok {
			// No chain-anchored proof will ever back this consumption.
			consuming.State = types.NoteStateConsumedUnauthenticated
		} else {
			consuming.State = types.NoteStateProcessing
		}
		consuming.StateData = txID.Bytes()
		if err := w.UpsertInputNote(&consuming); err != nil {
			return ids.Empty, err
		}
	}

	for _, note := range executed.OutputNotes {
		if err := w.UpsertOutputNote(note); err != nil {
			return ids.Empty, err
		}
	}

	if err := w.Commit(); err != nil {
		return ids.Empty, err
	}

	f.w.unlockAccount(executed.AccountID)
	f.locked = false
	f.stage = StageSubmitted

	f.w.log.Info("transaction submitted",
		zap.Stringer("tx", txID),
		zap.Stringer("account", executed.AccountID),
	)
	return txID, nil
}

// Abandon releases the account lock of a flow that will not continue. Safe to
// call at any stage.
func (f *Flow) Abandon() {
	if f.locked {
		f.w.unlockAccount(f.req.AccountID)
		f.locked = false
	}
	f.submitted = false
	f.stage = StageIdle
}

// WaitForCommit polls sync and the local transaction record until the
// transaction leaves Pending. The bound is wall clock, not block height. A
// discarded transaction is a terminal error.
func (f *Flow) WaitForCommit(ctx context.Context) (*types.TransactionRecord, error) {
	if f.stage != StageSubmitted {
		return nil, ErrInvalidFlowStage.WithMessagef("wait in stage %s", f.stage)
	}

	ctx, cancel := context.WithTimeout(ctx, f.w.commitTimeout)
	defer cancel()

	txID := f.executed.ID
	for {
		if _, err := f.w.syncer.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, errCommitTimeout.WithCause(ctx.Err())
			}
			return nil, err
		}

		record, err := f.w.store.GetTransaction(txID)
		if err != nil {
			return nil, err
		}
		if f.w.commitObserver != nil {
			f.w.commitObserver(txID, record.Status)
		}
		switch record.Status {
		case types.TransactionCommitted:
			f.stage = StageComplete
			return record, nil
		case types.TransactionDiscarded:
			f.stage = StageComplete
			return nil, ErrTransactionDiscarded.WithMessagef("%s", record.DiscardCause)
		}

		select {
		case <-ctx.Done():
			return nil, errCommitTimeout.WithCause(ctx.Err())
		case <-time.After(f.w.pollFrequency):
		}
	}
}
