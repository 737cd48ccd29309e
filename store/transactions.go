// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"errors"

	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// GetTransaction returns the record for [txID].
func (s *Store) GetTransaction(txID ids.ID) (*types.TransactionRecord, error) {
	b, err := s.db.Get(transactionsTable.key(txID.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	record, err := types.ParseTransactionRecord(b)
	return record, wrapDeserializeErr(err)
}

// Transactions returns a snapshot of every record with [status].
func (s *Store) Transactions(status types.TransactionStatus) ([]*types.TransactionRecord, error) {
	it := s.db.NewIteratorWithPrefix(transactionsTable.prefix())
	defer it.Release()

	var records []*types.TransactionRecord
	for it.Next() {
		record, err := types.ParseTransactionRecord(it.Value())
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		if record.Status == status {
			records = append(records, record)
		}
	}
	return records, wrapStoreErr(it.Error())
}

// UpsertTransactionRecord writes [record]. Committed and discarded records
// are immutable apart from their status payload, so re-writes of resolved
// records are refused silently by keeping the stored resolution.
func (w *WriteBatch) UpsertTransactionRecord(record *types.TransactionRecord) error {
	existing, err := w.s.GetTransaction(record.ID)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
	case err != nil:
		return err
	case existing.Status != types.TransactionPending:
		return nil
	}
	return wrapStoreErr(w.b.Put(transactionsTable.key(record.ID.Bytes()), record.Bytes()))
}

// ApplyTransactionUpdate resolves a pending record against its chain-side
// outcome.
func (w *WriteBatch) ApplyTransactionUpdate(update types.TransactionUpdate) error {
	record, err := w.s.GetTransaction(update.ID)
	if errors.Is(err, ErrTransactionNotFound) {
		// Submitted by another replica sharing this account; nothing local to
		// resolve.
		return nil
	}
	if err != nil {
		return err
	}
	if record.Status != types.TransactionPending {
		return nil
	}

	if update.Discarded {
		record.Status = types.TransactionDiscarded
		record.DiscardCause = update.DiscardCause
	} else {
		record.Status = types.TransactionCommitted
		record.BlockNum = update.BlockNum
	}
	return wrapStoreErr(w.b.Put(transactionsTable.key(record.ID.Bytes()), record.Bytes()))
}
