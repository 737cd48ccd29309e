// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"errors"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/set"
)

// Block header rows carry a leading relevance byte ahead of the header bytes
// so the has-client-notes flag can be read without deserializing the header.

// PutBlockHeader inserts [header] if it is not already present. For a header
// already present only the has-client-notes flag is touched, and only ever
// from false to true: two screening passes with partial knowledge must merge
// monotonically.
func (w *WriteBatch) PutBlockHeader(header *types.BlockHeader, hasClientNotes bool) error {
	key := blockHeadersTable.key(database.PackUInt64(header.Number))

	existing, err := w.s.db.Get(key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		flag := database.BoolFalse
		if hasClientNotes {
			flag = database.BoolTrue
		}
		value := append([]byte{byte(flag)}, header.Bytes()...)
		return wrapStoreErr(w.b.Put(key, value))
	case err != nil:
		return wrapStoreErr(err)
	case len(existing) == 0:
		return wrapDeserializeErr(errCorruptHistoricalRow)
	}

	if hasClientNotes && existing[0] == database.BoolFalse {
		upgraded := append([]byte{database.BoolTrue}, existing[1:]...)
		return wrapStoreErr(w.b.Put(key, upgraded))
	}
	return nil
}

// GetBlockHeader returns the header at [blockNum] along with its
// has-client-notes flag.
func (s *Store) GetBlockHeader(blockNum uint64) (*types.BlockHeader, bool, error) {
	b, err := s.db.Get(blockHeadersTable.key(database.PackUInt64(blockNum)))
	if err != nil {
		return nil, false, wrapStoreErr(err)
	}
	if len(b) == 0 {
		return nil, false, wrapDeserializeErr(errCorruptHistoricalRow)
	}
	header, err := types.ParseBlockHeader(b[1:])
	if err != nil {
		return nil, false, wrapDeserializeErr(err)
	}
	return header, b[0] == database.BoolTrue, nil
}

// BlockNumbers returns every retained block height in ascending order.
func (s *Store) BlockNumbers() ([]uint64, error) {
	it := s.db.NewIteratorWithPrefix(blockHeadersTable.prefix())
	defer it.Release()

	var nums []uint64
	for it.Next() {
		key := it.Key()
		num, err := database.ParseUInt64(key[1:])
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		nums = append(nums, num)
	}
	return nums, wrapStoreErr(it.Error())
}

// PutMmrNodes bulk upserts partial chain nodes. The two lists must pair up
// exactly; a length mismatch is a fatal caller bug, not a retryable
// condition.
func (w *WriteBatch) PutMmrNodes(indices []uint64, nodes []ids.ID) error {
	if len(indices) != len(nodes) {
		return ErrMmrLengthMismatch.WithMessagef("%d indices, %d nodes", len(indices), len(nodes))
	}
	for i, index := range indices {
		key := partialBlockchainNodesTable.key(database.PackUInt64(index))
		if err := w.b.Put(key, nodes[i].Bytes()); err != nil {
			return wrapStoreErr(err)
		}
	}
	return nil
}

// GetMmrNode returns the partial chain node at in-order [index].
func (s *Store) GetMmrNode(index uint64) (ids.ID, error) {
	node, err := database.GetID(s.db, partialBlockchainNodesTable.key(database.PackUInt64(index)))
	return node, wrapStoreErr(err)
}

// PruneBlockHeaders removes headers that no longer anchor anything: not
// genesis, not the current sync height, not flagged as holding client notes,
// and not referenced by an unconsumed note's inclusion proof. Safe to run
// after every sync.
func (s *Store) PruneBlockHeaders() (int, error) {
	syncHeight, err := s.SyncHeight()
	if err != nil {
		return 0, err
	}

	protected := set.Of[uint64](0, syncHeight)
	notes, err := s.QueryInputNotes(FilterAll())
	if err != nil {
		return 0, err
	}
	for _, note := range notes {
		if !note.State.Consumed() && note.InclusionHeight != 0 {
			protected.Add(note.InclusionHeight)
		}
	}

	it := s.db.NewIteratorWithPrefix(blockHeadersTable.prefix())
	defer it.Release()

	w := s.NewWriteBatch()
	pruned := 0
	for it.Next() {
		key := it.Key()
		num, err := database.ParseUInt64(key[1:])
		if err != nil {
			return 0, wrapDeserializeErr(err)
		}
		value := it.Value()
		if len(value) == 0 {
			return 0, wrapDeserializeErr(errCorruptHistoricalRow)
		}
		if value[0] == database.BoolTrue || protected.Contains(num) {
			continue
		}
		if err := w.b.Delete(key); err != nil {
			return 0, wrapStoreErr(err)
		}
		pruned++
	}
	if err := it.Error(); err != nil {
		return 0, wrapStoreErr(err)
	}
	if pruned == 0 {
		return 0, nil
	}
	if err := w.Commit(); err != nil {
		return 0, err
	}
	s.log.Debug("pruned block headers",
		zap.Int("count", pruned),
	)
	return pruned, nil
}
