// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"github.com/veilnet-labs/veilclient/database"
)

// SyncHeight returns the block number of the most recently fully applied
// update. It is the sole source of truth for how far this replica is synced.
func (s *Store) SyncHeight() (uint64, error) {
	height, err := database.WithDefault(database.GetUInt64, s.db, stateSyncTable.key(), 0)
	return height, wrapStoreErr(err)
}

// SetSyncHeight advances the sync height as part of an atomic update apply.
func (w *WriteBatch) SetSyncHeight(height uint64) error {
	return wrapStoreErr(w.b.Put(stateSyncTable.key(), database.PackUInt64(height)))
}
