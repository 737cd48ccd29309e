// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"errors"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

// GetAccountHeader returns the latest header of [id].
func (s *Store) GetAccountHeader(id ids.AccountID) (*types.AccountHeader, error) {
	if header, ok := s.headerCache.Get(id); ok {
		return header, nil
	}

	b, err := s.db.Get(latestAccountHeadersTable.key(id.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrAccountNotFound.WithMessagef("%s", id)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	header, err := types.ParseAccountHeader(b)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	s.headerCache.Put(id, header)
	return header, nil
}

// AccountHeaders returns the latest header of every tracked account.
func (s *Store) AccountHeaders() ([]*types.AccountHeader, error) {
	it := s.db.NewIteratorWithPrefix(latestAccountHeadersTable.prefix())
	defer it.Release()

	var headers []*types.AccountHeader
	for it.Next() {
		header, err := types.ParseAccountHeader(it.Value())
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		headers = append(headers, header)
	}
	return headers, wrapStoreErr(it.Error())
}

// HistoricalAccountHeader returns the header of [id] as written at exactly
// [nonce].
func (s *Store) HistoricalAccountHeader(id ids.AccountID, nonce uint64) (*types.AccountHeader, error) {
	b, err := s.db.Get(accountNonceKey(historicalAccountHeadersTable, id, nonce))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrAccountNotFound.WithMessagef("%s at nonce %d", id, nonce)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	header, err := types.ParseAccountHeader(b)
	return header, wrapDeserializeErr(err)
}

// SetAccountLocked flips the local lock flag on [id]'s latest row. The lock
// is client-side metadata and is never written to historical rows.
func (s *Store) SetAccountLocked(id ids.AccountID, locked bool) error {
	header, err := s.GetAccountHeader(id)
	if err != nil {
		return err
	}
	header.Locked = locked

	w := s.NewWriteBatch()
	if err := w.putLatestHeader(header); err != nil {
		return err
	}
	return w.Commit()
}

// AddAccount registers a new account to track. The header must satisfy the
// seed rule: nonce 0 requires the derivation seed.
func (s *Store) AddAccount(update *types.AccountUpdate) error {
	if err := update.Header.Verify(); err != nil {
		return wrapStoreErr(err)
	}
	w := s.NewWriteBatch()
	if err := w.PutAccountUpdate(update); err != nil {
		return err
	}
	return w.Commit()
}

// WatchAccount registers header-only tracking of an account the client holds
// no keys for.
func (s *Store) WatchAccount(header *types.AccountHeader) error {
	watched := *header
	watched.Watched = true
	return s.AddAccount(&types.AccountUpdate{Header: &watched})
}

// PutAccountUpdate applies one account state transition: an append-only
// historical row at the update's nonce plus, when the nonce advances, a
// replacement of the latest row. Re-delivery of an already recorded
// (id, nonce) pair is a no-op, so sync retries are idempotent.
func (w *WriteBatch) PutAccountUpdate(update *types.AccountUpdate) error {
	header := update.Header
	id := header.ID

	histKey := accountNonceKey(historicalAccountHeadersTable, id, header.Nonce)
	seen, err := w.s.db.Has(histKey)
	if err != nil {
		return wrapStoreErr(err)
	}
	if seen {
		return nil
	}

	// Historical continuity is assumed, not enforced: the node is expected to
	// deliver the full nonce chain, so a gap is only worth a breadcrumb.
	if header.Nonce > 0 {
		prevSeen, err := w.s.db.Has(accountNonceKey(historicalAccountHeadersTable, id, header.Nonce-1))
		if err != nil {
			return wrapStoreErr(err)
		}
		if !prevSeen {
			w.s.log.Debug("historical nonce gap",
				zap.Stringer("account", id),
				zap.Uint64("nonce", header.Nonce),
			)
		}
	}

	histHeader := *header
	histHeader.Locked = false
	if err := w.b.Put(histKey, histHeader.Bytes()); err != nil {
		return wrapStoreErr(err)
	}

	advanced, err := w.maybeAdvanceLatest(header)
	if err != nil {
		return err
	}

	// Historical delta rows are written even when the latest row does not
	// advance (a backfilled old nonce); the latest projections only move
	// forward.
	nonce := header.Nonce
	for i := range update.Slots {
		slot := &update.Slots[i]
		if err := w.putSlot(id, nonce, slot, advanced); err != nil {
			return err
		}
	}
	for _, name := range update.RemovedSlots {
		if err := w.removeSlot(id, nonce, name, advanced); err != nil {
			return err
		}
	}
	for i := range update.MapEntries {
		if err := w.putMapEntry(id, nonce, &update.MapEntries[i], advanced); err != nil {
			return err
		}
	}
	for i := range update.RemovedMapEntries {
		if err := w.removeMapEntry(id, nonce, &update.RemovedMapEntries[i], advanced); err != nil {
			return err
		}
	}
	for i := range update.Assets {
		if err := w.putAsset(id, nonce, &update.Assets[i], advanced); err != nil {
			return err
		}
	}
	for _, vaultKey := range update.RemovedAssets {
		if err := w.removeAsset(id, nonce, vaultKey, advanced); err != nil {
			return err
		}
	}
	return nil
}

// maybeAdvanceLatest replaces the latest row only when [header] carries a
// strictly higher nonce (or the account is new). The latest nonce never
// regresses, including across updates buffered in the same batch.
func (w *WriteBatch) maybeAdvanceLatest(header *types.AccountHeader) (bool, error) {
	current, ok := w.pendingLatest[header.ID]
	if !ok {
		stored, err := w.s.GetAccountHeader(header.ID)
		switch {
		case errors.Is(err, ErrAccountNotFound):
			return true, w.putLatestHeaderBuffered(header)
		case err != nil:
			return false, err
		}
		current = stored
	}
	if header.Nonce <= current.Nonce {
		return false, nil
	}

	next := *header
	// The lock and watch flags are local metadata; a chain-derived header
	// must not clobber them.
	next.Locked = current.Locked
	next.Watched = current.Watched
	if next.Nonce > 0 {
		next.Seed = nil
	}
	return true, w.putLatestHeaderBuffered(&next)
}

func (w *WriteBatch) putLatestHeaderBuffered(header *types.AccountHeader) error {
	if w.pendingLatest == nil {
		w.pendingLatest = make(map[ids.AccountID]*types.AccountHeader)
	}
	w.pendingLatest[header.ID] = header
	w.evictHeader(header.ID)
	return wrapStoreErr(w.b.Put(latestAccountHeadersTable.key(header.ID.Bytes()), header.Bytes()))
}

// putLatestHeader is putLatestHeaderBuffered for callers outside a sync
// apply.
func (w *WriteBatch) putLatestHeader(header *types.AccountHeader) error {
	return w.putLatestHeaderBuffered(header)
}

func (w *WriteBatch) putSlot(id ids.AccountID, nonce uint64, slot *types.StorageSlot, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Put(latestSlotKey(id, slot.Name), slot.Bytes()); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(w.b.Put(historicalSlotKey(id, slot.Name, nonce), presentValue(slot.Bytes())))
}

// removeSlot deletes the latest row and writes a historical tombstone. The
// audit trail keeps every prior value.
func (w *WriteBatch) removeSlot(id ids.AccountID, nonce uint64, name string, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Delete(latestSlotKey(id, name)); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(w.b.Put(historicalSlotKey(id, name, nonce), tombstoneValue()))
}

func (w *WriteBatch) putMapEntry(id ids.AccountID, nonce uint64, entry *types.StorageMapEntry, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Put(latestMapEntryKey(id, entry.SlotName, entry.Key), entry.Value); err != nil {
			return wrapStoreErr(err)
		}
	}
	key := historicalMapEntryKey(id, entry.SlotName, entry.Key, nonce)
	return wrapStoreErr(w.b.Put(key, presentValue(entry.Value)))
}

func (w *WriteBatch) removeMapEntry(id ids.AccountID, nonce uint64, entry *types.StorageMapEntry, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Delete(latestMapEntryKey(id, entry.SlotName, entry.Key)); err != nil {
			return wrapStoreErr(err)
		}
	}
	key := historicalMapEntryKey(id, entry.SlotName, entry.Key, nonce)
	return wrapStoreErr(w.b.Put(key, tombstoneValue()))
}

func (w *WriteBatch) putAsset(id ids.AccountID, nonce uint64, asset *types.Asset, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Put(latestAssetKey(id, asset.VaultKey), asset.Bytes()); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(w.b.Put(historicalAssetKey(id, asset.VaultKey, nonce), presentValue(asset.Bytes())))
}

func (w *WriteBatch) removeAsset(id ids.AccountID, nonce uint64, vaultKey ids.ID, updateLatest bool) error {
	if updateLatest {
		if err := w.b.Delete(latestAssetKey(id, vaultKey)); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(w.b.Put(historicalAssetKey(id, vaultKey, nonce), tombstoneValue()))
}

// StorageSlot returns the current value of a named slot.
func (s *Store) StorageSlot(id ids.AccountID, name string) (*types.StorageSlot, error) {
	b, err := s.db.Get(latestSlotKey(id, name))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrStorageSlotNotFound.WithMessagef("%s/%s", id, name)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	slot, err := types.ParseStorageSlot(b)
	return slot, wrapDeserializeErr(err)
}

// StorageSlotAt returns the value of a named slot as of [nonce], or false if
// the slot was absent (never written, or tombstoned) at that nonce.
func (s *Store) StorageSlotAt(id ids.AccountID, name string, nonce uint64) (*types.StorageSlot, bool, error) {
	raw, found, err := s.historicalAt(historicalSlotKey(id, name, 0), nonce)
	if err != nil || !found {
		return nil, false, err
	}
	slot, err := types.ParseStorageSlot(raw)
	if err != nil {
		return nil, false, wrapDeserializeErr(err)
	}
	return slot, true, nil
}

// VaultAssets returns every asset currently held by [id].
func (s *Store) VaultAssets(id ids.AccountID) ([]*types.Asset, error) {
	it := s.db.NewIteratorWithPrefix(latestAccountAssetsTable.key(id.Bytes()))
	defer it.Release()

	var assets []*types.Asset
	for it.Next() {
		asset, err := types.ParseAsset(it.Value())
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		assets = append(assets, asset)
	}
	return assets, wrapStoreErr(it.Error())
}

// VaultAssetAt returns the vault entry for [vaultKey] as of [nonce], or false
// if the entry was absent at that nonce.
func (s *Store) VaultAssetAt(id ids.AccountID, vaultKey ids.ID, nonce uint64) (*types.Asset, bool, error) {
	raw, found, err := s.historicalAt(historicalAssetKey(id, vaultKey, 0), nonce)
	if err != nil || !found {
		return nil, false, err
	}
	asset, err := types.ParseAsset(raw)
	if err != nil {
		return nil, false, wrapDeserializeErr(err)
	}
	return asset, true, nil
}

// FungibleBalance returns the current balance of [id] for assets issued by
// [faucet], zero when the vault holds none.
func (s *Store) FungibleBalance(id ids.AccountID, faucet ids.AccountID) (uint64, error) {
	asset := types.FungibleAsset(faucet, 0)
	b, err := s.db.Get(latestAssetKey(id, asset.VaultKey))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	stored, err := types.ParseAsset(b)
	if err != nil {
		return 0, wrapDeserializeErr(err)
	}
	return stored.Amount, nil
}

// historicalAt scans one entry's historical rows and returns the newest value
// written at or before [nonce]. The [probe] key must be the entry's row at
// nonce 0; its trailing 8 bytes are stripped to recover the scan prefix.
func (s *Store) historicalAt(probe []byte, nonce uint64) ([]byte, bool, error) {
	prefix := probe[:len(probe)-database.Uint64Size]

	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	var (
		raw       []byte
		tombstone bool
		found     bool
	)
	for it.Next() {
		key := it.Key()
		rowNonce, err := database.ParseUInt64(key[len(key)-database.Uint64Size:])
		if err != nil {
			return nil, false, wrapDeserializeErr(err)
		}
		if rowNonce > nonce {
			break
		}
		raw, tombstone, err = parseHistoricalValue(it.Value())
		if err != nil {
			return nil, false, wrapDeserializeErr(err)
		}
		found = true
	}
	if err := it.Error(); err != nil {
		return nil, false, wrapStoreErr(err)
	}
	if !found || tombstone {
		return nil, false, nil
	}
	return raw, true, nil
}
