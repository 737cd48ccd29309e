// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/database/memdb"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(memdb.New(), logging.NoLog{})
	require.NoError(t, err)
	return s
}

func newTestID(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	id[ids.IDLen-1] = b
	return id
}

func newTestNullifier(b byte) ids.Nullifier {
	return ids.Nullifier(newTestID(b))
}

func newTestAccountID(seed string) ids.AccountID {
	return ids.NewAccountID(ids.AccountRegularPrivate, false, []byte(seed))
}

func newTestHeader(id ids.AccountID, nonce uint64) *types.AccountHeader {
	h := &types.AccountHeader{
		ID:                id,
		Nonce:             nonce,
		CodeCommitment:    newTestID(0x0c),
		StorageCommitment: newTestID(byte(nonce)),
		VaultRoot:         newTestID(0x0f),
	}
	if nonce == 0 {
		h.Seed = []byte("seed")
	}
	return h
}

func applyUpdate(t *testing.T, s *Store, update *types.AccountUpdate) {
	t.Helper()

	w := s.NewWriteBatch()
	require.NoError(t, w.PutAccountUpdate(update))
	require.NoError(t, w.Commit())
}

func TestAddAccountRequiresSeedAtNonceZero(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	header := newTestHeader(newTestAccountID("a"), 0)
	header.Seed = nil
	err := s.AddAccount(&types.AccountUpdate{Header: header})
	require.Error(err)

	header.Seed = []byte("seed")
	require.NoError(s.AddAccount(&types.AccountUpdate{Header: header}))

	got, err := s.GetAccountHeader(header.ID)
	require.NoError(err)
	require.Equal(header.Nonce, got.Nonce)
	require.Equal(header.Seed, got.Seed)
}

func TestLatestNonceNeverRegresses(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 0)})
	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 3)})

	// Backfilling an intermediate nonce records history but leaves the latest
	// row untouched.
	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 2)})

	latest, err := s.GetAccountHeader(id)
	require.NoError(err)
	require.Equal(uint64(3), latest.Nonce)

	hist, err := s.HistoricalAccountHeader(id, 2)
	require.NoError(err)
	require.Equal(uint64(2), hist.Nonce)
}

func TestLatestNonceNeverRegressesWithinOneBatch(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")
	faucet := newTestAccountID("faucet")

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 0)})

	// Both updates land in one batch, higher nonce first. The committed rows
	// cannot answer the latest-nonce comparison for the second put, the
	// batch's own writes must.
	w := s.NewWriteBatch()
	require.NoError(w.PutAccountUpdate(&types.AccountUpdate{
		Header: newTestHeader(id, 2),
		Assets: []types.Asset{types.FungibleAsset(faucet, 700)},
	}))
	require.NoError(w.PutAccountUpdate(&types.AccountUpdate{
		Header: newTestHeader(id, 1),
		Assets: []types.Asset{types.FungibleAsset(faucet, 1000)},
	}))
	require.NoError(w.Commit())

	latest, err := s.GetAccountHeader(id)
	require.NoError(err)
	require.Equal(uint64(2), latest.Nonce)

	balance, err := s.FungibleBalance(id, faucet)
	require.NoError(err)
	require.Equal(uint64(700), balance)

	// Both nonces still land in history.
	for nonce := uint64(1); nonce <= 2; nonce++ {
		hist, err := s.HistoricalAccountHeader(id, nonce)
		require.NoError(err)
		require.Equal(nonce, hist.Nonce)
	}
}

func TestSeedDroppedOncePastNonceZero(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 0)})
	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 1)})

	latest, err := s.GetAccountHeader(id)
	require.NoError(err)
	require.Equal(uint64(1), latest.Nonce)
	require.Empty(latest.Seed)

	// The nonce 0 historical row keeps the seed for derivation audits.
	hist, err := s.HistoricalAccountHeader(id, 0)
	require.NoError(err)
	require.Equal([]byte("seed"), hist.Seed)
}

func TestPutAccountUpdateIdempotent(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")

	update := &types.AccountUpdate{
		Header: newTestHeader(id, 0),
		Assets: []types.Asset{types.FungibleAsset(newTestAccountID("faucet"), 100)},
	}
	applyUpdate(t, s, update)

	// Re-delivery of the same (id, nonce) must not disturb the stored rows,
	// even if the payload differs.
	replay := &types.AccountUpdate{
		Header: newTestHeader(id, 0),
		Assets: []types.Asset{types.FungibleAsset(newTestAccountID("faucet"), 999)},
	}
	applyUpdate(t, s, replay)

	balance, err := s.FungibleBalance(id, newTestAccountID("faucet"))
	require.NoError(err)
	require.Equal(uint64(100), balance)
}

func TestLockFlagSurvivesChainUpdates(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 0)})
	require.NoError(s.SetAccountLocked(id, true))

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 1)})

	latest, err := s.GetAccountHeader(id)
	require.NoError(err)
	require.True(latest.Locked)

	// Historical rows never carry the local lock flag.
	hist, err := s.HistoricalAccountHeader(id, 1)
	require.NoError(err)
	require.False(hist.Locked)

	require.NoError(s.SetAccountLocked(id, false))
	latest, err = s.GetAccountHeader(id)
	require.NoError(err)
	require.False(latest.Locked)
}

func TestStorageSlotHistory(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")

	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 0),
		Slots: []types.StorageSlot{{
			Name:  "owner",
			Type:  types.SlotTypeValue,
			Value: []byte("alice"),
		}},
	})
	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 1),
		Slots: []types.StorageSlot{{
			Name:  "owner",
			Type:  types.SlotTypeValue,
			Value: []byte("bob"),
		}},
	})
	applyUpdate(t, s, &types.AccountUpdate{
		Header:       newTestHeader(id, 2),
		RemovedSlots: []string{"owner"},
	})

	// Latest view: removed.
	_, err := s.StorageSlot(id, "owner")
	require.Error(err)

	// Nonce 0 and 1 resolve to their respective writes; nonce 2 hits the
	// tombstone; a nonce between writes resolves to the newest row at or
	// before it.
	slot, ok, err := s.StorageSlotAt(id, "owner", 0)
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("alice"), slot.Value)

	slot, ok, err = s.StorageSlotAt(id, "owner", 1)
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("bob"), slot.Value)

	_, ok, err = s.StorageSlotAt(id, "owner", 2)
	require.NoError(err)
	require.False(ok)

	_, ok, err = s.StorageSlotAt(id, "never-written", 2)
	require.NoError(err)
	require.False(ok)
}

func TestVaultAssetHistoryAndBalance(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")
	faucet := newTestAccountID("faucet")

	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 0),
		Assets: []types.Asset{types.FungibleAsset(faucet, 1000)},
	})
	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 1),
		Assets: []types.Asset{types.FungibleAsset(faucet, 700)},
	})

	balance, err := s.FungibleBalance(id, faucet)
	require.NoError(err)
	require.Equal(uint64(700), balance)

	vaultKey := types.FungibleAsset(faucet, 0).VaultKey
	asset, ok, err := s.VaultAssetAt(id, vaultKey, 0)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(1000), asset.Amount)

	applyUpdate(t, s, &types.AccountUpdate{
		Header:        newTestHeader(id, 2),
		RemovedAssets: []ids.ID{vaultKey},
	})

	balance, err = s.FungibleBalance(id, faucet)
	require.NoError(err)
	require.Zero(balance)

	_, ok, err = s.VaultAssetAt(id, vaultKey, 2)
	require.NoError(err)
	require.False(ok)

	asset, ok, err = s.VaultAssetAt(id, vaultKey, 1)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(700), asset.Amount)
}

func TestBackfilledNonceDoesNotClobberLatestProjections(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	id := newTestAccountID("a")
	faucet := newTestAccountID("faucet")

	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(id, 0)})
	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 5),
		Assets: []types.Asset{types.FungibleAsset(faucet, 500)},
	})

	// An old delta arriving late must land in history only.
	applyUpdate(t, s, &types.AccountUpdate{
		Header: newTestHeader(id, 3),
		Assets: []types.Asset{types.FungibleAsset(faucet, 50)},
	})

	balance, err := s.FungibleBalance(id, faucet)
	require.NoError(err)
	require.Equal(uint64(500), balance)

	vaultKey := types.FungibleAsset(faucet, 0).VaultKey
	asset, ok, err := s.VaultAssetAt(id, vaultKey, 3)
	require.NoError(err)
	require.True(ok)
	require.Equal(uint64(50), asset.Amount)
}

func TestAccountHeadersAndAddresses(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	a := newTestAccountID("a")
	b := newTestAccountID("b")
	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(a, 0)})
	applyUpdate(t, s, &types.AccountUpdate{Header: newTestHeader(b, 0)})

	headers, err := s.AccountHeaders()
	require.NoError(err)
	require.Len(headers, 2)

	w := s.NewWriteBatch()
	require.NoError(w.AddAddress(a, "vn1qabc"))
	require.NoError(w.AddAddress(a, "vn1qdef"))
	require.NoError(w.AddAddress(b, "vn1qzzz"))
	require.NoError(w.Commit())

	addrs, err := s.AddressesForAccount(a)
	require.NoError(err)
	require.Len(addrs, 2)
	require.Contains(addrs, "vn1qabc")
	require.Contains(addrs, "vn1qdef")

	w = s.NewWriteBatch()
	require.NoError(w.RemoveAddressesForAccount(a))
	require.NoError(w.Commit())

	addrs, err = s.AddressesForAccount(a)
	require.NoError(err)
	require.Empty(addrs)

	addrs, err = s.AddressesForAccount(b)
	require.NoError(err)
	require.Equal([]string{"vn1qzzz"}, addrs)
}
