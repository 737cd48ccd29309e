// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"

	"github.com/veilnet-labs/veilclient/ids"
)

var errSeedRequired = errors.New("account header at nonce 0 requires a seed")

// AccountHeader is one state transition of a tracked account. The store keeps
// one latest row per id and an append-only historical row per (id, nonce).
type AccountHeader struct {
	ID                ids.AccountID
	Nonce             uint64
	CodeCommitment    ids.ID
	StorageCommitment ids.ID
	VaultRoot         ids.ID

	// Seed is only present while Nonce == 0. It is required to prove the id
	// derivation of a freshly created account.
	Seed []byte

	// Locked is set while a locally built transaction against this account is
	// outstanding.
	Locked bool

	// Watched accounts are tracked header-only. The client holds no keys for
	// them.
	Watched bool
}

func (h *AccountHeader) Verify() error {
	if h.Nonce == 0 && len(h.Seed) == 0 {
		return errSeedRequired
	}
	return nil
}

func (h *AccountHeader) Bytes() []byte {
	p := NewPacker(128)
	p.PackAccountID(h.ID)
	p.PackUInt64(h.Nonce)
	p.PackID(h.CodeCommitment)
	p.PackID(h.StorageCommitment)
	p.PackID(h.VaultRoot)
	p.PackBytes(h.Seed)
	p.PackBool(h.Locked)
	p.PackBool(h.Watched)
	return p.Bytes
}

func ParseAccountHeader(b []byte) (*AccountHeader, error) {
	p := NewUnpacker(b)
	h := &AccountHeader{
		ID:                p.UnpackAccountID(),
		Nonce:             p.UnpackUInt64(),
		CodeCommitment:    p.UnpackID(),
		StorageCommitment: p.UnpackID(),
		VaultRoot:         p.UnpackID(),
	}
	if seed := p.UnpackBytes(); len(seed) > 0 {
		h.Seed = seed
	}
	h.Locked = p.UnpackBool()
	h.Watched = p.UnpackBool()
	return h, p.Err
}

// StorageSlotType distinguishes scalar slots from map slots.
type StorageSlotType byte

const (
	SlotTypeValue StorageSlotType = iota
	SlotTypeMap
)

// StorageSlot is the latest value of one named slot of an account's storage.
type StorageSlot struct {
	Name  string
	Type  StorageSlotType
	Value []byte
}

func (s *StorageSlot) Bytes() []byte {
	p := NewPacker(64)
	p.PackStr(s.Name)
	p.PackByte(byte(s.Type))
	p.PackBytes(s.Value)
	return p.Bytes
}

func ParseStorageSlot(b []byte) (*StorageSlot, error) {
	p := NewUnpacker(b)
	s := &StorageSlot{
		Name:  p.UnpackStr(),
		Type:  StorageSlotType(p.UnpackByte()),
		Value: p.UnpackBytes(),
	}
	return s, p.Err
}

// StorageMapEntry is one key of a map-typed storage slot.
type StorageMapEntry struct {
	SlotName string
	Key      []byte
	Value    []byte
}

// Asset is one vault entry of an account. VaultKey uniquely addresses one
// fungible-or-nonfungible asset slot; for fungible assets the key is derived
// from the issuing faucet.
type Asset struct {
	VaultKey     ids.ID
	FaucetPrefix uint32
	FaucetID     ids.AccountID
	Amount       uint64
}

// FungibleAsset builds the vault entry for [amount] units issued by [faucet].
func FungibleAsset(faucet ids.AccountID, amount uint64) Asset {
	var key ids.ID
	copy(key[:], faucet.Bytes())
	return Asset{
		VaultKey:     key,
		FaucetPrefix: faucet.Prefix(),
		FaucetID:     faucet,
		Amount:       amount,
	}
}

func (a *Asset) Bytes() []byte {
	p := NewPacker(64)
	p.PackID(a.VaultKey)
	p.PackUInt32(a.FaucetPrefix)
	p.PackAccountID(a.FaucetID)
	p.PackUInt64(a.Amount)
	return p.Bytes
}

func ParseAsset(b []byte) (*Asset, error) {
	p := NewUnpacker(b)
	a := &Asset{
		VaultKey:     p.UnpackID(),
		FaucetPrefix: p.UnpackUInt32(),
		FaucetID:     p.UnpackAccountID(),
		Amount:       p.UnpackUInt64(),
	}
	return a, p.Err
}

// AccountUpdate is the per-account portion of a state update: the new header
// plus the storage and vault deltas that produced it. Removed entries are
// tombstoned historically rather than erased.
type AccountUpdate struct {
	Header *AccountHeader

	Slots        []StorageSlot
	RemovedSlots []string

	MapEntries        []StorageMapEntry
	RemovedMapEntries []StorageMapEntry

	Assets        []Asset
	RemovedAssets []ids.ID
}
