// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/veilnet-labs/veilclient/ids"
)

// StateUpdate is the batch of changes a node reports since a given sync
// height. It is applied to the store as one atomic write.
type StateUpdate struct {
	// SyncHeight is the chain tip this update brings the client to.
	SyncHeight uint64

	BlockHeaders []BlockHeader
	MmrNodes     []MmrNode

	Accounts []AccountUpdate

	InputNotes  []*InputNote
	OutputNotes []*OutputNote
	NoteScripts []NoteScript

	// SpentNullifiers reports notes consumed elsewhere since the last sync.
	SpentNullifiers []NullifierUpdate

	Transactions []TransactionUpdate
}

// NullifierUpdate reports that a nullifier was published at [BlockNum].
type NullifierUpdate struct {
	Nullifier     ids.Nullifier
	BlockNum      uint64
	TransactionID ids.ID
}

// TransactionUpdate reports the chain-side resolution of a transaction.
type TransactionUpdate struct {
	ID       ids.ID
	BlockNum uint64

	Discarded    bool
	DiscardCause string
}

func (u *AccountUpdate) Bytes() []byte {
	p := NewPacker(512)
	p.PackBytes(u.Header.Bytes())

	p.PackUInt32(uint32(len(u.Slots)))
	for i := range u.Slots {
		p.PackBytes(u.Slots[i].Bytes())
	}
	p.PackUInt32(uint32(len(u.RemovedSlots)))
	for _, name := range u.RemovedSlots {
		p.PackStr(name)
	}

	packMapEntries := func(entries []StorageMapEntry) {
		p.PackUInt32(uint32(len(entries)))
		for i := range entries {
			p.PackStr(entries[i].SlotName)
			p.PackBytes(entries[i].Key)
			p.PackBytes(entries[i].Value)
		}
	}
	packMapEntries(u.MapEntries)
	packMapEntries(u.RemovedMapEntries)

	p.PackUInt32(uint32(len(u.Assets)))
	for i := range u.Assets {
		p.PackBytes(u.Assets[i].Bytes())
	}
	p.PackUInt32(uint32(len(u.RemovedAssets)))
	for _, vaultKey := range u.RemovedAssets {
		p.PackID(vaultKey)
	}
	return p.Bytes
}

func ParseAccountUpdate(b []byte) (*AccountUpdate, error) {
	p := NewUnpacker(b)
	u := &AccountUpdate{}

	header, err := ParseAccountHeader(p.UnpackBytes())
	if err != nil {
		return nil, err
	}
	u.Header = header

	numSlots := p.UnpackUInt32()
	for i := uint32(0); i < numSlots && p.Err == nil; i++ {
		slot, err := ParseStorageSlot(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.Slots = append(u.Slots, *slot)
	}
	numRemoved := p.UnpackUInt32()
	for i := uint32(0); i < numRemoved && p.Err == nil; i++ {
		u.RemovedSlots = append(u.RemovedSlots, p.UnpackStr())
	}

	unpackMapEntries := func() []StorageMapEntry {
		var entries []StorageMapEntry
		num := p.UnpackUInt32()
		for i := uint32(0); i < num && p.Err == nil; i++ {
			entries = append(entries, StorageMapEntry{
				SlotName: p.UnpackStr(),
				Key:      p.UnpackBytes(),
				Value:    p.UnpackBytes(),
			})
		}
		return entries
	}
	u.MapEntries = unpackMapEntries()
	u.RemovedMapEntries = unpackMapEntries()

	numAssets := p.UnpackUInt32()
	for i := uint32(0); i < numAssets && p.Err == nil; i++ {
		asset, err := ParseAsset(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.Assets = append(u.Assets, *asset)
	}
	numRemovedAssets := p.UnpackUInt32()
	for i := uint32(0); i < numRemovedAssets && p.Err == nil; i++ {
		u.RemovedAssets = append(u.RemovedAssets, p.UnpackID())
	}
	return u, p.Err
}

func (u *StateUpdate) Bytes() []byte {
	p := NewPacker(4096)
	p.PackUInt64(u.SyncHeight)

	p.PackUInt32(uint32(len(u.BlockHeaders)))
	for i := range u.BlockHeaders {
		p.PackBytes(u.BlockHeaders[i].Bytes())
	}
	p.PackUInt32(uint32(len(u.MmrNodes)))
	for i := range u.MmrNodes {
		p.PackUInt64(u.MmrNodes[i].Index)
		p.PackID(u.MmrNodes[i].Node)
	}
	p.PackUInt32(uint32(len(u.Accounts)))
	for i := range u.Accounts {
		p.PackBytes(u.Accounts[i].Bytes())
	}
	p.PackUInt32(uint32(len(u.InputNotes)))
	for _, note := range u.InputNotes {
		p.PackBytes(note.Bytes())
	}
	p.PackUInt32(uint32(len(u.OutputNotes)))
	for _, note := range u.OutputNotes {
		p.PackBytes(note.Bytes())
	}
	p.PackUInt32(uint32(len(u.NoteScripts)))
	for i := range u.NoteScripts {
		p.PackID(u.NoteScripts[i].Root)
		p.PackBytes(u.NoteScripts[i].Code)
	}
	p.PackUInt32(uint32(len(u.SpentNullifiers)))
	for i := range u.SpentNullifiers {
		p.PackFixedBytes(u.SpentNullifiers[i].Nullifier.Bytes())
		p.PackUInt64(u.SpentNullifiers[i].BlockNum)
		p.PackID(u.SpentNullifiers[i].TransactionID)
	}
	p.PackUInt32(uint32(len(u.Transactions)))
	for i := range u.Transactions {
		p.PackID(u.Transactions[i].ID)
		p.PackUInt64(u.Transactions[i].BlockNum)
		p.PackBool(u.Transactions[i].Discarded)
		p.PackStr(u.Transactions[i].DiscardCause)
	}
	return p.Bytes
}

func ParseStateUpdate(b []byte) (*StateUpdate, error) {
	p := NewUnpacker(b)
	u := &StateUpdate{SyncHeight: p.UnpackUInt64()}

	numHeaders := p.UnpackUInt32()
	for i := uint32(0); i < numHeaders && p.Err == nil; i++ {
		header, err := ParseBlockHeader(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.BlockHeaders = append(u.BlockHeaders, *header)
	}
	numNodes := p.UnpackUInt32()
	for i := uint32(0); i < numNodes && p.Err == nil; i++ {
		u.MmrNodes = append(u.MmrNodes, MmrNode{
			Index: p.UnpackUInt64(),
			Node:  p.UnpackID(),
		})
	}
	numAccounts := p.UnpackUInt32()
	for i := uint32(0); i < numAccounts && p.Err == nil; i++ {
		account, err := ParseAccountUpdate(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.Accounts = append(u.Accounts, *account)
	}
	numInputNotes := p.UnpackUInt32()
	for i := uint32(0); i < numInputNotes && p.Err == nil; i++ {
		note, err := ParseInputNote(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.InputNotes = append(u.InputNotes, note)
	}
	numOutputNotes := p.UnpackUInt32()
	for i := uint32(0); i < numOutputNotes && p.Err == nil; i++ {
		note, err := ParseOutputNote(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		u.OutputNotes = append(u.OutputNotes, note)
	}
	numScripts := p.UnpackUInt32()
	for i := uint32(0); i < numScripts && p.Err == nil; i++ {
		u.NoteScripts = append(u.NoteScripts, NoteScript{
			Root: p.UnpackID(),
			Code: p.UnpackBytes(),
		})
	}
	numNullifiers := p.UnpackUInt32()
	for i := uint32(0); i < numNullifiers && p.Err == nil; i++ {
		nullifier, err := ids.ToNullifier(p.UnpackFixedBytes(ids.IDLen))
		if err != nil {
			return nil, err
		}
		u.SpentNullifiers = append(u.SpentNullifiers, NullifierUpdate{
			Nullifier:     nullifier,
			BlockNum:      p.UnpackUInt64(),
			TransactionID: p.UnpackID(),
		})
	}
	numTxs := p.UnpackUInt32()
	for i := uint32(0); i < numTxs && p.Err == nil; i++ {
		u.Transactions = append(u.Transactions, TransactionUpdate{
			ID:           p.UnpackID(),
			BlockNum:     p.UnpackUInt64(),
			Discarded:    p.UnpackBool(),
			DiscardCause: p.UnpackStr(),
		})
	}
	return u, p.Err
}

// SyncSummary reports what one applied update changed.
type SyncSummary struct {
	BlockNum uint64

	CommittedNotes  []ids.ID
	ConsumedNotes   []ids.ID
	UpdatedAccounts []ids.AccountID
	CommittedTxs    []ids.ID
	DiscardedTxs    []ids.ID
}
