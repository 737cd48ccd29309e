// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/veilnet-labs/veilclient/ids"
)

// TransactionStatus is the lifecycle position of a tracked transaction.
// Records are immutable once committed or discarded except for this field.
type TransactionStatus byte

const (
	TransactionPending TransactionStatus = iota
	TransactionCommitted
	TransactionDiscarded
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionPending:
		return "pending"
	case TransactionCommitted:
		return "committed"
	case TransactionDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// TransactionRecord tracks one transaction the client submitted or observed.
type TransactionRecord struct {
	ID         ids.ID
	AccountID  ids.AccountID
	Details    []byte
	ScriptRoot ids.ID

	// BlockNum is the inclusion height; meaningful only once Status is
	// TransactionCommitted.
	BlockNum uint64

	Status TransactionStatus
	// DiscardCause is set iff Status is TransactionDiscarded.
	DiscardCause string
}

func (r *TransactionRecord) Bytes() []byte {
	p := NewPacker(160)
	p.PackID(r.ID)
	p.PackAccountID(r.AccountID)
	p.PackBytes(r.Details)
	p.PackID(r.ScriptRoot)
	p.PackUInt64(r.BlockNum)
	p.PackByte(byte(r.Status))
	p.PackStr(r.DiscardCause)
	return p.Bytes
}

func ParseTransactionRecord(b []byte) (*TransactionRecord, error) {
	p := NewUnpacker(b)
	r := &TransactionRecord{
		ID:           p.UnpackID(),
		AccountID:    p.UnpackAccountID(),
		Details:      p.UnpackBytes(),
		ScriptRoot:   p.UnpackID(),
		BlockNum:     p.UnpackUInt64(),
		Status:       TransactionStatus(p.UnpackByte()),
		DiscardCause: p.UnpackStr(),
	}
	return r, p.Err
}

// ExecutedTransaction is the result of running a transaction program locally.
// Nothing is persisted until the proven form is submitted.
type ExecutedTransaction struct {
	ID        ids.ID
	AccountID ids.AccountID

	// InitialHeader is the account state the execution was based on; the
	// submit step re-validates that it is still the latest.
	InitialHeader *AccountHeader
	FinalHeader   *AccountHeader

	FinalSlots  []StorageSlot
	FinalAssets []Asset

	ConsumedNotes []*InputNote
	OutputNotes   []*OutputNote

	ScriptRoot ids.ID
	Details    []byte
}

func (t *ExecutedTransaction) Bytes() []byte {
	p := NewPacker(1024)
	p.PackID(t.ID)
	p.PackAccountID(t.AccountID)
	p.PackBytes(t.InitialHeader.Bytes())
	p.PackBytes(t.FinalHeader.Bytes())

	p.PackUInt32(uint32(len(t.FinalSlots)))
	for i := range t.FinalSlots {
		p.PackBytes(t.FinalSlots[i].Bytes())
	}
	p.PackUInt32(uint32(len(t.FinalAssets)))
	for i := range t.FinalAssets {
		p.PackBytes(t.FinalAssets[i].Bytes())
	}
	p.PackUInt32(uint32(len(t.ConsumedNotes)))
	for _, note := range t.ConsumedNotes {
		p.PackBytes(note.Bytes())
	}
	p.PackUInt32(uint32(len(t.OutputNotes)))
	for _, note := range t.OutputNotes {
		p.PackBytes(note.Bytes())
	}
	p.PackID(t.ScriptRoot)
	p.PackBytes(t.Details)
	return p.Bytes
}

func ParseExecutedTransaction(b []byte) (*ExecutedTransaction, error) {
	p := NewUnpacker(b)
	t := &ExecutedTransaction{
		ID:        p.UnpackID(),
		AccountID: p.UnpackAccountID(),
	}
	initial, err := ParseAccountHeader(p.UnpackBytes())
	if err != nil {
		return nil, err
	}
	t.InitialHeader = initial
	final, err := ParseAccountHeader(p.UnpackBytes())
	if err != nil {
		return nil, err
	}
	t.FinalHeader = final

	numSlots := p.UnpackUInt32()
	for i := uint32(0); i < numSlots && p.Err == nil; i++ {
		slot, err := ParseStorageSlot(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		t.FinalSlots = append(t.FinalSlots, *slot)
	}
	numAssets := p.UnpackUInt32()
	for i := uint32(0); i < numAssets && p.Err == nil; i++ {
		asset, err := ParseAsset(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		t.FinalAssets = append(t.FinalAssets, *asset)
	}
	numConsumed := p.UnpackUInt32()
	for i := uint32(0); i < numConsumed && p.Err == nil; i++ {
		note, err := ParseInputNote(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		t.ConsumedNotes = append(t.ConsumedNotes, note)
	}
	numOutputs := p.UnpackUInt32()
	for i := uint32(0); i < numOutputs && p.Err == nil; i++ {
		note, err := ParseOutputNote(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		t.OutputNotes = append(t.OutputNotes, note)
	}
	t.ScriptRoot = p.UnpackID()
	t.Details = p.UnpackBytes()
	return t, p.Err
}

// ProvenTransaction wraps an executed transaction with its proof.
type ProvenTransaction struct {
	Executed *ExecutedTransaction
	Proof    []byte
}

func (t *ProvenTransaction) Bytes() []byte {
	p := NewPacker(2048)
	p.PackBytes(t.Executed.Bytes())
	p.PackBytes(t.Proof)
	return p.Bytes
}

func ParseProvenTransaction(b []byte) (*ProvenTransaction, error) {
	p := NewUnpacker(b)
	executed, err := ParseExecutedTransaction(p.UnpackBytes())
	if err != nil {
		return nil, err
	}
	return &ProvenTransaction{
		Executed: executed,
		Proof:    p.UnpackBytes(),
	}, p.Err
}
