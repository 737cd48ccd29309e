// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/verrs"
)

// NoteState is the lifecycle position of an input note. Transitions are
// one-directional except that Committed may fall back to Expected when the
// chain reorganizes; the consumed states are terminal for a nullifier.
type NoteState byte

const (
	// NoteStateExpected: the note is known locally but not yet seen on chain.
	NoteStateExpected NoteState = iota
	// NoteStateUnverified: the note was observed but failed screening; it is
	// retained for later manual inspection.
	NoteStateUnverified
	// NoteStateCommitted: the note is on chain with an inclusion proof.
	NoteStateCommitted
	// NoteStateProcessing: a locally built transaction is consuming the note.
	NoteStateProcessing
	// NoteStateConsumedAuthenticated: consumed by this client with a
	// chain-anchored proof.
	NoteStateConsumedAuthenticated
	// NoteStateConsumedUnauthenticated: consumed by this client without a
	// chain-anchored proof.
	NoteStateConsumedUnauthenticated
	// NoteStateConsumedExternal: the nullifier was published by another
	// replica.
	NoteStateConsumedExternal
)

var ErrInvalidStateTransition = verrs.New(verrs.CodeInvalidStateTransition, "invalid note state transition")

func (s NoteState) String() string {
	switch s {
	case NoteStateExpected:
		return "expected"
	case NoteStateUnverified:
		return "unverified"
	case NoteStateCommitted:
		return "committed"
	case NoteStateProcessing:
		return "processing"
	case NoteStateConsumedAuthenticated:
		return "consumed-authenticated"
	case NoteStateConsumedUnauthenticated:
		return "consumed-unauthenticated"
	case NoteStateConsumedExternal:
		return "consumed-external"
	default:
		return "unknown"
	}
}

func (s NoteState) Consumed() bool {
	switch s {
	case NoteStateConsumedAuthenticated, NoteStateConsumedUnauthenticated, NoteStateConsumedExternal:
		return true
	default:
		return false
	}
}

// ValidTransition reports whether a note may move from [s] to [to]. A
// same-state write is not a transition; callers treat it as an idempotent
// no-op before asking.
func (s NoteState) ValidTransition(to NoteState) bool {
	if s.Consumed() {
		return false
	}
	switch s {
	case NoteStateExpected:
		return to == NoteStateCommitted || to == NoteStateUnverified || to.Consumed()
	case NoteStateUnverified:
		return to == NoteStateCommitted || to == NoteStateExpected || to.Consumed()
	case NoteStateCommitted:
		// Expected is reachable again when a reorg drops the inclusion proof.
		return to == NoteStateExpected || to == NoteStateProcessing || to.Consumed()
	case NoteStateProcessing:
		return to == NoteStateCommitted || to.Consumed()
	default:
		return false
	}
}

// InputNote is a consumable note tracked for one of the client's accounts.
type InputNote struct {
	ID           ids.ID
	Assets       []Asset
	SerialNumber ids.ID
	Inputs       []byte
	ScriptRoot   ids.ID
	Nullifier    ids.Nullifier
	CreatedAt    uint64

	// InclusionHeight is the block carrying the note's inclusion proof, or 0
	// while the note is unproven. The header at this height must not be
	// pruned while the note is unconsumed.
	InclusionHeight uint64

	State NoteState
	// StateData is the opaque per-state payload (proof bytes, consuming
	// transaction id, ...).
	StateData []byte
}

func (n *InputNote) Bytes() []byte {
	p := NewPacker(256)
	p.PackID(n.ID)
	p.PackUInt32(uint32(len(n.Assets)))
	for i := range n.Assets {
		p.PackBytes(n.Assets[i].Bytes())
	}
	p.PackID(n.SerialNumber)
	p.PackBytes(n.Inputs)
	p.PackID(n.ScriptRoot)
	p.PackFixedBytes(n.Nullifier.Bytes())
	p.PackUInt64(n.CreatedAt)
	p.PackUInt64(n.InclusionHeight)
	p.PackByte(byte(n.State))
	p.PackBytes(n.StateData)
	return p.Bytes
}

func ParseInputNote(b []byte) (*InputNote, error) {
	p := NewUnpacker(b)
	n := &InputNote{ID: p.UnpackID()}
	numAssets := p.UnpackUInt32()
	for i := uint32(0); i < numAssets && p.Err == nil; i++ {
		asset, err := ParseAsset(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		n.Assets = append(n.Assets, *asset)
	}
	n.SerialNumber = p.UnpackID()
	n.Inputs = p.UnpackBytes()
	n.ScriptRoot = p.UnpackID()
	nullifier, err := ids.ToNullifier(p.UnpackFixedBytes(ids.IDLen))
	if err != nil {
		return nil, err
	}
	n.Nullifier = nullifier
	n.CreatedAt = p.UnpackUInt64()
	n.InclusionHeight = p.UnpackUInt64()
	n.State = NoteState(p.UnpackByte())
	n.StateData = p.UnpackBytes()
	return n, p.Err
}

// OutputNoteState tracks a locally emitted note until it is observed on
// chain.
type OutputNoteState byte

const (
	OutputNoteStateExpected OutputNoteState = iota
	OutputNoteStateCommitted
)

// OutputNote is a note emitted by a locally executed transaction.
type OutputNote struct {
	ID              ids.ID
	RecipientDigest ids.ID
	Assets          []Asset
	Metadata        []byte
	Nullifier       *ids.Nullifier
	ExpectedHeight  uint64

	State     OutputNoteState
	StateData []byte
}

func (n *OutputNote) Bytes() []byte {
	p := NewPacker(256)
	p.PackID(n.ID)
	p.PackID(n.RecipientDigest)
	p.PackUInt32(uint32(len(n.Assets)))
	for i := range n.Assets {
		p.PackBytes(n.Assets[i].Bytes())
	}
	p.PackBytes(n.Metadata)
	p.PackBool(n.Nullifier != nil)
	if n.Nullifier != nil {
		p.PackFixedBytes(n.Nullifier.Bytes())
	}
	p.PackUInt64(n.ExpectedHeight)
	p.PackByte(byte(n.State))
	p.PackBytes(n.StateData)
	return p.Bytes
}

func ParseOutputNote(b []byte) (*OutputNote, error) {
	p := NewUnpacker(b)
	n := &OutputNote{
		ID:              p.UnpackID(),
		RecipientDigest: p.UnpackID(),
	}
	numAssets := p.UnpackUInt32()
	for i := uint32(0); i < numAssets && p.Err == nil; i++ {
		asset, err := ParseAsset(p.UnpackBytes())
		if err != nil {
			return nil, err
		}
		n.Assets = append(n.Assets, *asset)
	}
	n.Metadata = p.UnpackBytes()
	if p.UnpackBool() {
		nullifier, err := ids.ToNullifier(p.UnpackFixedBytes(ids.IDLen))
		if err != nil {
			return nil, err
		}
		n.Nullifier = &nullifier
	}
	n.ExpectedHeight = p.UnpackUInt64()
	n.State = OutputNoteState(p.UnpackByte())
	n.StateData = p.UnpackBytes()
	return n, p.Err
}

// NoteTag is a blinding filter the node uses to forward only notes of
// interest. A tag is removed once its note commits.
type NoteTag struct {
	Tag uint32

	// At most one source is set.
	SourceNoteID    *ids.ID
	SourceAccountID *ids.AccountID
}

func (t *NoteTag) Bytes() []byte {
	p := NewPacker(48)
	p.PackUInt32(t.Tag)
	p.PackBool(t.SourceNoteID != nil)
	if t.SourceNoteID != nil {
		p.PackID(*t.SourceNoteID)
	}
	p.PackBool(t.SourceAccountID != nil)
	if t.SourceAccountID != nil {
		p.PackAccountID(*t.SourceAccountID)
	}
	return p.Bytes
}

func ParseNoteTag(b []byte) (*NoteTag, error) {
	p := NewUnpacker(b)
	t := &NoteTag{Tag: p.UnpackUInt32()}
	if p.UnpackBool() {
		id := p.UnpackID()
		t.SourceNoteID = &id
	}
	if p.UnpackBool() {
		id := p.UnpackAccountID()
		t.SourceAccountID = &id
	}
	return t, p.Err
}

// NoteScript is a deduplicated note script, stored once per root.
type NoteScript struct {
	Root ids.ID
	Code []byte
}

func (s *NoteScript) Verify() error {
	if s.Root == ids.Empty {
		return fmt.Errorf("note script with empty root")
	}
	return nil
}
