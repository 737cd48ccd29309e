// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"github.com/veilnet-labs/veilclient/ids"
)

// BlockHeader is the subset of a block the client retains to verify inclusion
// proofs for its own notes and accounts.
type BlockHeader struct {
	Number     uint64
	Digest     ids.ID
	PrevDigest ids.ID
	NoteRoot   ids.ID
	Timestamp  uint64

	// Peaks of the partial chain MMR as of this block.
	Peaks MmrPeaks
}

func (h *BlockHeader) Bytes() []byte {
	p := NewPacker(192)
	p.PackUInt64(h.Number)
	p.PackID(h.Digest)
	p.PackID(h.PrevDigest)
	p.PackID(h.NoteRoot)
	p.PackUInt64(h.Timestamp)
	p.PackUInt64(h.Peaks.ForestSize)
	p.PackUInt32(uint32(len(h.Peaks.Peaks)))
	for _, peak := range h.Peaks.Peaks {
		p.PackID(peak)
	}
	return p.Bytes
}

func ParseBlockHeader(b []byte) (*BlockHeader, error) {
	p := NewUnpacker(b)
	h := &BlockHeader{
		Number:     p.UnpackUInt64(),
		Digest:     p.UnpackID(),
		PrevDigest: p.UnpackID(),
		NoteRoot:   p.UnpackID(),
		Timestamp:  p.UnpackUInt64(),
	}
	h.Peaks.ForestSize = p.UnpackUInt64()
	numPeaks := p.UnpackUInt32()
	for i := uint32(0); i < numPeaks && p.Err == nil; i++ {
		h.Peaks.Peaks = append(h.Peaks.Peaks, p.UnpackID())
	}
	return h, p.Err
}

// MmrPeaks is the peak set of the partial chain's Merkle Mountain Range at a
// given forest size.
type MmrPeaks struct {
	ForestSize uint64
	Peaks      []ids.ID
}

// MmrNode is one internal node of the partial chain MMR, addressed by its
// in-order index.
type MmrNode struct {
	Index uint64
	Node  ids.ID
}
