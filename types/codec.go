// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"encoding/binary"
	"errors"

	"github.com/veilnet-labs/veilclient/ids"
)

var (
	errBadLength   = errors.New("packer has insufficient length for input")
	errNegativeLen = errors.New("negative length")
)

// Packer packs and unpacks the deterministic binary encoding used for every
// record persisted by the store. All integers are big-endian; variable length
// byte strings carry a 4 byte length prefix.
type Packer struct {
	Bytes  []byte
	Offset int
	Err    error
}

func NewPacker(capacity int) *Packer {
	return &Packer{Bytes: make([]byte, 0, capacity)}
}

func NewUnpacker(b []byte) *Packer {
	return &Packer{Bytes: b}
}

func (p *Packer) PackByte(b byte) {
	p.Bytes = append(p.Bytes, b)
}

func (p *Packer) UnpackByte() byte {
	if p.Err != nil {
		return 0
	}
	if p.Offset+1 > len(p.Bytes) {
		p.Err = errBadLength
		return 0
	}
	b := p.Bytes[p.Offset]
	p.Offset++
	return b
}

func (p *Packer) PackBool(b bool) {
	if b {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
}

func (p *Packer) UnpackBool() bool {
	return p.UnpackByte() == 1
}

func (p *Packer) PackUInt32(v uint32) {
	p.Bytes = binary.BigEndian.AppendUint32(p.Bytes, v)
}

func (p *Packer) UnpackUInt32() uint32 {
	if p.Err != nil {
		return 0
	}
	if p.Offset+4 > len(p.Bytes) {
		p.Err = errBadLength
		return 0
	}
	v := binary.BigEndian.Uint32(p.Bytes[p.Offset:])
	p.Offset += 4
	return v
}

func (p *Packer) PackUInt64(v uint64) {
	p.Bytes = binary.BigEndian.AppendUint64(p.Bytes, v)
}

func (p *Packer) UnpackUInt64() uint64 {
	if p.Err != nil {
		return 0
	}
	if p.Offset+8 > len(p.Bytes) {
		p.Err = errBadLength
		return 0
	}
	v := binary.BigEndian.Uint64(p.Bytes[p.Offset:])
	p.Offset += 8
	return v
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.Bytes = append(p.Bytes, b...)
}

func (p *Packer) UnpackFixedBytes(size int) []byte {
	if p.Err != nil {
		return nil
	}
	if size < 0 {
		p.Err = errNegativeLen
		return nil
	}
	if p.Offset+size > len(p.Bytes) {
		p.Err = errBadLength
		return nil
	}
	b := make([]byte, size)
	copy(b, p.Bytes[p.Offset:])
	p.Offset += size
	return b
}

func (p *Packer) PackBytes(b []byte) {
	p.PackUInt32(uint32(len(b)))
	p.PackFixedBytes(b)
}

func (p *Packer) UnpackBytes() []byte {
	size := p.UnpackUInt32()
	return p.UnpackFixedBytes(int(size))
}

func (p *Packer) PackStr(s string) {
	p.PackBytes([]byte(s))
}

func (p *Packer) UnpackStr() string {
	return string(p.UnpackBytes())
}

func (p *Packer) PackID(id ids.ID) {
	p.PackFixedBytes(id.Bytes())
}

func (p *Packer) UnpackID() ids.ID {
	b := p.UnpackFixedBytes(ids.IDLen)
	if p.Err != nil {
		return ids.Empty
	}
	id, err := ids.ToID(b)
	p.Err = err
	return id
}

func (p *Packer) PackAccountID(id ids.AccountID) {
	p.PackFixedBytes(id.Bytes())
}

func (p *Packer) UnpackAccountID() ids.AccountID {
	b := p.UnpackFixedBytes(ids.AccountIDLen)
	if p.Err != nil {
		return ids.EmptyAccountID
	}
	id, err := ids.ToAccountID(b)
	p.Err = err
	return id
}
