// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const IDLen = 32

// Empty is a useful all zero value
var (
	Empty = ID{}

	errWrongIDLen = errors.New("invalid id length")
)

// ID wraps a 32 byte digest used to identify notes, scripts, commitments and
// block digests.
type ID [IDLen]byte

// ToID attempts to convert a byte slice into an id
func ToID(b []byte) (ID, error) {
	if len(b) != IDLen {
		return Empty, fmt.Errorf("%w: expected %d bytes but got %d", errWrongIDLen, IDLen, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// IDFromHex is the inverse of ID.Hex()
func IDFromHex(s string) (ID, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Empty, err
	}
	return ToID(b)
}

func (id ID) Bytes() []byte {
	return id[:]
}

func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ID) String() string {
	return "0x" + id.Hex()
}

func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// Nullifier is published exactly once, when the note it was derived from is
// consumed.
type Nullifier ID

func (n Nullifier) Bytes() []byte {
	return n[:]
}

func (n Nullifier) String() string {
	return ID(n).String()
}

func ToNullifier(b []byte) (Nullifier, error) {
	id, err := ToID(b)
	return Nullifier(id), err
}
