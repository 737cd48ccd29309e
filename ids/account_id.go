// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const AccountIDLen = 8

// AccountType is encoded in the two high bits of an account id.
type AccountType byte

const (
	AccountRegularPrivate AccountType = iota
	AccountRegularPublic
	AccountFungibleFaucet
	AccountNonFungibleFaucet
)

const (
	accountTypeShift = 6
	accountTypeMask  = 0b1100_0000

	// Set when the account's full state is published on chain rather than
	// only its commitment.
	accountPublicStateBit = 0b0010_0000
)

var (
	EmptyAccountID = AccountID{}

	errWrongAccountIDLen = errors.New("invalid account id length")
)

func (t AccountType) String() string {
	switch t {
	case AccountRegularPrivate:
		return "regular-private"
	case AccountRegularPublic:
		return "regular-public"
	case AccountFungibleFaucet:
		return "fungible-faucet"
	case AccountNonFungibleFaucet:
		return "non-fungible-faucet"
	default:
		return "unknown"
	}
}

// AccountID wraps an 8 byte identifier whose high bits encode the account
// type and state visibility. It is immutable once derived.
type AccountID [AccountIDLen]byte

// NewAccountID derives an account id from [seed]. The derivation is
// deterministic so that the same seed always resolves to the same id.
func NewAccountID(accountType AccountType, publicState bool, seed []byte) AccountID {
	digest := sha256.Sum256(seed)

	var id AccountID
	copy(id[:], digest[:AccountIDLen])
	id[0] &^= accountTypeMask | accountPublicStateBit
	id[0] |= byte(accountType) << accountTypeShift
	if publicState {
		id[0] |= accountPublicStateBit
	}
	return id
}

// ToAccountID attempts to convert a byte slice into an account id
func ToAccountID(b []byte) (AccountID, error) {
	if len(b) != AccountIDLen {
		return EmptyAccountID, fmt.Errorf("%w: expected %d bytes but got %d", errWrongAccountIDLen, AccountIDLen, len(b))
	}
	var id AccountID
	copy(id[:], b)
	return id, nil
}

func AccountIDFromUint64(v uint64) AccountID {
	var id AccountID
	binary.BigEndian.PutUint64(id[:], v)
	return id
}

func AccountIDFromHex(s string) (AccountID, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyAccountID, err
	}
	return ToAccountID(b)
}

func (id AccountID) Type() AccountType {
	return AccountType(id[0]&accountTypeMask) >> accountTypeShift
}

func (id AccountID) IsFaucet() bool {
	t := id.Type()
	return t == AccountFungibleFaucet || t == AccountNonFungibleFaucet
}

func (id AccountID) HasPublicState() bool {
	return id[0]&accountPublicStateBit != 0
}

func (id AccountID) Bytes() []byte {
	return id[:]
}

func (id AccountID) Uint64() uint64 {
	return binary.BigEndian.Uint64(id[:])
}

// Prefix returns the high 4 bytes of the id, used as the faucet prefix in
// vault entries.
func (id AccountID) Prefix() uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

func (id AccountID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id AccountID) String() string {
	return "0x" + id.Hex()
}
