// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AccountHRP is the human readable part expected on bech32 encoded account
// addresses.
const AccountHRP = "vn"

// AccountIDKind reports which textual encoding an account id was parsed from.
type AccountIDKind byte

const (
	AccountIDKindHex AccountIDKind = iota
	AccountIDKindBech32
)

var (
	errEmptyAccountID = errors.New("empty account id")
	errWrongHRP       = errors.New("unexpected address prefix")
)

// ParsedAccountID is the tagged result of parsing a textual account id.
type ParsedAccountID struct {
	Kind AccountIDKind
	ID   AccountID
}

// ParseAccountID accepts either a hex encoded id (with or without the 0x
// prefix) or a bech32 encoded address. All call sites parse through here so
// that no encoding probing is scattered around the codebase.
func ParseAccountID(s string) (ParsedAccountID, error) {
	switch {
	case s == "":
		return ParsedAccountID{}, errEmptyAccountID
	case strings.HasPrefix(s, AccountHRP+"1"):
		id, err := AccountIDFromBech32(s)
		if err != nil {
			return ParsedAccountID{}, err
		}
		return ParsedAccountID{Kind: AccountIDKindBech32, ID: id}, nil
	default:
		id, err := AccountIDFromHex(s)
		if err != nil {
			return ParsedAccountID{}, fmt.Errorf("parsing account id %q: %w", s, err)
		}
		return ParsedAccountID{Kind: AccountIDKindHex, ID: id}, nil
	}
}

// AccountIDFromBech32 is the inverse of AccountID.Bech32()
func AccountIDFromBech32(addr string) (AccountID, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return EmptyAccountID, err
	}
	if hrp != AccountHRP {
		return EmptyAccountID, fmt.Errorf("%w: expected %q but got %q", errWrongHRP, AccountHRP, hrp)
	}
	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return EmptyAccountID, err
	}
	return ToAccountID(converted)
}

// Bech32 returns the address form of the id used in user facing surfaces.
func (id AccountID) Bech32() (string, error) {
	converted, err := bech32.ConvertBits(id.Bytes(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(AccountHRP, converted)
}
