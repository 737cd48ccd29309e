// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chainsync

import (
	"errors"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

var (
	_ Screener = (*ScriptScreener)(nil)

	errMissingNullifier = errors.New("note without nullifier")
	errMalformedInputs  = errors.New("note inputs too short for target account id")
)

// Screener decides whether one of the tracked accounts could consume a newly
// observed note, without executing the note's logic. Implementations must be
// pure: no side effects, no store access.
type Screener interface {
	Screen(note *types.InputNote, accounts []*types.AccountHeader) (bool, error)
}

// ScriptScreener recognizes the standard script set. Notes carrying an
// unknown script root are not relevant; malformed notes error and are
// recorded as unverified by the caller.
type ScriptScreener struct{}

func (ScriptScreener) Screen(note *types.InputNote, accounts []*types.AccountHeader) (bool, error) {
	if note.Nullifier == (ids.Nullifier{}) {
		return false, errMissingNullifier
	}

	if note.ScriptRoot != types.PayToIDScriptRoot {
		return false, nil
	}
	if len(note.Inputs) < ids.AccountIDLen {
		return false, errMalformedInputs
	}
	target, err := ids.ToAccountID(note.Inputs[:ids.AccountIDLen])
	if err != nil {
		return false, err
	}

	for _, account := range accounts {
		// Watched accounts are tracked header-only; the client cannot consume
		// for them.
		if account.Watched {
			continue
		}
		if account.ID == target {
			return true, nil
		}
	}
	return false, nil
}
