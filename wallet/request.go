// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/set"
	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	ErrDuplicateInputNote          = verrs.New(verrs.CodeDuplicateInputNote, "duplicate input note")
	ErrNoInputNotesNorAccountDelta = verrs.New(verrs.CodeNoInputNotesNorAccountDelta, "request consumes no notes and changes no account state")
	ErrInputNoteNotAuthenticated   = verrs.New(verrs.CodeInputNoteNotAuthenticated, "input note lacks a committed inclusion proof")
)

// Payment emits one fungible amount to a recipient. A payment whose faucet is
// the requesting account itself is a mint.
type Payment struct {
	Faucet    ids.AccountID
	Amount    uint64
	Recipient ids.AccountID
}

// Request describes one transaction to build against an account: notes to
// consume plus payments to emit. Validation happens before execution and
// fails fast.
type Request struct {
	AccountID ids.AccountID

	InputNotes []*types.InputNote
	// UnauthenticatedNotes lists input notes that may be consumed without a
	// chain-anchored inclusion proof.
	UnauthenticatedNotes []ids.ID

	Payments []Payment
}

// Validate checks the request's structure. It does not touch the store.
func (r *Request) Validate() error {
	if len(r.InputNotes) == 0 && len(r.Payments) == 0 {
		return ErrNoInputNotesNorAccountDelta
	}

	unauthenticated := set.Of(r.UnauthenticatedNotes...)
	seen := set.NewSet[ids.ID](len(r.InputNotes))
	for _, note := range r.InputNotes {
		if seen.Contains(note.ID) {
			return ErrDuplicateInputNote.WithMessagef("%s", note.ID)
		}
		seen.Add(note.ID)

		if unauthenticated.Contains(note.ID) {
			continue
		}
		if note.State != types.NoteStateCommitted || note.InclusionHeight == 0 {
			return ErrInputNoteNotAuthenticated.WithMessagef("%s in state %s", note.ID, note.State)
		}
	}
	return nil
}

// MintRequest mints [amount] units from [faucet] into a note consumable by
// [target].
func MintRequest(faucet, target ids.AccountID, amount uint64) *Request {
	return &Request{
		AccountID: faucet,
		Payments: []Payment{{
			Faucet:    faucet,
			Amount:    amount,
			Recipient: target,
		}},
	}
}

// SendRequest pays [amount] units issued by [faucet] out of [sender]'s vault
// to [recipient].
func SendRequest(sender, recipient, faucet ids.AccountID, amount uint64) *Request {
	return &Request{
		AccountID: sender,
		Payments: []Payment{{
			Faucet:    faucet,
			Amount:    amount,
			Recipient: recipient,
		}},
	}
}

// ConsumeRequest absorbs [notes] into [account]'s vault.
func ConsumeRequest(account ids.AccountID, notes []*types.InputNote) *Request {
	return &Request{
		AccountID:  account,
		InputNotes: notes,
	}
}
