// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/store"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/math"
)

// totalIssuanceSlot tracks how many units a faucet account has minted.
const totalIssuanceSlot = "faucet.total_issuance"

var errNotFaucet = errors.New("mint payment from a non-faucet account")

// execute runs the transaction program against current local state, producing
// a candidate next account state and the emitted notes. The store is not
// mutated; persistence happens at submit.
func (w *Wallet) execute(req *Request) (*types.ExecutedTransaction, error) {
	initial, err := w.store.GetAccountHeader(req.AccountID)
	if err != nil {
		return nil, err
	}

	balances, err := w.vaultBalances(req.AccountID)
	if err != nil {
		return nil, err
	}
	for _, note := range req.InputNotes {
		for i := range note.Assets {
			if err := creditAsset(balances, &note.Assets[i]); err != nil {
				return nil, err
			}
		}
	}

	var (
		minted      uint64
		outputNotes []*types.OutputNote
	)
	for i, payment := range req.Payments {
		if payment.Faucet == req.AccountID {
			if !req.AccountID.IsFaucet() {
				return nil, errNotFaucet
			}
			if minted, err = math.Add64(minted, payment.Amount); err != nil {
				return nil, err
			}
		} else {
			if err := debitAsset(balances, payment.Faucet, payment.Amount); err != nil {
				return nil, err
			}
		}
		outputNotes = append(outputNotes, newOutputNote(req.AccountID, initial.Nonce+1, i, payment))
	}

	finalAssets := sortedAssets(balances)
	finalSlots, err := w.finalSlots(req.AccountID, minted)
	if err != nil {
		return nil, err
	}

	final := *initial
	final.Nonce++
	final.Seed = nil
	final.Locked = false
	final.VaultRoot = digestOfAssets(finalAssets)
	final.StorageCommitment = digestOfSlots(finalSlots)

	executed := &types.ExecutedTransaction{
		AccountID:     req.AccountID,
		InitialHeader: initial,
		FinalHeader:   &final,
		FinalSlots:    finalSlots,
		FinalAssets:   finalAssets,
		ConsumedNotes: req.InputNotes,
		OutputNotes:   outputNotes,
		Details: []byte(fmt.Sprintf(
			"consume %d notes, emit %d notes", len(req.InputNotes), len(outputNotes))),
	}
	if len(req.Payments) > 0 {
		executed.ScriptRoot = types.PayToIDScriptRoot
	}
	executed.ID = ids.ID(sha256.Sum256(executed.Bytes()))
	return executed, nil
}

func (w *Wallet) vaultBalances(id ids.AccountID) (map[ids.ID]*types.Asset, error) {
	assets, err := w.store.VaultAssets(id)
	if err != nil {
		return nil, err
	}
	balances := make(map[ids.ID]*types.Asset, len(assets))
	for _, asset := range assets {
		balances[asset.VaultKey] = asset
	}
	return balances, nil
}

func creditAsset(balances map[ids.ID]*types.Asset, asset *types.Asset) error {
	existing, ok := balances[asset.VaultKey]
	if !ok {
		credited := *asset
		balances[asset.VaultKey] = &credited
		return nil
	}
	amount, err := math.Add64(existing.Amount, asset.Amount)
	if err != nil {
		return err
	}
	existing.Amount = amount
	return nil
}

func debitAsset(balances map[ids.ID]*types.Asset, faucet ids.AccountID, amount uint64) error {
	key := types.FungibleAsset(faucet, 0).VaultKey
	existing, ok := balances[key]
	if !ok {
		return fmt.Errorf("%w: no balance for faucet %s", math.ErrUnderflow, faucet)
	}
	remaining, err := math.Sub64(existing.Amount, amount)
	if err != nil {
		return err
	}
	existing.Amount = remaining
	return nil
}

// finalSlots returns the account's storage after this execution. Only faucets
// carry a slot here: the running issuance total.
func (w *Wallet) finalSlots(id ids.AccountID, minted uint64) ([]types.StorageSlot, error) {
	if minted == 0 {
		return nil, nil
	}

	var issued uint64
	slot, err := w.store.StorageSlot(id, totalIssuanceSlot)
	switch {
	case errors.Is(err, store.ErrStorageSlotNotFound):
	case err != nil:
		return nil, err
	default:
		p := types.NewUnpacker(slot.Value)
		issued = p.UnpackUInt64()
		if p.Err != nil {
			return nil, p.Err
		}
	}

	total, err := math.Add64(issued, minted)
	if err != nil {
		return nil, err
	}
	p := types.NewPacker(8)
	p.PackUInt64(total)
	return []types.StorageSlot{{
		Name:  totalIssuanceSlot,
		Type:  types.SlotTypeValue,
		Value: p.Bytes,
	}}, nil
}

func sortedAssets(balances map[ids.ID]*types.Asset) []types.Asset {
	assets := make([]types.Asset, 0, len(balances))
	for _, asset := range balances {
		assets = append(assets, *asset)
	}
	sort.Slice(assets, func(i, j int) bool {
		return assets[i].VaultKey.Compare(assets[j].VaultKey) < 0
	})
	return assets
}

// newOutputNote derives the deterministic note a payment emits. Sender and
// receiver independently compute the same id.
func newOutputNote(sender ids.AccountID, nonce uint64, index int, payment Payment) *types.OutputNote {
	p := types.NewPacker(64)
	p.PackAccountID(sender)
	p.PackUInt64(nonce)
	p.PackUInt32(uint32(index))
	p.PackAccountID(payment.Faucet)
	p.PackUInt64(payment.Amount)
	p.PackAccountID(payment.Recipient)
	id := ids.ID(sha256.Sum256(p.Bytes))

	recipientDigest := ids.ID(sha256.Sum256(payment.Recipient.Bytes()))
	nullifier := types.NoteNullifier(id)
	return &types.OutputNote{
		ID:              id,
		RecipientDigest: recipientDigest,
		Assets:          []types.Asset{types.FungibleAsset(payment.Faucet, payment.Amount)},
		Metadata:        payment.Recipient.Bytes(),
		Nullifier:       &nullifier,
		State:           types.OutputNoteStateExpected,
	}
}

func digestOfAssets(assets []types.Asset) ids.ID {
	h := sha256.New()
	for i := range assets {
		h.Write(assets[i].Bytes())
	}
	var id ids.ID
	copy(id[:], h.Sum(nil))
	return id
}

func digestOfSlots(slots []types.StorageSlot) ids.ID {
	h := sha256.New()
	for i := range slots {
		h.Write(slots[i].Bytes())
	}
	var id ids.ID
	copy(id[:], h.Sum(nil))
	return id
}
