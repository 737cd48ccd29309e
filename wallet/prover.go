// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"crypto/sha256"

	"github.com/veilnet-labs/veilclient/types"
)

var _ Prover = (*LocalProver)(nil)

// Prover turns an executed transaction into a proven one. Remote provers can
// take seconds; implementations must honor [ctx] cancellation.
type Prover interface {
	Prove(ctx context.Context, executed *types.ExecutedTransaction) (*types.ProvenTransaction, error)
}

// LocalProver produces proofs in-process. The proof system itself is opaque
// to this module; the local prover binds the proof bytes to the executed
// transaction so the node can verify what was submitted.
type LocalProver struct{}

func (LocalProver) Prove(ctx context.Context, executed *types.ExecutedTransaction) (*types.ProvenTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	commitment := sha256.Sum256(executed.Bytes())
	return &types.ProvenTransaction{
		Executed: executed,
		Proof:    commitment[:],
	}, nil
}
