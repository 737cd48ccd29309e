// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"time"

	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/formatting"
	"github.com/veilnet-labs/veilclient/utils/rpc"
	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	_ Prover = (*RemoteProver)(nil)

	errProveRequest = verrs.New(verrs.CodeRPCConnection, "prove request failed")
	errProveDecode  = verrs.New(verrs.CodeRPCDeserialize, "failed to decode proof")
)

// RemoteProver delegates proving to a proving service over JSON-RPC. The
// executed transaction crosses the wire in its canonical binary encoding.
type RemoteProver struct {
	requester rpc.EndpointRequester
}

func NewRemoteProver(uri string) *RemoteProver {
	return NewRemoteProverWithTimeout(uri, 0)
}

// NewRemoteProverWithTimeout bounds every prove request by [requestTimeout].
// Zero disables the bound.
func NewRemoteProverWithTimeout(uri string, requestTimeout time.Duration) *RemoteProver {
	return &RemoteProver{
		requester: rpc.NewEndpointRequesterWithTimeout(uri, "/ext/prover", "prover", requestTimeout),
	}
}

type proveArgs struct {
	Transaction string `json:"transaction"`
}

type proveReply struct {
	Proof string `json:"proof"`
}

func (p *RemoteProver) Prove(ctx context.Context, executed *types.ExecutedTransaction) (*types.ProvenTransaction, error) {
	args := proveArgs{
		Transaction: formatting.Encode(executed.Bytes()),
	}
	reply := proveReply{}
	if err := p.requester.SendRequest(ctx, "prove", &args, &reply); err != nil {
		return nil, errProveRequest.WithCause(err)
	}

	proof, err := formatting.Decode(reply.Proof)
	if err != nil {
		return nil, errProveDecode.WithCause(err)
	}
	return &types.ProvenTransaction{
		Executed: executed,
		Proof:    proof,
	}, nil
}
