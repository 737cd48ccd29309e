// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api speaks to a network node over its JSON-RPC endpoint. Payloads
// cross the wire in the canonical binary encoding, wrapped in checksummed hex.
package api

import (
	"context"
	"time"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/formatting"
	"github.com/veilnet-labs/veilclient/utils/rpc"
)

var _ NodeClient = (*Client)(nil)

// NodeClient is the node surface the client depends on. Implementations must
// be safe for concurrent use.
type NodeClient interface {
	// StateUpdate returns everything relevant to the given tags, nullifiers
	// and accounts that happened after [sinceHeight].
	StateUpdate(
		ctx context.Context,
		sinceHeight uint64,
		tags []uint32,
		nullifiers []ids.Nullifier,
		accountIDs []ids.AccountID,
	) (*types.StateUpdate, error)

	// SubmitTransaction hands a proven transaction to the node for inclusion.
	SubmitTransaction(ctx context.Context, tx *types.ProvenTransaction) error

	// FetchNote retrieves a committed note by id, regardless of tags.
	FetchNote(ctx context.Context, noteID ids.ID) (*types.InputNote, error)

	// CheckNullifiers reports which of [nullifiers] have been published.
	CheckNullifiers(ctx context.Context, nullifiers []ids.Nullifier) ([]types.NullifierUpdate, error)
}

// Client implements NodeClient against a node's /ext/state endpoint.
type Client struct {
	requester rpc.EndpointRequester
}

func NewClient(uri string) *Client {
	return NewClientWithTimeout(uri, 0)
}

// NewClientWithTimeout bounds every node request by [requestTimeout]. Zero
// disables the bound.
func NewClientWithTimeout(uri string, requestTimeout time.Duration) *Client {
	return &Client{
		requester: rpc.NewEndpointRequesterWithTimeout(uri, "/ext/state", "veilnet", requestTimeout),
	}
}

type stateUpdateArgs struct {
	SinceHeight uint64   `json:"sinceHeight"`
	Tags        []uint32 `json:"tags"`
	Nullifiers  []string `json:"nullifiers"`
	AccountIDs  []string `json:"accountIds"`
}

type stateUpdateReply struct {
	Update string `json:"update"`
}

func (c *Client) StateUpdate(
	ctx context.Context,
	sinceHeight uint64,
	tags []uint32,
	nullifiers []ids.Nullifier,
	accountIDs []ids.AccountID,
) (*types.StateUpdate, error) {
	args := stateUpdateArgs{
		SinceHeight: sinceHeight,
		Tags:        tags,
	}
	for _, nullifier := range nullifiers {
		args.Nullifiers = append(args.Nullifiers, nullifier.String())
	}
	for _, id := range accountIDs {
		args.AccountIDs = append(args.AccountIDs, id.String())
	}

	reply := stateUpdateReply{}
	if err := c.requester.SendRequest(ctx, "stateUpdate", &args, &reply); err != nil {
		return nil, wrapRequestErr(err)
	}

	raw, err := formatting.Decode(reply.Update)
	if err != nil {
		return nil, errRPCDeserialize.WithCause(err)
	}
	update, err := types.ParseStateUpdate(raw)
	if err != nil {
		return nil, errRPCDeserialize.WithCause(err)
	}
	return update, nil
}

type submitTransactionArgs struct {
	Transaction string `json:"transaction"`
}

type submitTransactionReply struct {
	TxID string `json:"txID"`
}

func (c *Client) SubmitTransaction(ctx context.Context, tx *types.ProvenTransaction) error {
	args := submitTransactionArgs{
		Transaction: formatting.Encode(tx.Bytes()),
	}
	reply := submitTransactionReply{}
	return wrapRequestErr(c.requester.SendRequest(ctx, "submitTransaction", &args, &reply))
}

type fetchNoteArgs struct {
	NoteID string `json:"noteID"`
}

type fetchNoteReply struct {
	Note string `json:"note"`
}

func (c *Client) FetchNote(ctx context.Context, noteID ids.ID) (*types.InputNote, error) {
	args := fetchNoteArgs{NoteID: noteID.String()}
	reply := fetchNoteReply{}
	if err := c.requester.SendRequest(ctx, "fetchNote", &args, &reply); err != nil {
		return nil, wrapRequestErr(err)
	}

	raw, err := formatting.Decode(reply.Note)
	if err != nil {
		return nil, errRPCDeserialize.WithCause(err)
	}
	note, err := types.ParseInputNote(raw)
	if err != nil {
		return nil, errRPCDeserialize.WithCause(err)
	}
	return note, nil
}

type checkNullifiersArgs struct {
	Nullifiers []string `json:"nullifiers"`
}

type spentNullifier struct {
	Nullifier     string `json:"nullifier"`
	BlockNum      uint64 `json:"blockNum"`
	TransactionID string `json:"transactionID"`
}

type checkNullifiersReply struct {
	Spent []spentNullifier `json:"spent"`
}

func (c *Client) CheckNullifiers(ctx context.Context, nullifiers []ids.Nullifier) ([]types.NullifierUpdate, error) {
	args := checkNullifiersArgs{}
	for _, nullifier := range nullifiers {
		args.Nullifiers = append(args.Nullifiers, nullifier.String())
	}

	reply := checkNullifiersReply{}
	if err := c.requester.SendRequest(ctx, "checkNullifiers", &args, &reply); err != nil {
		return nil, wrapRequestErr(err)
	}

	updates := make([]types.NullifierUpdate, 0, len(reply.Spent))
	for _, spent := range reply.Spent {
		id, err := ids.IDFromHex(spent.Nullifier)
		if err != nil {
			return nil, errRPCDeserialize.WithCause(err)
		}
		txID, err := ids.IDFromHex(spent.TransactionID)
		if err != nil {
			return nil, errRPCDeserialize.WithCause(err)
		}
		updates = append(updates, types.NullifierUpdate{
			Nullifier:     ids.Nullifier(id),
			BlockNum:      spent.BlockNum,
			TransactionID: txID,
		})
	}
	return updates, nil
}
