// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/formatting"
	"github.com/veilnet-labs/veilclient/verrs"
)

// newTestNode serves one JSON-RPC method, answering every call with [result].
func newTestNode(t *testing.T, result interface{}) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ext/state", r.URL.Path)

		resultJSON, err := json.Marshal(result)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","result":%s,"id":1}`, resultJSON)
	}))
}

func TestStateUpdateRoundTrip(t *testing.T) {
	require := require.New(t)

	var noteID ids.ID
	noteID[0] = 0x01

	update := &types.StateUpdate{
		SyncHeight: 42,
		InputNotes: []*types.InputNote{{
			ID:        noteID,
			Nullifier: ids.Nullifier(noteID),
			State:     types.NoteStateCommitted,
		}},
		Transactions: []types.TransactionUpdate{{
			ID:       noteID,
			BlockNum: 42,
		}},
	}

	server := newTestNode(t, stateUpdateReply{
		Update: formatting.Encode(update.Bytes()),
	})
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.StateUpdate(context.Background(), 0, []uint32{7}, nil, nil)
	require.NoError(err)
	require.Equal(update.SyncHeight, got.SyncHeight)
	require.Len(got.InputNotes, 1)
	require.Equal(noteID, got.InputNotes[0].ID)
	require.Len(got.Transactions, 1)
}

func TestCheckNullifiers(t *testing.T) {
	require := require.New(t)

	var nullifier ids.ID
	nullifier[0] = 0x0a
	var txID ids.ID
	txID[0] = 0x0b

	server := newTestNode(t, checkNullifiersReply{
		Spent: []spentNullifier{{
			Nullifier:     nullifier.Hex(),
			BlockNum:      9,
			TransactionID: txID.Hex(),
		}},
	})
	defer server.Close()

	client := NewClient(server.URL)
	updates, err := client.CheckNullifiers(context.Background(), []ids.Nullifier{ids.Nullifier(nullifier)})
	require.NoError(err)
	require.Len(updates, 1)
	require.Equal(ids.Nullifier(nullifier), updates[0].Nullifier)
	require.Equal(uint64(9), updates[0].BlockNum)
	require.Equal(txID, updates[0].TransactionID)
}

func TestNodeRejectionClassifiedAsStatus(t *testing.T) {
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jsonrpc":"2.0","error":{"code":-32000,"message":"nullifier already spent"},"id":1}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.SubmitTransaction(context.Background(), &types.ProvenTransaction{
		Executed: &types.ExecutedTransaction{
			InitialHeader: &types.AccountHeader{Nonce: 1},
			FinalHeader:   &types.AccountHeader{Nonce: 2},
		},
	})
	require.Equal(verrs.CodeRPCStatus, verrs.CodeOf(err))
}

func TestConnectionFailureClassifiedAsConnection(t *testing.T) {
	require := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchNote(context.Background(), ids.Empty)
	require.Equal(verrs.CodeRPCConnection, verrs.CodeOf(err))
}

func TestRequestTimeoutEnforced(t *testing.T) {
	require := require.New(t)

	// The handler holds the request open until the client gives up. The body
	// must be drained first: the server only watches for client disconnect
	// (cancelling the request context) once the body has been consumed.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClientWithTimeout(server.URL, 20*time.Millisecond)
	_, err := client.StateUpdate(context.Background(), 0, nil, nil, nil)
	require.Equal(verrs.CodeRPCConnection, verrs.CodeOf(err))
}

func TestDeserializationFailure(t *testing.T) {
	require := require.New(t)

	server := newTestNode(t, stateUpdateReply{Update: "0xdeadbeef"})
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.StateUpdate(context.Background(), 0, nil, nil, nil)
	require.Equal(verrs.CodeRPCDeserialize, verrs.CodeOf(err))
}
