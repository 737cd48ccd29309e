// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/api"
	"github.com/veilnet-labs/veilclient/config"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/store"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
)

var _ api.NodeClient = (*stubNode)(nil)

type stubNode struct {
	update *types.StateUpdate
}

func (n *stubNode) StateUpdate(
	context.Context,
	uint64,
	[]uint32,
	[]ids.Nullifier,
	[]ids.AccountID,
) (*types.StateUpdate, error) {
	if n.update == nil {
		return &types.StateUpdate{}, nil
	}
	return n.update, nil
}

func (n *stubNode) SubmitTransaction(context.Context, *types.ProvenTransaction) error {
	return nil
}

func (n *stubNode) FetchNote(context.Context, ids.ID) (*types.InputNote, error) {
	return nil, store.ErrNoteNotFound
}

func (n *stubNode) CheckNullifiers(context.Context, []ids.Nullifier) ([]types.NullifierUpdate, error) {
	return nil, nil
}

func testConfig() config.Config {
	return config.Config{
		DBInMemory:       true,
		NodeEndpoint:     "http://127.0.0.1:9650",
		LogLevel:         logging.Info,
		SyncTimeout:      time.Minute,
		PollFrequency:    time.Millisecond,
		CommitTimeout:    time.Minute,
		MetricsNamespace: "test",
	}
}

func TestClientWiring(t *testing.T) {
	require := require.New(t)

	node := &stubNode{update: &types.StateUpdate{SyncHeight: 7}}
	c, err := New(testConfig(),
		WithNodeClient(node),
		WithLogger(logging.NoLog{}),
	)
	require.NoError(err)
	defer func() {
		require.NoError(c.Close())
	}()

	summary, err := c.Sync().Sync(context.Background())
	require.NoError(err)
	require.Equal(uint64(7), summary.BlockNum)

	height, err := c.Store().SyncHeight()
	require.NoError(err)
	require.Equal(uint64(7), height)

	// The coordinator registered its metrics on the client's registry.
	families, err := c.MetricsGatherer().Gather()
	require.NoError(err)
	require.NotEmpty(families)
}

func TestClientPersistsOnDisk(t *testing.T) {
	require := require.New(t)

	cfg := testConfig()
	cfg.DBInMemory = false
	cfg.DataDir = t.TempDir()

	node := &stubNode{update: &types.StateUpdate{SyncHeight: 3}}
	c, err := New(cfg,
		WithNodeClient(node),
		WithLogger(logging.NoLog{}),
	)
	require.NoError(err)

	_, err = c.Sync().Sync(context.Background())
	require.NoError(err)
	require.NoError(c.Close())

	// Reopening the same data dir sees the synced state.
	c, err = New(cfg,
		WithNodeClient(node),
		WithLogger(logging.NoLog{}),
	)
	require.NoError(err)
	defer func() {
		require.NoError(c.Close())
	}()

	height, err := c.Store().SyncHeight()
	require.NoError(err)
	require.Equal(uint64(3), height)
}
