// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/utils/logging"
)

func TestGetConfigDefaults(t *testing.T) {
	require := require.New(t)

	config, err := GetConfigFromArgs([]string{
		"--node-endpoint=http://127.0.0.1:9650",
	})
	require.NoError(err)
	require.Equal("http://127.0.0.1:9650", config.NodeEndpoint)
	require.Empty(config.ProverEndpoint)
	require.Equal(defaultDataDir, config.DataDir)
	require.False(config.DBInMemory)
	require.Equal(logging.Info, config.LogLevel)
	require.Equal(10*time.Second, config.RequestTimeout)
	require.Equal(2*time.Minute, config.SyncTimeout)
	require.Equal(500*time.Millisecond, config.PollFrequency)
	require.Equal(5*time.Minute, config.CommitTimeout)
	require.Equal(appName, config.MetricsNamespace)
}

func TestGetConfigFlagsOverrideDefaults(t *testing.T) {
	require := require.New(t)

	config, err := GetConfigFromArgs([]string{
		"--node-endpoint=http://node:9650",
		"--data-dir=/tmp/veil",
		"--db-in-memory",
		"--log-level=debug",
		"--sync-timeout=30s",
		"--poll-frequency=50ms",
		"--commit-timeout=1m",
	})
	require.NoError(err)
	require.Equal("/tmp/veil", config.DataDir)
	require.True(config.DBInMemory)
	require.Equal(logging.Debug, config.LogLevel)
	require.Equal(30*time.Second, config.SyncTimeout)
	require.Equal(50*time.Millisecond, config.PollFrequency)
	require.Equal(time.Minute, config.CommitTimeout)
}

func TestGetConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "missing node endpoint",
			args: []string{},
		},
		{
			name: "unknown log level",
			args: []string{
				"--node-endpoint=http://node:9650",
				"--log-level=loud",
			},
		},
		{
			name: "zero poll frequency",
			args: []string{
				"--node-endpoint=http://node:9650",
				"--poll-frequency=0s",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetConfigFromArgs(tt.args)
			require.Error(t, err)
		})
	}
}

func TestGetConfigFromFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"node-endpoint": "http://file:9650",
		"log-level": "warn"
	}`), 0o600))

	config, err := GetConfigFromArgs([]string{
		"--config-file=" + path,
	})
	require.NoError(err)
	require.Equal("http://file:9650", config.NodeEndpoint)
	require.Equal(logging.Warn, config.LogLevel)

	// A flag outranks the config file.
	config, err = GetConfigFromArgs([]string{
		"--config-file=" + path,
		"--node-endpoint=http://flag:9650",
	})
	require.NoError(err)
	require.Equal("http://flag:9650", config.NodeEndpoint)
}
