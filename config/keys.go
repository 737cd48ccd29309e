// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

// Flag and config-file keys. The environment variable for a key is the key
// upper-cased, dashes replaced by underscores, prefixed with VEILCLIENT_.
const (
	ConfigFileKey = "config-file"

	DataDirKey    = "data-dir"
	DBInMemoryKey = "db-in-memory"

	NodeEndpointKey   = "node-endpoint"
	ProverEndpointKey = "prover-endpoint"
	RequestTimeoutKey = "request-timeout"

	LogLevelKey = "log-level"

	SyncTimeoutKey   = "sync-timeout"
	PollFrequencyKey = "poll-frequency"
	CommitTimeoutKey = "commit-timeout"

	MetricsNamespaceKey = "metrics-namespace"
)
