// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"time"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

const (
	defaultPollFrequency = 500 * time.Millisecond
	defaultCommitTimeout = 5 * time.Minute
)

// CommitObserver is notified after every WaitForCommit poll with the
// transaction's current status.
type CommitObserver func(txID ids.ID, status types.TransactionStatus)

type options struct {
	pollFrequency  time.Duration
	commitTimeout  time.Duration
	commitObserver CommitObserver
}

func defaultOptions() *options {
	return &options{
		pollFrequency: defaultPollFrequency,
		commitTimeout: defaultCommitTimeout,
	}
}

type Option func(*options)

// WithPollFrequency sets how often WaitForCommit re-syncs and re-checks the
// transaction status.
func WithPollFrequency(frequency time.Duration) Option {
	return func(o *options) {
		o.pollFrequency = frequency
	}
}

// WithCommitTimeout bounds WaitForCommit by wall clock, not block height.
func WithCommitTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.commitTimeout = timeout
	}
}

// WithCommitObserver registers a callback observing WaitForCommit progress.
func WithCommitObserver(observer CommitObserver) Option {
	return func(o *options) {
		o.commitObserver = observer
	}
}
