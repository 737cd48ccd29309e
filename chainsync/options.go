// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chainsync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultRunTimeout = 2 * time.Minute

type options struct {
	screener         Screener
	lock             StoreLock
	runTimeout       time.Duration
	metricsNamespace string
	registerer       prometheus.Registerer
}

func defaultOptions() *options {
	return &options{
		screener:         ScriptScreener{},
		lock:             NewProcessLock(),
		runTimeout:       defaultRunTimeout,
		metricsNamespace: "chainsync",
		registerer:       prometheus.NewRegistry(),
	}
}

type Option func(*options)

func WithScreener(screener Screener) Option {
	return func(o *options) {
		o.screener = screener
	}
}

// WithStoreLock injects a cross-process advisory lock keyed by store
// identity. The default only serializes within this process.
func WithStoreLock(lock StoreLock) Option {
	return func(o *options) {
		o.lock = lock
	}
}

// WithRunTimeout bounds one fetch+apply batch. Callers waiting on Sync are
// bounded by their own context instead.
func WithRunTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.runTimeout = timeout
	}
}

func WithMetricsRegisterer(namespace string, registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.metricsNamespace = namespace
		o.registerer = registerer
	}
}
