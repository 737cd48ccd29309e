// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chainsync

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	syncsStarted   prometheus.Counter
	syncsCoalesced prometheus.Counter
	syncsFailed    prometheus.Counter
	notesCommitted prometheus.Counter
	notesConsumed  prometheus.Counter
	syncHeight     prometheus.Gauge
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		syncsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_started",
			Help:      "Number of sync batches started",
		}),
		syncsCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_coalesced",
			Help:      "Number of sync calls that joined an in-flight batch",
		}),
		syncsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_failed",
			Help:      "Number of sync batches that failed",
		}),
		notesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_committed",
			Help:      "Number of input notes observed committed on chain",
		}),
		notesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notes_consumed",
			Help:      "Number of input notes observed consumed",
		}),
		syncHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_height",
			Help:      "Block height of the most recently applied update",
		}),
	}
	return m, errors.Join(
		registerer.Register(m.syncsStarted),
		registerer.Register(m.syncsCoalesced),
		registerer.Register(m.syncsFailed),
		registerer.Register(m.notesCommitted),
		registerer.Register(m.notesConsumed),
		registerer.Register(m.syncHeight),
	)
}
