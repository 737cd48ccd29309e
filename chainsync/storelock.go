// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chainsync

import (
	"context"
)

var _ StoreLock = (*ProcessLock)(nil)

// StoreLock serializes fetch+apply sequences across every process sharing one
// durable store. Embedders with a cross-process primitive (flock, web locks)
// inject their own implementation; ProcessLock is the in-process fallback.
type StoreLock interface {
	// Acquire blocks until the lock is held or [ctx] expires. The returned
	// release function must be called exactly once.
	Acquire(ctx context.Context) (release func(), err error)
}

// ProcessLock is a context-aware mutex scoped to this process. It trades
// cross-process safety for functioning single-process coalescing.
type ProcessLock struct {
	ch chan struct{}
}

func NewProcessLock() *ProcessLock {
	return &ProcessLock{
		ch: make(chan struct{}, 1),
	}
}

func (l *ProcessLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.ch <- struct{}{}:
		return func() { <-l.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
