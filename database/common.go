// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

const (
	// If, when a batch is reset, cap(batch)/len(batch) is greater than
	// MaxExcessCapacityFactor, the underlying array's capacity is reduced by a
	// factor of CapacityReductionFactor. A higher MaxExcessCapacityFactor
	// trades fewer allocations for more dead memory held by the batch.
	MaxExcessCapacityFactor = 4
	CapacityReductionFactor = 2
)
