// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"errors"

	"github.com/veilnet-labs/veilclient/verrs"
)

var (
	ErrAccountNotFound       = verrs.New(verrs.CodeAccountNotFound, "account not found")
	ErrAccountLocked         = verrs.New(verrs.CodeAccountLocked, "account locked")
	ErrNoteNotFound          = verrs.New(verrs.CodeNoteNotFound, "note not found")
	ErrStorageSlotNotFound   = verrs.New(verrs.CodeStorageSlotNotFound, "storage slot not found")
	ErrMmrLengthMismatch     = verrs.New(verrs.CodeMmrLengthMismatch, "mmr index and node lists differ in length")
	ErrMigrationHashMismatch = verrs.New(verrs.CodeMigrationHashMismatch, "migration ledger hash mismatch")

	errStore            = verrs.New(verrs.CodeStore, "store failure")
	errDeserialize      = verrs.New(verrs.CodeStoreDeserialize, "store deserialization failure")
	errCorruptHistoricalRow = errors.New("corrupt historical row")
)

// wrapStoreErr tags any backing database failure with the stable store code
// exactly once. Failures are never swallowed: stale local state must not look
// ready.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	var verr *verrs.Error
	if errors.As(err, &verr) {
		return err
	}
	return errStore.WithCause(err)
}

func wrapDeserializeErr(err error) error {
	if err == nil {
		return nil
	}
	return errDeserialize.WithCause(err)
}
