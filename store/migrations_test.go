// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/database/memdb"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/logging"
)

func TestMigrationsIdempotent(t *testing.T) {
	require := require.New(t)
	db := memdb.New()

	s, err := New(db, logging.NoLog{})
	require.NoError(err)

	height, err := s.SyncHeight()
	require.NoError(err)
	require.Zero(height)

	// Reopening the same database re-runs nothing and loses nothing.
	w := s.NewWriteBatch()
	require.NoError(w.SetSyncHeight(42))
	require.NoError(w.Commit())

	s, err = New(db, logging.NoLog{})
	require.NoError(err)

	height, err = s.SyncHeight()
	require.NoError(err)
	require.Equal(uint64(42), height)
}

func TestMigrationHashMismatchFatal(t *testing.T) {
	require := require.New(t)
	db := memdb.New()

	_, err := New(db, logging.NoLog{})
	require.NoError(err)

	// A ledger entry produced by a different revision of the migration body
	// must refuse to open.
	require.NoError(db.Put(migrationsTable.key([]byte("initial_schema")), []byte("stale-hash")))

	_, err = New(db, logging.NoLog{})
	require.ErrorIs(err, ErrMigrationHashMismatch)
}

func TestNullifierIndexBackfill(t *testing.T) {
	require := require.New(t)
	db := memdb.New()

	s, err := New(db, logging.NoLog{})
	require.NoError(err)

	note := newTestInputNote(0x01, types.NoteStateCommitted)
	require.NoError(upsertNote(t, s, note))

	// Simulate a store created before the index migration existed: drop the
	// index row and the ledger entry, then reopen.
	require.NoError(db.Delete(inputNoteNullifiersTable.key(note.Nullifier.Bytes())))
	require.NoError(db.Delete(migrationsTable.key([]byte("nullifier_index"))))

	s, err = New(db, logging.NoLog{})
	require.NoError(err)

	resolved, err := s.InputNoteByNullifier(note.Nullifier)
	require.NoError(err)
	require.Equal(note.ID, resolved.ID)
}
