// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"go.uber.org/zap"

	"github.com/veilnet-labs/veilclient/database"
)

// A migration reshapes the persisted layout. Migrations are forward-only and
// idempotent: each one runs at most once per store, recorded in the ledger
// under the hash of its body revision. Editing a shipped migration changes
// its hash and bricks existing stores on purpose.
type migration struct {
	name string
	// revision participates in the ledger hash; bump it whenever the body
	// changes so the mismatch is caught instead of silently diverging.
	revision string
	run      func(db database.Database, b database.Batch) error
}

var migrations = []migration{
	{
		name:     "initial_schema",
		revision: "v1",
		run: func(_ database.Database, b database.Batch) error {
			// Seed the sync height scalar so readers never see ErrNotFound.
			return b.Put(stateSyncTable.key(), database.PackUInt64(0))
		},
	},
	{
		name:     "nullifier_index",
		revision: "v1",
		run: func(db database.Database, b database.Batch) error {
			// Backfill the nullifier -> note id index for stores created
			// before the index existed.
			it := db.NewIteratorWithPrefix(inputNotesTable.prefix())
			defer it.Release()
			for it.Next() {
				note, err := parseInputNote(it.Value())
				if err != nil {
					return err
				}
				key := inputNoteNullifiersTable.key(note.Nullifier.Bytes())
				if err := b.Put(key, note.ID.Bytes()); err != nil {
					return err
				}
			}
			return it.Error()
		},
	},
}

func (m *migration) hash() []byte {
	digest := sha256.Sum256([]byte(m.name + "\x00" + m.revision))
	return digest[:]
}

// runMigrations applies every migration not yet recorded in the ledger. A
// recorded hash that does not match the current body is a fatal startup
// error: the on-disk layout was produced by an incompatible revision.
func (s *Store) runMigrations() error {
	for i := range migrations {
		m := &migrations[i]
		ledgerKey := migrationsTable.key([]byte(m.name))

		stored, err := s.db.Get(ledgerKey)
		switch {
		case err == nil:
			if !bytes.Equal(stored, m.hash()) {
				return ErrMigrationHashMismatch.WithMessagef("migration %q", m.name)
			}
			continue // already applied, re-running is a no-op
		case !errors.Is(err, database.ErrNotFound):
			return wrapStoreErr(err)
		}

		b := s.db.NewBatch()
		if err := m.run(s.db, b); err != nil {
			return wrapStoreErr(err)
		}
		if err := b.Put(ledgerKey, m.hash()); err != nil {
			return wrapStoreErr(err)
		}
		if err := b.Write(); err != nil {
			return wrapStoreErr(err)
		}
		s.log.Info("applied store migration",
			zap.String("name", m.name),
		)
	}
	return nil
}
