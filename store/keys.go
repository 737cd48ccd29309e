// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"bytes"
	"encoding/binary"

	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
)

// table prefixes the single keyspace of the backing database. The backing
// store has no native buckets, so a one byte prefix per logical table is used
// instead. Prefixes are append-only: never reorder or reuse them.
type table byte

const (
	latestAccountHeadersTable table = iota
	historicalAccountHeadersTable
	latestAccountStorageTable
	historicalAccountStorageTable
	latestStorageMapEntriesTable
	historicalStorageMapEntriesTable
	latestAccountAssetsTable
	historicalAccountAssetsTable
	inputNotesTable
	inputNoteNullifiersTable
	outputNotesTable
	noteScriptsTable
	transactionsTable
	blockHeadersTable
	partialBlockchainNodesTable
	stateSyncTable
	noteTagsTable
	addressesTable
	migrationsTable
)

// key flattens the table prefix and key parts into a single database key.
func (t table) key(parts ...[]byte) []byte {
	return append([]byte{byte(t)}, bytes.Join(parts, nil)...)
}

func (t table) prefix() []byte {
	return []byte{byte(t)}
}

func accountNonceKey(t table, id ids.AccountID, nonce uint64) []byte {
	return t.key(id.Bytes(), database.PackUInt64(nonce))
}

// namedKey length-prefixes [name] so that variable length names cannot alias
// each other inside composite keys.
func namedKey(name string) []byte {
	b := make([]byte, 4, 4+len(name))
	binary.BigEndian.PutUint32(b, uint32(len(name)))
	return append(b, name...)
}

// latestSlotKey is (account_id, slot_name).
func latestSlotKey(id ids.AccountID, name string) []byte {
	return latestAccountStorageTable.key(id.Bytes(), namedKey(name))
}

// historicalSlotKey is (account_id, slot_name, nonce) so that one slot's
// versions are adjacent and ascending.
func historicalSlotKey(id ids.AccountID, name string, nonce uint64) []byte {
	return historicalAccountStorageTable.key(id.Bytes(), namedKey(name), database.PackUInt64(nonce))
}

func latestMapEntryKey(id ids.AccountID, slot string, key []byte) []byte {
	return latestStorageMapEntriesTable.key(id.Bytes(), namedKey(slot), key)
}

func historicalMapEntryKey(id ids.AccountID, slot string, key []byte, nonce uint64) []byte {
	return historicalStorageMapEntriesTable.key(
		id.Bytes(), namedKey(slot), namedKey(string(key)), database.PackUInt64(nonce))
}

func latestAssetKey(id ids.AccountID, vaultKey ids.ID) []byte {
	return latestAccountAssetsTable.key(id.Bytes(), vaultKey.Bytes())
}

func historicalAssetKey(id ids.AccountID, vaultKey ids.ID, nonce uint64) []byte {
	return historicalAccountAssetsTable.key(id.Bytes(), vaultKey.Bytes(), database.PackUInt64(nonce))
}

// Historical values distinguish tombstones (the entry was removed at that
// nonce) from values. A missing row means the entry was untouched at that
// nonce.
const (
	historicalTombstone byte = 0x00
	historicalValue     byte = 0x01
)

func tombstoneValue() []byte {
	return []byte{historicalTombstone}
}

func presentValue(b []byte) []byte {
	return append([]byte{historicalValue}, b...)
}

func parseHistoricalValue(b []byte) (value []byte, tombstone bool, err error) {
	if len(b) == 0 {
		return nil, false, errCorruptHistoricalRow
	}
	if b[0] == historicalTombstone {
		return nil, true, nil
	}
	return b[1:], false, nil
}
