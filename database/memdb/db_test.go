// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/database"
)

func TestPutGetDelete(t *testing.T) {
	require := require.New(t)

	db := New()

	key := []byte("hello")
	value := []byte("world")

	_, err := db.Get(key)
	require.ErrorIs(err, database.ErrNotFound)

	require.NoError(db.Put(key, value))

	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)

	has, err := db.Has(key)
	require.NoError(err)
	require.True(has)

	require.NoError(db.Delete(key))

	has, err = db.Has(key)
	require.NoError(err)
	require.False(has)
}

func TestBatchAtomicWrite(t *testing.T) {
	require := require.New(t)

	db := New()

	b := db.NewBatch()
	require.NoError(b.Put([]byte("a"), []byte("1")))
	require.NoError(b.Put([]byte("b"), []byte("2")))
	require.NoError(b.Delete([]byte("a")))

	// Nothing is visible until the batch is written.
	has, err := db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)

	require.NoError(b.Write())

	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)

	got, err := db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), got)
}

func TestIteratorWithStartAndPrefix(t *testing.T) {
	require := require.New(t)

	db := New()
	require.NoError(db.Put([]byte("a/1"), []byte("1")))
	require.NoError(db.Put([]byte("a/2"), []byte("2")))
	require.NoError(db.Put([]byte("a/3"), []byte("3")))
	require.NoError(db.Put([]byte("b/1"), []byte("4")))

	it := db.NewIteratorWithStartAndPrefix([]byte("a/2"), []byte("a/"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(it.Error())
	require.Equal([]string{"a/2", "a/3"}, keys)
}

func TestClosedDatabase(t *testing.T) {
	require := require.New(t)

	db := New()
	require.NoError(db.Close())

	err := db.Put([]byte("k"), []byte("v"))
	require.ErrorIs(err, database.ErrClosed)

	_, err = db.Get([]byte("k"))
	require.ErrorIs(err, database.ErrClosed)

	require.ErrorIs(db.Close(), database.ErrClosed)

	it := db.NewIterator()
	require.False(it.Next())
	require.ErrorIs(it.Error(), database.ErrClosed)
}
