// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"github.com/veilnet-labs/veilclient/ids"
)

// AddAddress records a user facing address for [id]. One account may carry
// several addresses.
func (w *WriteBatch) AddAddress(id ids.AccountID, address string) error {
	return wrapStoreErr(w.b.Put(addressesTable.key(id.Bytes(), []byte(address)), nil))
}

// AddressesForAccount returns every address registered for [id].
func (s *Store) AddressesForAccount(id ids.AccountID) ([]string, error) {
	prefix := addressesTable.key(id.Bytes())

	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	var addresses []string
	for it.Next() {
		addresses = append(addresses, string(it.Key()[len(prefix):]))
	}
	return addresses, wrapStoreErr(it.Error())
}

// RemoveAddressesForAccount drops every address of [id], used when the
// account stops being tracked.
func (w *WriteBatch) RemoveAddressesForAccount(id ids.AccountID) error {
	prefix := addressesTable.key(id.Bytes())

	it := w.s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	for it.Next() {
		if err := w.b.Delete(it.Key()); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(it.Error())
}
