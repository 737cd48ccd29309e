// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/ids"
)

func newTestID(b byte) ids.ID {
	var id ids.ID
	id[0] = b
	id[ids.IDLen-1] = b
	return id
}

func newTestNullifier(b byte) ids.Nullifier {
	return ids.Nullifier(newTestID(b))
}

func newTestAccountID(t *testing.T, seed string) ids.AccountID {
	t.Helper()
	return ids.NewAccountID(ids.AccountFungibleFaucet, false, []byte(seed))
}

func TestAccountHeaderRoundTrip(t *testing.T) {
	require := require.New(t)

	header := &AccountHeader{
		ID:                newTestAccountID(t, "account"),
		Nonce:             0,
		CodeCommitment:    newTestID(0x01),
		StorageCommitment: newTestID(0x02),
		VaultRoot:         newTestID(0x03),
		Seed:              []byte("account seed"),
		Watched:           true,
	}
	require.NoError(header.Verify())

	parsed, err := ParseAccountHeader(header.Bytes())
	require.NoError(err)
	require.Equal(header, parsed)
}

func TestAccountHeaderNonceZeroRequiresSeed(t *testing.T) {
	require := require.New(t)

	header := &AccountHeader{
		ID:    newTestAccountID(t, "account"),
		Nonce: 0,
	}
	require.ErrorIs(header.Verify(), errSeedRequired)

	header.Nonce = 1
	require.NoError(header.Verify())
}

func TestTransactionRecordRoundTrip(t *testing.T) {
	require := require.New(t)

	record := &TransactionRecord{
		ID:           newTestID(0x0a),
		AccountID:    newTestAccountID(t, "acct"),
		Details:      []byte("details"),
		ScriptRoot:   newTestID(0x0b),
		BlockNum:     12,
		Status:       TransactionDiscarded,
		DiscardCause: "expired",
	}

	parsed, err := ParseTransactionRecord(record.Bytes())
	require.NoError(err)
	require.Equal(record, parsed)
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	require := require.New(t)

	header := &BlockHeader{
		Number:     9,
		Digest:     newTestID(0x01),
		PrevDigest: newTestID(0x02),
		NoteRoot:   newTestID(0x03),
		Timestamp:  1700000000,
		Peaks: MmrPeaks{
			ForestSize: 9,
			Peaks:      []ids.ID{newTestID(0x04), newTestID(0x05)},
		},
	}

	parsed, err := ParseBlockHeader(header.Bytes())
	require.NoError(err)
	require.Equal(header, parsed)
}

func TestUnpackerRejectsTruncatedInput(t *testing.T) {
	require := require.New(t)

	header := &AccountHeader{
		ID:    newTestAccountID(t, "account"),
		Nonce: 3,
	}
	raw := header.Bytes()

	_, err := ParseAccountHeader(raw[:len(raw)-1])
	require.ErrorIs(err, errBadLength)
}
