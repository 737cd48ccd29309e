// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToID(t *testing.T) {
	require := require.New(t)

	b := make([]byte, IDLen)
	b[0] = 0xab
	b[IDLen-1] = 0xcd

	id, err := ToID(b)
	require.NoError(err)
	require.Equal(b, id.Bytes())

	_, err = ToID(b[:IDLen-1])
	require.ErrorIs(err, errWrongIDLen)
	_, err = ToID(append(b, 0x00))
	require.ErrorIs(err, errWrongIDLen)
}

func TestIDHexRoundTrip(t *testing.T) {
	require := require.New(t)

	id := ID{'v', 'e', 'i', 'l', 'n', 'e', 't'}

	parsed, err := IDFromHex(id.Hex())
	require.NoError(err)
	require.Equal(id, parsed)

	// The 0x prefixed form parses too.
	parsed, err = IDFromHex(id.String())
	require.NoError(err)
	require.Equal(id, parsed)

	_, err = IDFromHex("0xzz")
	require.Error(err)
}

func TestIDString(t *testing.T) {
	id := ID{0xab}
	require.Equal(t, "0xab00000000000000000000000000000000000000000000000000000000000000", id.String())
}

func TestIDCompare(t *testing.T) {
	tests := []struct {
		a        ID
		b        ID
		expected int
	}{
		{
			a:        ID{1},
			b:        ID{0},
			expected: 1,
		},
		{
			a:        ID{1},
			b:        ID{1},
			expected: 0,
		},
		{
			a:        ID{1, 0},
			b:        ID{1, 2},
			expected: -1,
		},
	}
	for _, test := range tests {
		t.Run(test.a.String(), func(t *testing.T) {
			require := require.New(t)

			require.Equal(test.expected, test.a.Compare(test.b))
			require.Equal(-test.expected, test.b.Compare(test.a))
		})
	}
}

func TestNullifierRoundTrip(t *testing.T) {
	require := require.New(t)

	nullifier := Nullifier{0x42}
	parsed, err := ToNullifier(nullifier.Bytes())
	require.NoError(err)
	require.Equal(nullifier, parsed)

	_, err = ToNullifier([]byte{0x42})
	require.ErrorIs(err, errWrongIDLen)
}
