// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package formatting encodes binary payloads for the JSON node API. The hex
// form carries a 4 byte checksum so a truncated or corrupted copy-paste fails
// loudly instead of deserializing garbage.
package formatting

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const checksumLen = 4

var (
	errMissingHexPrefix = errors.New("missing 0x prefix")
	errMissingChecksum  = errors.New("input string is smaller than the checksum size")
	errBadChecksum      = errors.New("invalid input checksum")
)

func checksum(b []byte) []byte {
	digest := sha256.Sum256(b)
	return digest[len(digest)-checksumLen:]
}

// Encode returns the checksummed hex form of [b].
func Encode(b []byte) string {
	checked := make([]byte, len(b)+checksumLen)
	copy(checked, b)
	copy(checked[len(b):], checksum(b))
	return fmt.Sprintf("0x%x", checked)
}

// Decode parses a string produced by Encode, verifying the checksum.
func Decode(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, errMissingHexPrefix
	}
	checked, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, err
	}
	if len(checked) < checksumLen {
		return nil, errMissingChecksum
	}
	b := checked[:len(checked)-checksumLen]
	if !bytes.Equal(checked[len(b):], checksum(b)) {
		return nil, errBadChecksum
	}
	return b, nil
}
