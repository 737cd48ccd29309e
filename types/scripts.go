// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"crypto/sha256"

	"github.com/veilnet-labs/veilclient/ids"
)

// NoteScriptRoot derives the content address of a script. Scripts are stored
// and deduplicated by this root.
func NoteScriptRoot(code []byte) ids.ID {
	return ids.ID(sha256.Sum256(code))
}

// The scripts every client understands. A note carrying any other root cannot
// be screened as consumable without extra capabilities.
var (
	// PayToIDScriptCode is the standard transfer script: the note is
	// consumable by the account named in the note inputs.
	PayToIDScriptCode = []byte("veilnet.scripts.p2id.v1")
	PayToIDScriptRoot = NoteScriptRoot(PayToIDScriptCode)
)

// NewPayToIDScript returns the deduplicated script record for the standard
// transfer script.
func NewPayToIDScript() *NoteScript {
	return &NoteScript{
		Root: PayToIDScriptRoot,
		Code: PayToIDScriptCode,
	}
}

var nullifierDomain = []byte("veilnet.nullifier.v1")

// NoteNullifier derives the nullifier published when the note with [noteID]
// is consumed.
func NoteNullifier(noteID ids.ID) ids.Nullifier {
	digest := sha256.Sum256(append(noteID.Bytes(), nullifierDomain...))
	return ids.Nullifier(digest)
}
