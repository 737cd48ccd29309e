// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

// Tag rows are keyed by the tag value plus a digest of the full record so
// that the same tag registered for two different sources stays two rows.
func noteTagKey(tag *types.NoteTag) []byte {
	raw := tag.Bytes()
	digest := sha256.Sum256(raw)

	key := make([]byte, 0, 4+8)
	key = binary.BigEndian.AppendUint32(key, tag.Tag)
	return noteTagsTable.key(key, digest[:8])
}

// AddNoteTag registers a blinding filter with the local tag table. The tag is
// sent to the node on the next sync so matching notes are forwarded.
func (w *WriteBatch) AddNoteTag(tag *types.NoteTag) error {
	return wrapStoreErr(w.b.Put(noteTagKey(tag), tag.Bytes()))
}

// NoteTags returns every registered tag.
func (s *Store) NoteTags() ([]*types.NoteTag, error) {
	it := s.db.NewIteratorWithPrefix(noteTagsTable.prefix())
	defer it.Release()

	var tags []*types.NoteTag
	for it.Next() {
		tag, err := types.ParseNoteTag(it.Value())
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		tags = append(tags, tag)
	}
	return tags, wrapStoreErr(it.Error())
}

// RemoveNoteTagsForNotes drops tags whose source note has committed; the
// node no longer needs the filter.
func (w *WriteBatch) RemoveNoteTagsForNotes(noteIDs []ids.ID) error {
	if len(noteIDs) == 0 {
		return nil
	}
	committed := make(map[ids.ID]struct{}, len(noteIDs))
	for _, id := range noteIDs {
		committed[id] = struct{}{}
	}

	it := w.s.db.NewIteratorWithPrefix(noteTagsTable.prefix())
	defer it.Release()

	for it.Next() {
		tag, err := types.ParseNoteTag(it.Value())
		if err != nil {
			return wrapDeserializeErr(err)
		}
		if tag.SourceNoteID == nil {
			continue
		}
		if _, ok := committed[*tag.SourceNoteID]; !ok {
			continue
		}
		if err := w.b.Delete(it.Key()); err != nil {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(it.Error())
}
