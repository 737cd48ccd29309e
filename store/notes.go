// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"bytes"
	"errors"

	"github.com/veilnet-labs/veilclient/database"
	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
	"github.com/veilnet-labs/veilclient/utils/set"
)

// NoteFilterKind selects how QueryInputNotes narrows its snapshot.
type NoteFilterKind byte

const (
	NoteFilterAll NoteFilterKind = iota
	NoteFilterByState
	NoteFilterByIDs
	NoteFilterByNullifiers
)

// NoteFilter narrows a note query. Results are a snapshot, not a live
// cursor.
type NoteFilter struct {
	Kind       NoteFilterKind
	States     set.Set[types.NoteState]
	IDs        set.Set[ids.ID]
	Nullifiers set.Set[ids.Nullifier]
}

func FilterAll() NoteFilter {
	return NoteFilter{Kind: NoteFilterAll}
}

func FilterByState(states ...types.NoteState) NoteFilter {
	return NoteFilter{Kind: NoteFilterByState, States: set.Of(states...)}
}

func FilterByIDs(noteIDs ...ids.ID) NoteFilter {
	return NoteFilter{Kind: NoteFilterByIDs, IDs: set.Of(noteIDs...)}
}

func FilterByNullifiers(nullifiers ...ids.Nullifier) NoteFilter {
	return NoteFilter{Kind: NoteFilterByNullifiers, Nullifiers: set.Of(nullifiers...)}
}

func (f *NoteFilter) matches(note *types.InputNote) bool {
	switch f.Kind {
	case NoteFilterByState:
		return f.States.Contains(note.State)
	case NoteFilterByIDs:
		return f.IDs.Contains(note.ID)
	case NoteFilterByNullifiers:
		return f.Nullifiers.Contains(note.Nullifier)
	default:
		return true
	}
}

func parseInputNote(b []byte) (*types.InputNote, error) {
	note, err := types.ParseInputNote(b)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return note, nil
}

// GetInputNote returns the note with [noteID].
func (s *Store) GetInputNote(noteID ids.ID) (*types.InputNote, error) {
	b, err := s.db.Get(inputNotesTable.key(noteID.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound.WithMessagef("%s", noteID)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return parseInputNote(b)
}

// QueryInputNotes returns a snapshot of every note matched by [filter].
func (s *Store) QueryInputNotes(filter NoteFilter) ([]*types.InputNote, error) {
	it := s.db.NewIteratorWithPrefix(inputNotesTable.prefix())
	defer it.Release()

	var notes []*types.InputNote
	for it.Next() {
		note, err := parseInputNote(it.Value())
		if err != nil {
			return nil, err
		}
		if filter.matches(note) {
			notes = append(notes, note)
		}
	}
	return notes, wrapStoreErr(it.Error())
}

// UnspentNullifiers returns the nullifiers of every note not yet consumed,
// used to ask the node whether another replica has since spent them.
func (s *Store) UnspentNullifiers() ([]ids.Nullifier, error) {
	notes, err := s.QueryInputNotes(FilterAll())
	if err != nil {
		return nil, err
	}
	var nullifiers []ids.Nullifier
	for _, note := range notes {
		if !note.State.Consumed() {
			nullifiers = append(nullifiers, note.Nullifier)
		}
	}
	return nullifiers, nil
}

// InputNoteByNullifier resolves a published nullifier to its local note, if
// tracked.
func (s *Store) InputNoteByNullifier(nullifier ids.Nullifier) (*types.InputNote, error) {
	b, err := s.db.Get(inputNoteNullifiersTable.key(nullifier.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound.WithMessagef("nullifier %s", nullifier)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	noteID, err := ids.ToID(b)
	if err != nil {
		return nil, wrapDeserializeErr(err)
	}
	return s.GetInputNote(noteID)
}

// UpsertInputNote records [note], validating the state transition when the
// note already exists. Re-applying identical data is a no-op; an illegal
// transition (any move out of a consumed state) is rejected.
func (w *WriteBatch) UpsertInputNote(note *types.InputNote) error {
	existing, err := w.s.GetInputNote(note.ID)
	switch {
	case errors.Is(err, ErrNoteNotFound):
		// new note, fall through to the write
	case err != nil:
		return err
	case bytes.Equal(existing.Bytes(), note.Bytes()):
		return nil
	case existing.State != note.State && !existing.State.ValidTransition(note.State):
		return types.ErrInvalidStateTransition.WithMessagef(
			"note %s: %s -> %s", note.ID, existing.State, note.State)
	}

	if err := w.b.Put(inputNotesTable.key(note.ID.Bytes()), note.Bytes()); err != nil {
		return wrapStoreErr(err)
	}
	key := inputNoteNullifiersTable.key(note.Nullifier.Bytes())
	return wrapStoreErr(w.b.Put(key, note.ID.Bytes()))
}

// GetOutputNote returns the locally emitted note with [noteID].
func (s *Store) GetOutputNote(noteID ids.ID) (*types.OutputNote, error) {
	b, err := s.db.Get(outputNotesTable.key(noteID.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound.WithMessagef("%s", noteID)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	note, err := types.ParseOutputNote(b)
	return note, wrapDeserializeErr(err)
}

// OutputNotes returns a snapshot of every locally emitted note.
func (s *Store) OutputNotes() ([]*types.OutputNote, error) {
	it := s.db.NewIteratorWithPrefix(outputNotesTable.prefix())
	defer it.Release()

	var notes []*types.OutputNote
	for it.Next() {
		note, err := types.ParseOutputNote(it.Value())
		if err != nil {
			return nil, wrapDeserializeErr(err)
		}
		notes = append(notes, note)
	}
	return notes, wrapStoreErr(it.Error())
}

// UpsertOutputNote records [note]. A committed output note never moves back
// to expected.
func (w *WriteBatch) UpsertOutputNote(note *types.OutputNote) error {
	existing, err := w.s.GetOutputNote(note.ID)
	switch {
	case errors.Is(err, ErrNoteNotFound):
	case err != nil:
		return err
	case existing.State == types.OutputNoteStateCommitted && note.State == types.OutputNoteStateExpected:
		return types.ErrInvalidStateTransition.WithMessagef(
			"output note %s: committed -> expected", note.ID)
	}
	return wrapStoreErr(w.b.Put(outputNotesTable.key(note.ID.Bytes()), note.Bytes()))
}

// PutNoteScript stores [script] once per root. Scripts are content addressed
// and therefore deduplicated by construction.
func (w *WriteBatch) PutNoteScript(script *types.NoteScript) error {
	if err := script.Verify(); err != nil {
		return wrapStoreErr(err)
	}
	seen, err := w.s.db.Has(noteScriptsTable.key(script.Root.Bytes()))
	if err != nil {
		return wrapStoreErr(err)
	}
	if seen {
		return nil
	}
	return wrapStoreErr(w.b.Put(noteScriptsTable.key(script.Root.Bytes()), script.Code))
}

// GetNoteScript returns the deduplicated script stored under [root].
func (s *Store) GetNoteScript(root ids.ID) ([]byte, error) {
	code, err := s.db.Get(noteScriptsTable.key(root.Bytes()))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoteNotFound.WithMessagef("script %s", root)
	}
	return code, wrapStoreErr(err)
}
