// Copyright (C) 2023-2026, VeilNet Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilnet-labs/veilclient/ids"
	"github.com/veilnet-labs/veilclient/types"
)

func newTestInputNote(b byte, state types.NoteState) *types.InputNote {
	return &types.InputNote{
		ID:           newTestID(b),
		SerialNumber: newTestID(b + 1),
		ScriptRoot:   newTestID(0x55),
		Nullifier:    newTestNullifier(b),
		CreatedAt:    10,
		State:        state,
	}
}

func upsertNote(t *testing.T, s *Store, note *types.InputNote) error {
	t.Helper()

	w := s.NewWriteBatch()
	if err := w.UpsertInputNote(note); err != nil {
		return err
	}
	return w.Commit()
}

func TestUpsertInputNoteTransitions(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	note := newTestInputNote(0x01, types.NoteStateExpected)
	require.NoError(upsertNote(t, s, note))

	// Identical re-delivery is a no-op.
	require.NoError(upsertNote(t, s, note))

	note.State = types.NoteStateCommitted
	note.InclusionHeight = 7
	require.NoError(upsertNote(t, s, note))

	note.State = types.NoteStateConsumedExternal
	require.NoError(upsertNote(t, s, note))

	// Consumed is terminal.
	note.State = types.NoteStateCommitted
	err := upsertNote(t, s, note)
	require.ErrorIs(err, types.ErrInvalidStateTransition)

	stored, err := s.GetInputNote(note.ID)
	require.NoError(err)
	require.Equal(types.NoteStateConsumedExternal, stored.State)
}

func TestCommittedNoteFallsBackOnReorg(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	note := newTestInputNote(0x01, types.NoteStateCommitted)
	note.InclusionHeight = 9
	require.NoError(upsertNote(t, s, note))

	note.State = types.NoteStateExpected
	note.InclusionHeight = 0
	require.NoError(upsertNote(t, s, note))

	stored, err := s.GetInputNote(note.ID)
	require.NoError(err)
	require.Equal(types.NoteStateExpected, stored.State)
	require.Zero(stored.InclusionHeight)
}

func TestQueryInputNotes(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	expected := newTestInputNote(0x01, types.NoteStateExpected)
	committed := newTestInputNote(0x03, types.NoteStateCommitted)
	consumed := newTestInputNote(0x05, types.NoteStateConsumedAuthenticated)
	for _, note := range []*types.InputNote{expected, committed, consumed} {
		require.NoError(upsertNote(t, s, note))
	}

	all, err := s.QueryInputNotes(FilterAll())
	require.NoError(err)
	require.Len(all, 3)

	byState, err := s.QueryInputNotes(FilterByState(types.NoteStateCommitted))
	require.NoError(err)
	require.Len(byState, 1)
	require.Equal(committed.ID, byState[0].ID)

	byID, err := s.QueryInputNotes(FilterByIDs(expected.ID, consumed.ID))
	require.NoError(err)
	require.Len(byID, 2)

	byNullifier, err := s.QueryInputNotes(FilterByNullifiers(committed.Nullifier))
	require.NoError(err)
	require.Len(byNullifier, 1)
	require.Equal(committed.ID, byNullifier[0].ID)
}

func TestUnspentNullifiersAndIndex(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	open := newTestInputNote(0x01, types.NoteStateCommitted)
	spent := newTestInputNote(0x03, types.NoteStateConsumedExternal)
	require.NoError(upsertNote(t, s, open))
	require.NoError(upsertNote(t, s, spent))

	nullifiers, err := s.UnspentNullifiers()
	require.NoError(err)
	require.Equal([]ids.Nullifier{open.Nullifier}, nullifiers)

	resolved, err := s.InputNoteByNullifier(spent.Nullifier)
	require.NoError(err)
	require.Equal(spent.ID, resolved.ID)

	_, err = s.InputNoteByNullifier(newTestNullifier(0x77))
	require.ErrorIs(err, ErrNoteNotFound)
}

func TestOutputNoteCommittedNeverRegresses(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	note := &types.OutputNote{
		ID:              newTestID(0x01),
		RecipientDigest: newTestID(0x02),
		State:           types.OutputNoteStateExpected,
	}
	w := s.NewWriteBatch()
	require.NoError(w.UpsertOutputNote(note))
	require.NoError(w.Commit())

	note.State = types.OutputNoteStateCommitted
	w = s.NewWriteBatch()
	require.NoError(w.UpsertOutputNote(note))
	require.NoError(w.Commit())

	note.State = types.OutputNoteStateExpected
	w = s.NewWriteBatch()
	require.ErrorIs(w.UpsertOutputNote(note), types.ErrInvalidStateTransition)

	stored, err := s.GetOutputNote(note.ID)
	require.NoError(err)
	require.Equal(types.OutputNoteStateCommitted, stored.State)
}

func TestNoteScriptDeduplication(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	script := &types.NoteScript{
		Root: newTestID(0x0a),
		Code: []byte("begin push.1 end"),
	}
	w := s.NewWriteBatch()
	require.NoError(w.PutNoteScript(script))
	require.NoError(w.Commit())

	// Second write under the same root keeps the original bytes.
	w = s.NewWriteBatch()
	require.NoError(w.PutNoteScript(&types.NoteScript{
		Root: script.Root,
		Code: []byte("tampered"),
	}))
	require.NoError(w.Commit())

	code, err := s.GetNoteScript(script.Root)
	require.NoError(err)
	require.Equal(script.Code, code)

	w = s.NewWriteBatch()
	require.Error(w.PutNoteScript(&types.NoteScript{Code: []byte("no root")}))
}

func TestNoteTagsLifecycle(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	noteID := newTestID(0x01)
	accountID := newTestAccountID("a")
	w := s.NewWriteBatch()
	require.NoError(w.AddNoteTag(&types.NoteTag{Tag: 7, SourceNoteID: &noteID}))
	require.NoError(w.AddNoteTag(&types.NoteTag{Tag: 7, SourceAccountID: &accountID}))
	require.NoError(w.Commit())

	tags, err := s.NoteTags()
	require.NoError(err)
	require.Len(tags, 2)

	// Removing by note id leaves the account-sourced tag in place.
	w = s.NewWriteBatch()
	require.NoError(w.RemoveNoteTagsForNotes([]ids.ID{noteID}))
	require.NoError(w.Commit())

	tags, err = s.NoteTags()
	require.NoError(err)
	require.Len(tags, 1)
	require.NotNil(tags[0].SourceAccountID)
}
