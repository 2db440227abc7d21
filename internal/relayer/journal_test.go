package relayer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournalFreshStartsAtHeightOne(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)

	next, err := j.NextHeight()
	require.NoError(t, err)
	require.EqualValues(t, 1, next)
}

func TestJournalResumesAtStartedHeight(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)

	require.NoError(t, j.MarkPreSubmit(5))

	next, err := j.NextHeight()
	require.NoError(t, err)
	require.EqualValues(t, 5, next)
}

func TestJournalAdvancesPastSubmittedHeight(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)

	require.NoError(t, j.MarkPreSubmit(5))
	require.NoError(t, j.MarkPostSubmit(5))

	next, err := j.NextHeight()
	require.NoError(t, err)
	require.EqualValues(t, 6, next)

	submitted, err := j.IsSubmitted(5)
	require.NoError(t, err)
	require.True(t, submitted)

	submitted, err = j.IsSubmitted(6)
	require.NoError(t, err)
	require.False(t, submitted)
}

func TestJournalSurvivesReopenAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)
	require.NoError(t, j.MarkPreSubmit(3))
	require.NoError(t, j.MarkPostSubmit(3))

	reopened, err := OpenJournal(dir)
	require.NoError(t, err)
	next, err := reopened.NextHeight()
	require.NoError(t, err)
	require.EqualValues(t, 4, next)
}

func TestJournalCorruptedPreSubmitRefusesToStart(t *testing.T) {
	dir := t.TempDir()
	j, err := OpenJournal(dir)
	require.NoError(t, err)
	require.NoError(t, j.MarkPreSubmit(2))

	require.NoError(t, writeStateAtomic(j.preSubmitPath, journalState{Kind: "garbled"}))

	_, err = j.NextHeight()
	require.Error(t, err)
}
