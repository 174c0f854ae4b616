package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepo_GetEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)

	note, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Empty(t, note.Markdown)
	assert.True(t, note.UpdatedAt.IsZero())
}

func TestNoteRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "## Crew reminders\n- truck 2 oil change"))

	note, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "## Crew reminders\n- truck 2 oil change", note.Markdown)
	assert.False(t, note.UpdatedAt.IsZero())
}

func TestNoteRepo_SetReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "first"))
	require.NoError(t, repo.Set(ctx, "second"))

	note, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", note.Markdown)
}
