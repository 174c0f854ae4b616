package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.NoteStore = (*NoteRepo)(nil)

// NoteRepo is the SQLite implementation of the NoteStore port. The dashboard
// has exactly one notes box, so the table holds a single row.
type NoteRepo struct {
	db *DB
}

// NewNoteRepo creates a new NoteRepo backed by the given DB.
func NewNoteRepo(db *DB) *NoteRepo {
	return &NoteRepo{db: db}
}

// Get retrieves the note. Returns a zero-value Note if none has been saved yet.
func (r *NoteRepo) Get(ctx context.Context) (model.Note, error) {
	const query = `SELECT markdown, updated_at FROM notes WHERE id = 1`

	var note model.Note
	var updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&note.Markdown, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, nil
	}
	if err != nil {
		return model.Note{}, fmt.Errorf("get note: %w", err)
	}

	note.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return model.Note{}, fmt.Errorf("parse note updated_at: %w", err)
	}
	return note, nil
}

// Set stores or replaces the note markdown.
func (r *NoteRepo) Set(ctx context.Context, markdown string) error {
	const query = `
		INSERT INTO notes (id, markdown, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET markdown = excluded.markdown, updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.Writer.ExecContext(ctx, query, markdown, now); err != nil {
		return fmt.Errorf("set note: %w", err)
	}
	return nil
}
