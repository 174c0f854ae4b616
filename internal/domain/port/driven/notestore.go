package driven

import (
	"context"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// NoteStore defines the driven port for the dashboard notes scratchpad.
type NoteStore interface {
	// Get retrieves the note. Returns a zero-value Note if none has been saved.
	Get(ctx context.Context) (model.Note, error)

	// Set stores or replaces the note markdown.
	Set(ctx context.Context, markdown string) error
}
