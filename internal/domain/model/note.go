package model

import "time"

// Note is the operator scratchpad shown on the dashboard. A single row,
// stored as markdown and rendered to sanitized HTML on read.
type Note struct {
	Markdown  string
	UpdatedAt time.Time
}
