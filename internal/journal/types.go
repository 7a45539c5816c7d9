package journal

import "errors"

// Note is a free-form journal entry with optional structured fields.
type Note struct {
	ID      int64        `json:"id"`
	OwnerID int64        `json:"owner_id"`
	Title   string       `json:"title"`
	Content string       `json:"content,omitempty"`
	Fields  []ValueField `json:"fields"`
}

// ValueField is a named value attached to a note, optionally backed by a
// dice formula (a skill modifier, a saving throw).
type ValueField struct {
	ID      int64  `json:"id"`
	NoteID  int64  `json:"note_id"`
	Title   string `json:"title"`
	Value   string `json:"value,omitempty"`
	Formula string `json:"formula,omitempty"`
}

// PointTracker is a bounded counter (hit points, spell slots).
type PointTracker struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`
	Current int    `json:"current"`
	Maximum int    `json:"maximum"`
}

// Sentinel errors for journal operations.
var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrFieldNotFound   = errors.New("value field not found")
	ErrTrackerNotFound = errors.New("point tracker not found")
	ErrInvalidNote     = errors.New("invalid note")
)
