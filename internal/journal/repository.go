package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Repository persists notes, value fields, and point trackers. All
// reads and writes are scoped to the owning user.
type Repository interface {
	CreateNote(ctx context.Context, n *Note) error
	GetNote(ctx context.Context, id, ownerID int64) (*Note, error)
	ListNotes(ctx context.Context, ownerID int64) ([]Note, error)
	UpdateNote(ctx context.Context, n *Note) error
	DeleteNote(ctx context.Context, id, ownerID int64) error

	AddField(ctx context.Context, ownerID int64, f *ValueField) error
	UpdateField(ctx context.Context, ownerID int64, f *ValueField) error
	DeleteField(ctx context.Context, id, ownerID int64) error

	CreateTracker(ctx context.Context, tr *PointTracker) error
	ListTrackers(ctx context.Context, ownerID int64) ([]PointTracker, error)
	UpdateTracker(ctx context.Context, tr *PointTracker) error
	DeleteTracker(ctx context.Context, id, ownerID int64) error
}

// SQLiteRepository is the SQLite-backed Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a journal repository on the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateNote stores a note and fills in its ID.
func (r *SQLiteRepository) CreateNote(ctx context.Context, n *Note) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidNote)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (owner_id, title, content) VALUES (?, ?, ?)`,
		n.OwnerID, n.Title, n.Content,
	)
	if err != nil {
		return fmt.Errorf("inserting note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading note id: %w", err)
	}
	if n.Fields == nil {
		n.Fields = []ValueField{}
	}
	return nil
}

// GetNote fetches one of the owner's notes with its value fields.
func (r *SQLiteRepository) GetNote(ctx context.Context, id, ownerID int64) (*Note, error) {
	var n Note
	var content sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, content FROM notes WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching note: %w", err)
	}
	n.Content = content.String

	n.Fields, err = r.noteFields(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotes returns the owner's notes with their fields, oldest first.
func (r *SQLiteRepository) ListNotes(ctx context.Context, ownerID int64) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, content FROM notes WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		var content sql.NullString
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &content); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.Content = content.String
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range notes {
		notes[i].Fields, err = r.noteFields(ctx, notes[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// UpdateNote rewrites a note's title and content.
func (r *SQLiteRepository) UpdateNote(ctx context.Context, n *Note) error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidNote)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ? WHERE id = ? AND owner_id = ?`,
		n.Title, n.Content, n.ID, n.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating note: %w", err)
	}
	return requireRow(res, ErrNoteNotFound)
}

// DeleteNote removes a note; its value fields cascade.
func (r *SQLiteRepository) DeleteNote(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND owner_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return requireRow(res, ErrNoteNotFound)
}

// AddField attaches a value field to one of the owner's notes.
func (r *SQLiteRepository) AddField(ctx context.Context, ownerID int64, f *ValueField) error {
	if err := r.requireNote(ctx, f.NoteID, ownerID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO value_fields (note_id, title, value, formula) VALUES (?, ?, ?, ?)`,
		f.NoteID, f.Title, f.Value, f.Formula,
	)
	if err != nil {
		return fmt.Errorf("inserting value field: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading value field id: %w", err)
	}
	return nil
}

// UpdateField rewrites a value field on one of the owner's notes.
func (r *SQLiteRepository) UpdateField(ctx context.Context, ownerID int64, f *ValueField) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE value_fields SET title = ?, value = ?, formula = ?
		 WHERE id = ? AND note_id IN (SELECT id FROM notes WHERE owner_id = ?)`,
		f.Title, f.Value, f.Formula, f.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("updating value field: %w", err)
	}
	return requireRow(res, ErrFieldNotFound)
}

// DeleteField removes a value field from one of the owner's notes.
func (r *SQLiteRepository) DeleteField(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM value_fields
		 WHERE id = ? AND note_id IN (SELECT id FROM notes WHERE owner_id = ?)`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting value field: %w", err)
	}
	return requireRow(res, ErrFieldNotFound)
}

// CreateTracker stores a point tracker and fills in its ID.
func (r *SQLiteRepository) CreateTracker(ctx context.Context, tr *PointTracker) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO point_trackers (owner_id, title, current, maximum) VALUES (?, ?, ?, ?)`,
		tr.OwnerID, tr.Title, tr.Current, tr.Maximum,
	)
	if err != nil {
		return fmt.Errorf("inserting point tracker: %w", err)
	}
	tr.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading tracker id: %w", err)
	}
	return nil
}

// ListTrackers returns the owner's point trackers.
func (r *SQLiteRepository) ListTrackers(ctx context.Context, ownerID int64) ([]PointTracker, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, current, maximum FROM point_trackers
		 WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing point trackers: %w", err)
	}
	defer rows.Close()

	trackers := []PointTracker{}
	for rows.Next() {
		var tr PointTracker
		if err := rows.Scan(&tr.ID, &tr.OwnerID, &tr.Title, &tr.Current, &tr.Maximum); err != nil {
			return nil, fmt.Errorf("scanning point tracker: %w", err)
		}
		trackers = append(trackers, tr)
	}
	return trackers, rows.Err()
}

// UpdateTracker rewrites a tracker's title and counts.
func (r *SQLiteRepository) UpdateTracker(ctx context.Context, tr *PointTracker) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE point_trackers SET title = ?, current = ?, maximum = ?
		 WHERE id = ? AND owner_id = ?`,
		tr.Title, tr.Current, tr.Maximum, tr.ID, tr.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating point tracker: %w", err)
	}
	return requireRow(res, ErrTrackerNotFound)
}

// DeleteTracker removes one of the owner's trackers.
func (r *SQLiteRepository) DeleteTracker(ctx context.Context, id, ownerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM point_trackers WHERE id = ? AND owner_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting point tracker: %w", err)
	}
	return requireRow(res, ErrTrackerNotFound)
}

func (r *SQLiteRepository) noteFields(ctx context.Context, noteID int64) ([]ValueField, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, note_id, title, value, formula FROM value_fields WHERE note_id = ? ORDER BY id`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing value fields: %w", err)
	}
	defer rows.Close()

	fields := []ValueField{}
	for rows.Next() {
		var f ValueField
		var value, formula sql.NullString
		if err := rows.Scan(&f.ID, &f.NoteID, &f.Title, &value, &formula); err != nil {
			return nil, fmt.Errorf("scanning value field: %w", err)
		}
		f.Value = value.String
		f.Formula = formula.String
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *SQLiteRepository) requireNote(ctx context.Context, noteID, ownerID int64) error {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM notes WHERE id = ? AND owner_id = ?`, noteID, ownerID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoteNotFound
	}
	if err != nil {
		return fmt.Errorf("checking note ownership: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
