package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupJournalDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'player',
		registered_by INTEGER,
		created_at    TEXT NOT NULL
	);
	CREATE TABLE notes (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		title    TEXT    NOT NULL,
		content  TEXT
	);
	CREATE TABLE value_fields (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
		title   TEXT    NOT NULL,
		value   TEXT,
		formula TEXT
	);
	CREATE TABLE point_trackers (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL REFERENCES users(id),
		title    TEXT    NOT NULL,
		current  INTEGER NOT NULL DEFAULT 0,
		maximum  INTEGER NOT NULL DEFAULT 0
	);
	INSERT INTO users (username, password_hash, role, created_at) VALUES
		('alice', 'x', 'player', '2025-01-01T00:00:00Z'),
		('bob', 'x', 'player', '2025-01-01T00:00:00Z');`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

const (
	aliceID = int64(1)
	bobID   = int64(2)
)

func TestNotes_OwnerScoped(t *testing.T) {
	repo := NewSQLiteRepository(setupJournalDB(t))
	ctx := context.Background()

	n := &Note{OwnerID: aliceID, Title: "Session 3", Content: "Met the duke."}
	if err := repo.CreateNote(ctx, n); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}
	if n.ID == 0 {
		t.Fatal("note ID should be assigned")
	}

	// The owner can read it; another user cannot.
	if _, err := repo.GetNote(ctx, n.ID, aliceID); err != nil {
		t.Errorf("owner GetNote() error = %v", err)
	}
	if _, err := repo.GetNote(ctx, n.ID, bobID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("cross-user GetNote() error = %v, want ErrNoteNotFound", err)
	}

	notes, err := repo.ListNotes(ctx, bobID)
	if err != nil {
		t.Fatalf("ListNotes() error = %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("bob should see no notes, got %d", len(notes))
	}
}

func TestNotes_UpdateAndDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupJournalDB(t))
	ctx := context.Background()

	n := &Note{OwnerID: aliceID, Title: "Draft"}
	if err := repo.CreateNote(ctx, n); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	n.Title = "Session 3"
	n.Content = "Revised."
	if err := repo.UpdateNote(ctx, n); err != nil {
		t.Fatalf("UpdateNote() error = %v", err)
	}
	got, err := repo.GetNote(ctx, n.ID, aliceID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if got.Title != "Session 3" || got.Content != "Revised." {
		t.Errorf("note = %+v", got)
	}

	// Cross-user update must not land.
	foreign := &Note{ID: n.ID, OwnerID: bobID, Title: "Hijacked"}
	if err := repo.UpdateNote(ctx, foreign); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("cross-user UpdateNote() error = %v, want ErrNoteNotFound", err)
	}

	if err := repo.DeleteNote(ctx, n.ID, aliceID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if err := repo.DeleteNote(ctx, n.ID, aliceID); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("double delete error = %v, want ErrNoteNotFound", err)
	}
}

func TestCreateNote_RequiresTitle(t *testing.T) {
	repo := NewSQLiteRepository(setupJournalDB(t))
	if err := repo.CreateNote(context.Background(), &Note{OwnerID: aliceID, Title: "  "}); !errors.Is(err, ErrInvalidNote) {
		t.Errorf("err = %v, want ErrInvalidNote", err)
	}
}

func TestValueFields_LifecycleAndCascade(t *testing.T) {
	repo := NewSQLiteRepository(setupJournalDB(t))
	ctx := context.Background()

	n := &Note{OwnerID: aliceID, Title: "Character Sheet"}
	if err := repo.CreateNote(ctx, n); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	f := &ValueField{NoteID: n.ID, Title: "Stealth", Value: "+7", Formula: "1d20+7"}
	if err := repo.AddField(ctx, aliceID, f); err != nil {
		t.Fatalf("AddField() error = %v", err)
	}
	if f.ID == 0 {
		t.Fatal("field ID should be assigned")
	}

	// Attaching to someone else's note fails.
	stray := &ValueField{NoteID: n.ID, Title: "Stealth"}
	if err := repo.AddField(ctx, bobID, stray); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("cross-user AddField() error = %v, want ErrNoteNotFound", err)
	}

	f.Value = "+9"
	if err := repo.UpdateField(ctx, aliceID, f); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}

	got, err := repo.GetNote(ctx, n.ID, aliceID)
	if err != nil {
		t.Fatalf("GetNote() error = %v", err)
	}
	if len(got.Fields) != 1 || got.Fields[0].Value != "+9" {
		t.Errorf("fields = %+v", got.Fields)
	}

	// Deleting the note cascades to its fields.
	if err := repo.DeleteNote(ctx, n.ID, aliceID); err != nil {
		t.Fatalf("DeleteNote() error = %v", err)
	}
	if err := repo.DeleteField(ctx, f.ID, aliceID); !errors.Is(err, ErrFieldNotFound) {
		t.Errorf("field should have cascaded away, err = %v", err)
	}
}

func TestTrackers_Lifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupJournalDB(t))
	ctx := context.Background()

	tr := &PointTracker{OwnerID: aliceID, Title: "HP", Current: 24, Maximum: 30}
	if err := repo.CreateTracker(ctx, tr); err != nil {
		t.Fatalf("CreateTracker() error = %v", err)
	}

	tr.Current = 18
	if err := repo.UpdateTracker(ctx, tr); err != nil {
		t.Fatalf("UpdateTracker() error = %v", err)
	}

	trackers, err := repo.ListTrackers(ctx, aliceID)
	if err != nil {
		t.Fatalf("ListTrackers() error = %v", err)
	}
	if len(trackers) != 1 || trackers[0].Current != 18 {
		t.Errorf("trackers = %+v", trackers)
	}

	if got, _ := repo.ListTrackers(ctx, bobID); len(got) != 0 {
		t.Errorf("bob should see no trackers, got %d", len(got))
	}

	if err := repo.DeleteTracker(ctx, tr.ID, bobID); !errors.Is(err, ErrTrackerNotFound) {
		t.Errorf("cross-user delete error = %v, want ErrTrackerNotFound", err)
	}
	if err := repo.DeleteTracker(ctx, tr.ID, aliceID); err != nil {
		t.Errorf("owner delete error = %v", err)
	}
}
