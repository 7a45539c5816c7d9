package dice

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupDiceDB(t *testing.T) *sql.DB {
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
	CREATE TABLE dice_formulas (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER REFERENCES users(id),
		name     TEXT    NOT NULL,
		formula  TEXT    NOT NULL
	);
	CREATE TABLE dice_logs (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id         INTEGER NOT NULL REFERENCES users(id),
		character_name  TEXT,
		formula_id      INTEGER REFERENCES dice_formulas(id),
		raw_formula     TEXT    NOT NULL,
		raw_result      TEXT    NOT NULL,
		modified_result INTEGER NOT NULL,
		timestamp       TEXT    NOT NULL
	);
	INSERT INTO users (username, password_hash, role, created_at) VALUES
		('gm', 'x', 'gm', '2025-01-01T00:00:00Z'),
		('alice', 'x', 'player', '2025-01-01T00:00:00Z');`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

func TestFormulas_OwnershipScoping(t *testing.T) {
	repo := NewSQLiteRepository(setupDiceDB(t))
	ctx := context.Background()

	global := &Formula{Name: "Perception", Formula: "1d20"}
	if err := repo.CreateFormula(ctx, global); err != nil {
		t.Fatalf("CreateFormula(global) error = %v", err)
	}

	alice := int64(2)
	owned := &Formula{OwnerID: &alice, Name: "Sneak Attack", Formula: "3d6"}
	if err := repo.CreateFormula(ctx, owned); err != nil {
		t.Fatalf("CreateFormula(owned) error = %v", err)
	}

	gm := int64(1)
	gmOwned := &Formula{OwnerID: &gm, Name: "Fireball", Formula: "8d6"}
	if err := repo.CreateFormula(ctx, gmOwned); err != nil {
		t.Fatalf("CreateFormula(gmOwned) error = %v", err)
	}

	// Alice sees the global formula and her own, not the GM's.
	formulas, err := repo.ListFormulas(ctx, alice)
	if err != nil {
		t.Fatalf("ListFormulas() error = %v", err)
	}
	if len(formulas) != 2 {
		t.Fatalf("formula count = %d, want 2", len(formulas))
	}
	names := map[string]bool{}
	for _, f := range formulas {
		names[f.Name] = true
	}
	if !names["Perception"] || !names["Sneak Attack"] || names["Fireball"] {
		t.Errorf("visible formulas = %v", names)
	}
}

func TestCreateFormula_RejectsInvalid(t *testing.T) {
	repo := NewSQLiteRepository(setupDiceDB(t))
	f := &Formula{Name: "Broken", Formula: "not dice"}
	if err := repo.CreateFormula(context.Background(), f); !errors.Is(err, ErrInvalidFormula) {
		t.Errorf("err = %v, want ErrInvalidFormula", err)
	}
}

func TestDeleteFormula_OwnerOnly(t *testing.T) {
	repo := NewSQLiteRepository(setupDiceDB(t))
	ctx := context.Background()

	alice := int64(2)
	f := &Formula{OwnerID: &alice, Name: "Sneak Attack", Formula: "3d6"}
	if err := repo.CreateFormula(ctx, f); err != nil {
		t.Fatalf("CreateFormula() error = %v", err)
	}

	// A different user cannot delete it.
	if err := repo.DeleteFormula(ctx, f.ID, 1); !errors.Is(err, ErrFormulaNotFound) {
		t.Errorf("cross-user delete err = %v, want ErrFormulaNotFound", err)
	}
	if err := repo.DeleteFormula(ctx, f.ID, alice); err != nil {
		t.Errorf("owner delete err = %v", err)
	}
	if _, err := repo.GetFormula(ctx, f.ID); !errors.Is(err, ErrFormulaNotFound) {
		t.Errorf("GetFormula after delete err = %v, want ErrFormulaNotFound", err)
	}
}

func TestLogRoll_HistoryOrdering(t *testing.T) {
	repo := NewSQLiteRepository(setupDiceDB(t))
	ctx := context.Background()

	first := &LogEntry{UserID: 2, RawFormula: "1d20", RawResult: "[15]", ModifiedResult: 15}
	second := &LogEntry{UserID: 2, CharacterName: "Alice", RawFormula: "2d6+3", RawResult: "[4,5]", ModifiedResult: 12}
	if err := repo.LogRoll(ctx, first); err != nil {
		t.Fatalf("LogRoll() error = %v", err)
	}
	if err := repo.LogRoll(ctx, second); err != nil {
		t.Fatalf("LogRoll() error = %v", err)
	}
	if first.ID == 0 || second.ID == 0 {
		t.Fatal("log entry IDs should be assigned")
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp should be filled in")
	}

	logs, err := repo.ListLogs(ctx, 10)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log count = %d, want 2", len(logs))
	}
	if logs[0].ID != second.ID {
		t.Errorf("logs should be newest first, got %+v", logs)
	}
	if logs[0].CharacterName != "Alice" {
		t.Errorf("character name = %q, want Alice", logs[0].CharacterName)
	}
}
