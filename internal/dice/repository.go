package dice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists saved formulas and roll history.
type Repository interface {
	CreateFormula(ctx context.Context, f *Formula) error
	GetFormula(ctx context.Context, id int64) (*Formula, error)
	ListFormulas(ctx context.Context, userID int64) ([]Formula, error)
	DeleteFormula(ctx context.Context, id, userID int64) error
	LogRoll(ctx context.Context, entry *LogEntry) error
	ListLogs(ctx context.Context, limit int) ([]LogEntry, error)
}

// SQLiteRepository is the SQLite-backed Repository.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a dice repository on the given database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateFormula stores a saved formula and fills in its ID. The formula
// text is validated by a dry-run evaluation before insert.
func (r *SQLiteRepository) CreateFormula(ctx context.Context, f *Formula) error {
	if _, err := Roll(f.Formula); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dice_formulas (owner_id, name, formula) VALUES (?, ?, ?)`,
		f.OwnerID, f.Name, f.Formula,
	)
	if err != nil {
		return fmt.Errorf("inserting dice formula: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading formula id: %w", err)
	}
	return nil
}

// ListFormulas returns global formulas plus those owned by the user.
func (r *SQLiteRepository) ListFormulas(ctx context.Context, userID int64) ([]Formula, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, formula FROM dice_formulas
		 WHERE owner_id IS NULL OR owner_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing dice formulas: %w", err)
	}
	defer rows.Close()

	formulas := []Formula{}
	for rows.Next() {
		var f Formula
		var owner sql.NullInt64
		if err := rows.Scan(&f.ID, &owner, &f.Name, &f.Formula); err != nil {
			return nil, fmt.Errorf("scanning dice formula: %w", err)
		}
		if owner.Valid {
			f.OwnerID = &owner.Int64
		}
		formulas = append(formulas, f)
	}
	return formulas, rows.Err()
}

// DeleteFormula removes a formula the user owns. Global formulas and
// other users' formulas are not deletable through this path.
func (r *SQLiteRepository) DeleteFormula(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM dice_formulas WHERE id = ? AND owner_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting dice formula: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrFormulaNotFound
	}
	return nil
}

// LogRoll records a roll in the history and fills in its ID and
// timestamp.
func (r *SQLiteRepository) LogRoll(ctx context.Context, entry *LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO dice_logs (user_id, character_name, formula_id, raw_formula, raw_result, modified_result, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, nullString(entry.CharacterName), entry.FormulaID,
		entry.RawFormula, entry.RawResult, entry.ModifiedResult,
		entry.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting dice log: %w", err)
	}
	entry.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading dice log id: %w", err)
	}
	return nil
}

// ListLogs returns the most recent rolls, newest first.
func (r *SQLiteRepository) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, character_name, formula_id, raw_formula, raw_result, modified_result, timestamp
		 FROM dice_logs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing dice logs: %w", err)
	}
	defer rows.Close()

	entries := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		var character sql.NullString
		var formulaID sql.NullInt64
		var ts string
		if err := rows.Scan(&e.ID, &e.UserID, &character, &formulaID,
			&e.RawFormula, &e.RawResult, &e.ModifiedResult, &ts); err != nil {
			return nil, fmt.Errorf("scanning dice log: %w", err)
		}
		if character.Valid {
			e.CharacterName = character.String
		}
		if formulaID.Valid {
			e.FormulaID = &formulaID.Int64
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = parsed
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetFormula fetches one formula by ID.
func (r *SQLiteRepository) GetFormula(ctx context.Context, id int64) (*Formula, error) {
	var f Formula
	var owner sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, formula FROM dice_formulas WHERE id = ?`, id,
	).Scan(&f.ID, &owner, &f.Name, &f.Formula)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFormulaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching dice formula: %w", err)
	}
	if owner.Valid {
		f.OwnerID = &owner.Int64
	}
	return &f, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
