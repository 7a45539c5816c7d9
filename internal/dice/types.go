package dice

import (
	"errors"
	"time"
)

// Formula is a saved, named dice expression. A nil OwnerID marks a global
// formula visible to every user.
type Formula struct {
	ID      int64  `json:"id"`
	OwnerID *int64 `json:"owner_id,omitempty"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
}

// LogEntry is one recorded roll. RawResult holds the individual die
// results as a JSON array string; ModifiedResult is the total after
// modifiers.
type LogEntry struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CharacterName  string    `json:"character_name,omitempty"`
	FormulaID      *int64    `json:"formula_id,omitempty"`
	RawFormula     string    `json:"raw_formula"`
	RawResult      string    `json:"raw_result"`
	ModifiedResult int       `json:"modified_result"`
	Timestamp      time.Time `json:"timestamp"`
}

// RollResult is the outcome of evaluating a formula once.
type RollResult struct {
	Formula string `json:"formula"`
	Rolls   []int  `json:"rolls"`
	Total   int    `json:"total"`
}

// Sentinel errors for dice operations.
var (
	ErrInvalidFormula  = errors.New("invalid dice formula")
	ErrFormulaNotFound = errors.New("formula not found")
)
