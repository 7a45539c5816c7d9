package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmavtt/tabletop-core/internal/dice"
)

// createFormulaRequest is the request body for POST /api/dice/formulas.
// Global formulas (visible to everyone) can only be created by a GM.
type createFormulaRequest struct {
	Name    string `json:"name"`
	Formula string `json:"formula"`
	Global  bool   `json:"global"`
}

// rollRequest is the request body for POST /api/dice/roll.
type rollRequest struct {
	Formula       string `json:"formula"`
	FormulaID     *int64 `json:"formula_id"`
	CharacterName string `json:"character_name"`
}

// handleListFormulas returns global formulas plus the caller's own.
func (s *Server) handleListFormulas(w http.ResponseWriter, r *http.Request) {
	formulas, err := s.dice.ListFormulas(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.logger.Error("listing dice formulas failed", "error", err)
		writeInternalError(w, "failed to list formulas")
		return
	}
	writeJSON(w, http.StatusOK, formulas)
}

// handleCreateFormula saves a named formula for the caller, or globally
// when a GM asks for it.
func (s *Server) handleCreateFormula(w http.ResponseWriter, r *http.Request) {
	var req createFormulaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	p := principalFrom(r)
	f := &dice.Formula{Name: req.Name, Formula: req.Formula}
	if req.Global {
		if !p.IsGM() {
			writeForbidden(w, "only a gm can create global formulas")
			return
		}
	} else {
		f.OwnerID = &p.UserID
	}

	if err := s.dice.CreateFormula(r.Context(), f); err != nil {
		if errors.Is(err, dice.ErrInvalidFormula) {
			writeBadRequest(w, "invalid dice formula")
			return
		}
		s.logger.Error("formula create failed", "error", err)
		writeInternalError(w, "failed to save formula")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleDeleteFormula removes one of the caller's saved formulas.
func (s *Server) handleDeleteFormula(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	err := s.dice.DeleteFormula(r.Context(), id, principalFrom(r).UserID)
	if err != nil {
		if errors.Is(err, dice.ErrFormulaNotFound) {
			writeNotFound(w, "formula not found")
			return
		}
		s.logger.Error("formula delete failed", "formula_id", id, "error", err)
		writeInternalError(w, "failed to delete formula")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRoll evaluates a formula over HTTP, records it, and broadcasts
// the result like a WebSocket roll would.
func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	var req rollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	formula := req.Formula
	if req.FormulaID != nil {
		saved, err := s.dice.GetFormula(r.Context(), *req.FormulaID)
		if err != nil {
			if errors.Is(err, dice.ErrFormulaNotFound) {
				writeNotFound(w, "formula not found")
				return
			}
			s.logger.Error("formula lookup failed", "formula_id", *req.FormulaID, "error", err)
			writeInternalError(w, "roll failed")
			return
		}
		formula = saved.Formula
	}

	result, err := dice.Roll(formula)
	if err != nil {
		writeBadRequest(w, "invalid dice formula")
		return
	}

	rawRolls, err := json.Marshal(result.Rolls)
	if err != nil {
		writeInternalError(w, "roll failed")
		return
	}
	p := principalFrom(r)
	entry := &dice.LogEntry{
		UserID:         p.UserID,
		CharacterName:  req.CharacterName,
		FormulaID:      req.FormulaID,
		RawFormula:     formula,
		RawResult:      string(rawRolls),
		ModifiedResult: result.Total,
	}
	if err := s.dice.LogRoll(r.Context(), entry); err != nil {
		s.logger.Error("dice log write failed", "user_id", p.UserID, "error", err)
		writeInternalError(w, "roll failed")
		return
	}

	s.hub.Broadcast(EventDiceRolled, map[string]any{
		"log_id":         entry.ID,
		"user_id":        entry.UserID,
		"character_name": entry.CharacterName,
		"formula":        formula,
		"rolls":          result.Rolls,
		"total":          result.Total,
	})
	writeJSON(w, http.StatusOK, result)
}

// handleListDiceLogs returns recent rolls, newest first.
func (s *Server) handleListDiceLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			writeBadRequest(w, "invalid limit parameter")
			return
		}
		limit = n
	}

	logs, err := s.dice.ListLogs(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing dice logs failed", "error", err)
		writeInternalError(w, "failed to list rolls")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
