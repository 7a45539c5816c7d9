package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmavtt/tabletop-core/internal/journal"
)

// noteRequest is the request body for creating or updating a note.
type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// fieldRequest is the request body for creating or updating a value field.
type fieldRequest struct {
	Title   string `json:"title"`
	Value   string `json:"value"`
	Formula string `json:"formula"`
}

// trackerRequest is the request body for creating or updating a tracker.
type trackerRequest struct {
	Title   string `json:"title"`
	Current int    `json:"current"`
	Maximum int    `json:"maximum"`
}

// handleListNotes returns the caller's notes with their value fields.
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.journal.ListNotes(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.logger.Error("listing notes failed", "error", err)
		writeInternalError(w, "failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// handleCreateNote creates a note owned by the caller.
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	n := &journal.Note{
		OwnerID: principalFrom(r).UserID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.journal.CreateNote(r.Context(), n); err != nil {
		if errors.Is(err, journal.ErrInvalidNote) {
			writeBadRequest(w, "note title is required")
			return
		}
		s.logger.Error("note create failed", "error", err)
		writeInternalError(w, "failed to create note")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// handleGetNote returns one of the caller's notes.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	n, err := s.journal.GetNote(r.Context(), id, principalFrom(r).UserID)
	if err != nil {
		if errors.Is(err, journal.ErrNoteNotFound) {
			writeNotFound(w, "note not found")
			return
		}
		s.logger.Error("loading note failed", "note_id", id, "error", err)
		writeInternalError(w, "failed to load note")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleUpdateNote rewrites one of the caller's notes.
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	n := &journal.Note{
		ID:      id,
		OwnerID: principalFrom(r).UserID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.journal.UpdateNote(r.Context(), n); err != nil {
		switch {
		case errors.Is(err, journal.ErrNoteNotFound):
			writeNotFound(w, "note not found")
		case errors.Is(err, journal.ErrInvalidNote):
			writeBadRequest(w, "note title is required")
		default:
			s.logger.Error("note update failed", "note_id", id, "error", err)
			writeInternalError(w, "failed to update note")
		}
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleDeleteNote removes one of the caller's notes and its fields.
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.journal.DeleteNote(r.Context(), id, principalFrom(r).UserID); err != nil {
		if errors.Is(err, journal.ErrNoteNotFound) {
			writeNotFound(w, "note not found")
			return
		}
		s.logger.Error("note delete failed", "note_id", id, "error", err)
		writeInternalError(w, "failed to delete note")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddField attaches a value field to one of the caller's notes.
func (s *Server) handleAddField(w http.ResponseWriter, r *http.Request) {
	noteID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "field title is required")
		return
	}

	f := &journal.ValueField{
		NoteID:  noteID,
		Title:   req.Title,
		Value:   req.Value,
		Formula: req.Formula,
	}
	if err := s.journal.AddField(r.Context(), principalFrom(r).UserID, f); err != nil {
		if errors.Is(err, journal.ErrNoteNotFound) {
			writeNotFound(w, "note not found")
			return
		}
		s.logger.Error("field create failed", "note_id", noteID, "error", err)
		writeInternalError(w, "failed to add field")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleUpdateField rewrites a value field on one of the caller's notes.
func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "fieldID")
	if !ok {
		return
	}
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	f := &journal.ValueField{
		ID:      id,
		Title:   req.Title,
		Value:   req.Value,
		Formula: req.Formula,
	}
	if err := s.journal.UpdateField(r.Context(), principalFrom(r).UserID, f); err != nil {
		if errors.Is(err, journal.ErrFieldNotFound) {
			writeNotFound(w, "field not found")
			return
		}
		s.logger.Error("field update failed", "field_id", id, "error", err)
		writeInternalError(w, "failed to update field")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleDeleteField removes a value field from one of the caller's notes.
func (s *Server) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "fieldID")
	if !ok {
		return
	}

	if err := s.journal.DeleteField(r.Context(), id, principalFrom(r).UserID); err != nil {
		if errors.Is(err, journal.ErrFieldNotFound) {
			writeNotFound(w, "field not found")
			return
		}
		s.logger.Error("field delete failed", "field_id", id, "error", err)
		writeInternalError(w, "failed to delete field")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListTrackers returns the caller's point trackers.
func (s *Server) handleListTrackers(w http.ResponseWriter, r *http.Request) {
	trackers, err := s.journal.ListTrackers(r.Context(), principalFrom(r).UserID)
	if err != nil {
		s.logger.Error("listing trackers failed", "error", err)
		writeInternalError(w, "failed to list trackers")
		return
	}
	writeJSON(w, http.StatusOK, trackers)
}

// handleCreateTracker creates a point tracker owned by the caller.
func (s *Server) handleCreateTracker(w http.ResponseWriter, r *http.Request) {
	var req trackerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Title == "" {
		writeBadRequest(w, "tracker title is required")
		return
	}

	tr := &journal.PointTracker{
		OwnerID: principalFrom(r).UserID,
		Title:   req.Title,
		Current: req.Current,
		Maximum: req.Maximum,
	}
	if err := s.journal.CreateTracker(r.Context(), tr); err != nil {
		s.logger.Error("tracker create failed", "error", err)
		writeInternalError(w, "failed to create tracker")
		return
	}
	writeJSON(w, http.StatusCreated, tr)
}

// handleUpdateTracker rewrites one of the caller's trackers.
func (s *Server) handleUpdateTracker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req trackerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	tr := &journal.PointTracker{
		ID:      id,
		OwnerID: principalFrom(r).UserID,
		Title:   req.Title,
		Current: req.Current,
		Maximum: req.Maximum,
	}
	if err := s.journal.UpdateTracker(r.Context(), tr); err != nil {
		if errors.Is(err, journal.ErrTrackerNotFound) {
			writeNotFound(w, "tracker not found")
			return
		}
		s.logger.Error("tracker update failed", "tracker_id", id, "error", err)
		writeInternalError(w, "failed to update tracker")
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// handleDeleteTracker removes one of the caller's trackers.
func (s *Server) handleDeleteTracker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.journal.DeleteTracker(r.Context(), id, principalFrom(r).UserID); err != nil {
		if errors.Is(err, journal.ErrTrackerNotFound) {
			writeNotFound(w, "tracker not found")
			return
		}
		s.logger.Error("tracker delete failed", "tracker_id", id, "error", err)
		writeInternalError(w, "failed to delete tracker")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
