package handlers

import (
	"net/http"

	"dinnerboard/internal/service"
)

// NoteHandler handles the note endpoints
type NoteHandler struct {
	noteService *service.NoteService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *service.NoteService) *NoteHandler {
	return &NoteHandler{noteService: noteService}
}

// ListNotes returns all notes, optionally filtered to one date
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	if date := r.URL.Query().Get("date"); date != "" {
		notes, err := h.noteService.NotesForDate(familyID, date)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, notes)
		return
	}

	notes, err := h.noteService.ListNotes(familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

type addNoteRequest struct {
	MemberID string `json:"memberId"`
	Date     string `json:"date"`
	Text     string `json:"text"`
}

// AddNote creates a note on a (member, date) pair
func (h *NoteHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.noteService.AddNote(familyID, req.MemberID, req.Date, req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

type updateNoteRequest struct {
	Text string `json:"text"`
}

// UpdateNote replaces a note's text
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())
	noteID := r.PathValue("id")

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.noteService.UpdateNote(familyID, noteID, req.Text); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteNote removes a note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())
	noteID := r.PathValue("id")

	if err := h.noteService.DeleteNote(familyID, noteID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
