package handlers

import (
	"net/http"

	"dinnerboard/internal/service"
)

// RosterHandler handles the family member roster endpoints
type RosterHandler struct {
	rosterService *service.RosterService
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

// ListMembers returns the roster sorted by display order
func (h *RosterHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	members, err := h.rosterService.ListMembers(familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AddMember appends a member to the roster
func (h *RosterHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.rosterService.AddMember(familyID, req.Name, req.Color)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

type updateMemberRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Order *int    `json:"order"`
}

// UpdateMember applies a merge patch to a member
func (h *RosterHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())
	memberID := r.PathValue("id")

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.rosterService.UpdateMember(familyID, memberID, req.Name, req.Color, req.Order); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteMember removes a member and all of their attendance and notes
func (h *RosterHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())
	memberID := r.PathValue("id")

	if err := h.rosterService.DeleteMember(familyID, memberID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
