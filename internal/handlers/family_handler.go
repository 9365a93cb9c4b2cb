package handlers

import (
	"net/http"

	"dinnerboard/internal/service"
	"dinnerboard/internal/validation"
)

// FamilyHandler handles family settings and invitations
type FamilyHandler struct {
	resolver     *service.TenantResolver
	emailService *service.EmailService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(resolver *service.TenantResolver, emailService *service.EmailService) *FamilyHandler {
	return &FamilyHandler{resolver: resolver, emailService: emailService}
}

// GetFamily returns the caller's family including the invite code
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	family, err := h.resolver.GetFamily(familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

type renameFamilyRequest struct {
	Name string `json:"name"`
}

// RenameFamily updates the family display name
func (h *FamilyHandler) RenameFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID := GetFamilyFromContext(r.Context())

	var req renameFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.resolver.RenameFamily(user.ID, familyID, req.Name); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type joinFamilyRequest struct {
	InviteCode string `json:"inviteCode"`
}

// JoinFamily adds the caller to the family matching an invite code
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req joinFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	family, err := h.resolver.JoinByInviteCode(user.ID, req.InviteCode)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

type inviteRequest struct {
	Email string `json:"email"`
}

// SendInvite emails the family invite code to a new member
func (h *FamilyHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID := GetFamilyFromContext(r.Context())

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondServiceError(w, err)
		return
	}

	family, err := h.resolver.GetFamily(familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendInvitationEmail(r.Context(), req.Email, user.Name, family.Name, family.InviteCode); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"sent": h.emailService.IsEnabled()})
}
