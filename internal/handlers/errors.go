package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dinnerboard/internal/service"
	"dinnerboard/internal/validation"
)

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// respondError writes a JSON error body
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError translates service-layer errors into HTTP responses
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	if errors.As(err, &validationErr) {
		respondError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, service.ErrNotFamilyMember):
		respondError(w, http.StatusForbidden, "not a member of this family")
	case errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrNoteNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrLastMember),
		errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON parses a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
