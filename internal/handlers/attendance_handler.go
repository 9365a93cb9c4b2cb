package handlers

import (
	"net/http"

	"dinnerboard/internal/models"
	"dinnerboard/internal/service"
)

// AttendanceHandler handles the dinner attendance endpoints
type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

// GetWeekly returns the full date -> member -> record projection
func (h *AttendanceHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	snapshot, err := h.attendanceService.WeeklySnapshot(familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

type setStatusRequest struct {
	MemberID string `json:"memberId"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

// SetStatus sets an explicit attendance status for a (member, date) pair
func (h *AttendanceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.attendanceService.SetStatus(familyID, req.MemberID, req.Date, models.AttendanceStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

type cycleStatusRequest struct {
	MemberID string `json:"memberId"`
	Date     string `json:"date"`
}

// CycleStatus advances the status one tap in the fixed cycle
func (h *AttendanceHandler) CycleStatus(w http.ResponseWriter, r *http.Request) {
	familyID := GetFamilyFromContext(r.Context())

	var req cycleStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.attendanceService.CycleStatus(familyID, req.MemberID, req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}
