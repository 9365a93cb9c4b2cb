package models

import "time"

// AttendanceStatus is the per-day dinner attendance state of a member
type AttendanceStatus string

const (
	StatusUnknown AttendanceStatus = "unknown"
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// Normalize maps any unrecognized or empty status to unknown
func (s AttendanceStatus) Normalize() AttendanceStatus {
	switch s {
	case StatusPresent, StatusAbsent, StatusUnknown:
		return s
	}
	return StatusUnknown
}

// Next returns the status one tap ahead in the fixed cycle
// unknown -> present -> absent -> unknown
func (s AttendanceStatus) Next() AttendanceStatus {
	switch s.Normalize() {
	case StatusUnknown:
		return StatusPresent
	case StatusPresent:
		return StatusAbsent
	default:
		return StatusUnknown
	}
}

// AttendanceRecord is the single attendance document for a (member, date) pair
type AttendanceRecord struct {
	MemberID  string           `json:"memberId"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// RecordKey is the document key for an attendance record: "<date>_<memberID>"
func RecordKey(date, memberID string) string {
	return date + "_" + memberID
}

// WeeklyAttendance maps date -> memberID -> record. A missing entry means the
// member's status for that day is unknown.
type WeeklyAttendance map[string]map[string]AttendanceRecord

// StatusFor resolves the status for a member on a date, defaulting to unknown
func (w WeeklyAttendance) StatusFor(date, memberID string) AttendanceStatus {
	if day, ok := w[date]; ok {
		if rec, ok := day[memberID]; ok {
			return rec.Status.Normalize()
		}
	}
	return StatusUnknown
}
