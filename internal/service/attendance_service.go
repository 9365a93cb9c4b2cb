package service

import (
	"fmt"
	"log"

	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
	"dinnerboard/internal/validation"
)

// AttendanceService handles the per-day dinner attendance store
type AttendanceService struct {
	attendanceRepo *repository.AttendanceRepository
	broker         *realtime.Broker
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(attendanceRepo *repository.AttendanceRepository, broker *realtime.Broker) *AttendanceService {
	return &AttendanceService{attendanceRepo: attendanceRepo, broker: broker}
}

// SetStatus upserts the attendance record for a (member, date) pair.
// Idempotent; last write wins with no concurrency check.
func (s *AttendanceService) SetStatus(familyID, memberID, date string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	if memberID == "" {
		return nil, ErrMemberNotFound
	}
	if err := validation.ValidateDate(date); err != nil {
		return nil, err
	}

	record, err := s.attendanceRepo.UpsertStatus(familyID, memberID, date, status.Normalize())
	if err != nil {
		return nil, err
	}

	s.broker.Publish(familyID, realtime.TopicAttendance)
	return record, nil
}

// CycleStatus advances the status one tap ahead in the fixed cycle
// unknown -> present -> absent -> unknown and persists the result. A missing
// record counts as unknown, so the first tap yields present.
func (s *AttendanceService) CycleStatus(familyID, memberID, date string) (*models.AttendanceRecord, error) {
	current, err := s.attendanceRepo.GetRecord(familyID, memberID, date)
	if err != nil {
		return nil, err
	}

	status := models.StatusUnknown
	if current != nil {
		status = current.Status
	}
	return s.SetStatus(familyID, memberID, date, status.Next())
}

// WeeklySnapshot aggregates every attendance record of the family into the
// date -> member -> record projection
func (s *AttendanceService) WeeklySnapshot(familyID string) (models.WeeklyAttendance, error) {
	records, err := s.attendanceRepo.ListRecords(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly snapshot: %w", err)
	}

	snapshot := models.WeeklyAttendance{}
	for _, record := range records {
		if snapshot[record.Date] == nil {
			snapshot[record.Date] = make(map[string]models.AttendanceRecord)
		}
		snapshot[record.Date][record.MemberID] = record
	}
	return snapshot, nil
}

// SubscribeWeekly delivers the full weekly projection to cb immediately and
// after every attendance change, always as a total replacement.
func (s *AttendanceService) SubscribeWeekly(familyID string, cb func(models.WeeklyAttendance)) func() {
	return s.broker.Subscribe(familyID, realtime.TopicAttendance, func() {
		snapshot, err := s.WeeklySnapshot(familyID)
		if err != nil {
			log.Printf("attendance subscription refresh failed: %v", err)
			return
		}
		cb(snapshot)
	})
}
