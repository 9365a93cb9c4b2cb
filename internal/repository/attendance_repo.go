package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"
)

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertStatus writes the single attendance record for a (member, date) pair.
// Last write wins; there is no optimistic concurrency check.
func (r *AttendanceRepository) UpsertStatus(familyID, memberID, date string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{
		MemberID:  memberID,
		Date:      date,
		Status:    status,
		UpdatedAt: time.Now(),
	}

	query := r.db.Dialect.UpsertAttendanceQuery()
	_, err := r.db.Exec(query,
		familyID,
		models.RecordKey(date, memberID),
		record.MemberID,
		record.Date,
		string(record.Status),
		record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return record, nil
}

// GetRecord retrieves the attendance record for a (member, date) pair
func (r *AttendanceRepository) GetRecord(familyID, memberID, date string) (*models.AttendanceRecord, error) {
	query := `
		SELECT member_id, date, status, updated_at
		FROM attendance WHERE family_id = ? AND record_key = ?
	`
	record := &models.AttendanceRecord{}
	var status string
	err := r.db.QueryRow(query, familyID, models.RecordKey(date, memberID)).Scan(
		&record.MemberID,
		&record.Date,
		&status,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	record.Status = models.AttendanceStatus(status).Normalize()
	return record, nil
}

// ListRecords retrieves all attendance records for a family, newest date first
func (r *AttendanceRepository) ListRecords(familyID string) ([]models.AttendanceRecord, error) {
	query := `
		SELECT member_id, date, status, updated_at
		FROM attendance
		WHERE family_id = ?
		ORDER BY date DESC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var record models.AttendanceRecord
		var status string
		if err := rows.Scan(&record.MemberID, &record.Date, &status, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		record.Status = models.AttendanceStatus(status).Normalize()
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountRecordsForMember returns how many attendance rows reference a member
func (r *AttendanceRepository) CountRecordsForMember(familyID, memberID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM attendance WHERE family_id = ? AND member_id = ?"
	if err := r.db.QueryRow(query, familyID, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance records: %w", err)
	}
	return count, nil
}
