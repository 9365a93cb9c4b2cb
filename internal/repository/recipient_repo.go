package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"

	"github.com/google/uuid"
)

// RecipientRepository handles database operations for chat-bot reminder
// recipients and their custom schedules
type RecipientRepository struct {
	db *database.DB
}

// NewRecipientRepository creates a new recipient repository
func NewRecipientRepository(db *database.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// UpsertRecipient registers or refreshes an active reminder recipient
func (r *RecipientRepository) UpsertRecipient(userID, displayName, pictureURL string) error {
	// Delete-then-insert keeps the upsert portable across all three dialects
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bot_recipients WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to replace recipient: %w", err)
	}

	query := `
		INSERT INTO bot_recipients (user_id, display_name, picture_url, is_active, registered_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, userID, displayName, pictureURL, true, time.Now()); err != nil {
		return fmt.Errorf("failed to register recipient: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeactivateRecipient marks a recipient inactive (e.g. on unfollow)
func (r *RecipientRepository) DeactivateRecipient(userID string) error {
	if _, err := r.db.Exec("UPDATE bot_recipients SET is_active = ? WHERE user_id = ?", false, userID); err != nil {
		return fmt.Errorf("failed to deactivate recipient: %w", err)
	}
	return nil
}

// ListActiveRecipients retrieves all recipients who should get reminders
func (r *RecipientRepository) ListActiveRecipients() ([]models.Recipient, error) {
	query := `
		SELECT user_id, display_name, picture_url, is_active, registered_at
		FROM bot_recipients
		WHERE is_active = ?
		ORDER BY registered_at ASC
	`
	rows, err := r.db.Query(query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []models.Recipient
	for rows.Next() {
		var rec models.Recipient
		if err := rows.Scan(&rec.UserID, &rec.DisplayName, &rec.PictureURL, &rec.IsActive, &rec.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

// GetRecipient retrieves a recipient by chat-platform user ID
func (r *RecipientRepository) GetRecipient(userID string) (*models.Recipient, error) {
	query := `
		SELECT user_id, display_name, picture_url, is_active, registered_at
		FROM bot_recipients WHERE user_id = ?
	`
	rec := &models.Recipient{}
	err := r.db.QueryRow(query, userID).Scan(&rec.UserID, &rec.DisplayName, &rec.PictureURL, &rec.IsActive, &rec.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	return rec, nil
}

// UpsertSchedules replaces the stored custom schedules in one transaction
func (r *RecipientRepository) UpsertSchedules(schedules []models.ReminderSchedule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range schedules {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec("DELETE FROM bot_schedules WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to replace schedule: %w", err)
		}

		query := `
			INSERT INTO bot_schedules (id, member_id, day_of_week, time_of_day, message, enabled, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		createdAt := s.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err := tx.Exec(query, id, s.MemberID, s.DayOfWeek, s.Time, s.Message, s.Enabled, createdAt, time.Now()); err != nil {
			return fmt.Errorf("failed to store schedule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListEnabledSchedules retrieves enabled schedules for a weekday
func (r *RecipientRepository) ListEnabledSchedules(dayOfWeek int) ([]models.ReminderSchedule, error) {
	query := `
		SELECT id, member_id, day_of_week, time_of_day, message, enabled, created_at, updated_at
		FROM bot_schedules
		WHERE enabled = ? AND day_of_week = ?
	`
	rows, err := r.db.Query(query, true, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.ReminderSchedule
	for rows.Next() {
		var s models.ReminderSchedule
		if err := rows.Scan(&s.ID, &s.MemberID, &s.DayOfWeek, &s.Time, &s.Message, &s.Enabled, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
