package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"

	"github.com/google/uuid"
)

// NoteRepository handles database operations for notes
type NoteRepository struct {
	db *database.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// CreateNote inserts a new note with a generated ID and timestamps
func (r *NoteRepository) CreateNote(familyID, memberID, date, text string) (*models.Note, error) {
	note := &models.Note{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		MemberID:  memberID,
		Date:      date,
		Text:      text,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO notes (id, family_id, member_id, date, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, note.ID, note.FamilyID, note.MemberID, note.Date, note.Text, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// GetNote retrieves a note by ID scoped to a family
func (r *NoteRepository) GetNote(familyID, noteID string) (*models.Note, error) {
	query := `
		SELECT id, family_id, member_id, date, text, created_at, updated_at
		FROM notes WHERE family_id = ? AND id = ?
	`
	note := &models.Note{}
	err := r.db.QueryRow(query, familyID, noteID).Scan(
		&note.ID,
		&note.FamilyID,
		&note.MemberID,
		&note.Date,
		&note.Text,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// UpdateNoteText patches a note's text and bumps updatedAt
func (r *NoteRepository) UpdateNoteText(familyID, noteID, text string) error {
	query := "UPDATE notes SET text = ?, updated_at = ? WHERE family_id = ? AND id = ?"
	if _, err := r.db.Exec(query, text, time.Now(), familyID, noteID); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by ID
func (r *NoteRepository) DeleteNote(familyID, noteID string) error {
	if _, err := r.db.Exec("DELETE FROM notes WHERE family_id = ? AND id = ?", familyID, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// ListNotes retrieves all notes for a family, newest date first
func (r *NoteRepository) ListNotes(familyID string) ([]models.Note, error) {
	query := `
		SELECT id, family_id, member_id, date, text, created_at, updated_at
		FROM notes
		WHERE family_id = ?
		ORDER BY date DESC
	`
	return r.queryNotes(query, familyID)
}

// ListNotesByDate retrieves notes for a single day
func (r *NoteRepository) ListNotesByDate(familyID, date string) ([]models.Note, error) {
	query := `
		SELECT id, family_id, member_id, date, text, created_at, updated_at
		FROM notes
		WHERE family_id = ? AND date = ?
		ORDER BY created_at ASC
	`
	return r.queryNotes(query, familyID, date)
}

// CountNotesForMember returns how many notes reference a member
func (r *NoteRepository) CountNotesForMember(familyID, memberID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM notes WHERE family_id = ? AND member_id = ?"
	if err := r.db.QueryRow(query, familyID, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

func (r *NoteRepository) queryNotes(query string, args ...interface{}) ([]models.Note, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(
			&note.ID,
			&note.FamilyID,
			&note.MemberID,
			&note.Date,
			&note.Text,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
