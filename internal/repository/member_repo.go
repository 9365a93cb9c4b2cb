package repository

import (
	"database/sql"
	"fmt"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"

	"github.com/google/uuid"
)

// MemberRepository handles database operations for the family roster
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListMembers retrieves all members of a family sorted by display order
func (r *MemberRepository) ListMembers(familyID string) ([]models.Member, error) {
	query := `
		SELECT id, family_id, name, color, display_order
		FROM members
		WHERE family_id = ?
		ORDER BY display_order ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Color, &m.Order); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountMembers returns the number of roster members in a family
func (r *MemberRepository) CountMembers(familyID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM members WHERE family_id = ?"
	if err := r.db.QueryRow(query, familyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// GetMember retrieves a single member scoped to a family
func (r *MemberRepository) GetMember(familyID, memberID string) (*models.Member, error) {
	query := `
		SELECT id, family_id, name, color, display_order
		FROM members WHERE family_id = ? AND id = ?
	`
	m := &models.Member{}
	err := r.db.QueryRow(query, familyID, memberID).Scan(&m.ID, &m.FamilyID, &m.Name, &m.Color, &m.Order)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// CreateMember inserts a new roster member with a generated ID
func (r *MemberRepository) CreateMember(familyID, name, color string, order int) (*models.Member, error) {
	m := &models.Member{
		ID:       uuid.New().String(),
		FamilyID: familyID,
		Name:     name,
		Color:    color,
		Order:    order,
	}

	query := "INSERT INTO members (id, family_id, name, color, display_order) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.Exec(query, m.ID, m.FamilyID, m.Name, m.Color, m.Order); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return m, nil
}

// CreateMembersBatch inserts several members in one transaction. Used by the
// bootstrap seeding so a partial default roster can never be observed.
func (r *MemberRepository) CreateMembersBatch(familyID string, members []models.Member) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO members (id, family_id, name, color, display_order) VALUES (?, ?, ?, ?, ?)"
	for _, m := range members {
		id := m.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.Exec(query, id, familyID, m.Name, m.Color, m.Order); err != nil {
			return fmt.Errorf("failed to create member %s: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateMember applies a merge patch to a member. Nil fields are left as-is.
func (r *MemberRepository) UpdateMember(familyID, memberID string, name, color *string, order *int) error {
	existing, err := r.GetMember(familyID, memberID)
	if err != nil {
		return err
	}
	if existing == nil {
		return sql.ErrNoRows
	}

	if name != nil {
		existing.Name = *name
	}
	if color != nil {
		existing.Color = *color
	}
	if order != nil {
		existing.Order = *order
	}

	query := "UPDATE members SET name = ?, color = ?, display_order = ? WHERE family_id = ? AND id = ?"
	if _, err := r.db.Exec(query, existing.Name, existing.Color, existing.Order, familyID, memberID); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

// DeleteMemberCascade removes a member together with every attendance record
// and note referencing it, in a single transaction. Either all three deletes
// apply or none of them do.
func (r *MemberRepository) DeleteMemberCascade(familyID, memberID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM members WHERE family_id = ? AND id = ?", familyID, memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM attendance WHERE family_id = ? AND member_id = ?", familyID, memberID); err != nil {
		return fmt.Errorf("failed to delete attendance records: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM notes WHERE family_id = ? AND member_id = ?", familyID, memberID); err != nil {
		return fmt.Errorf("failed to delete notes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
