package repository

import (
	"database/sql"
	"fmt"
	"time"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"

	"github.com/google/uuid"
)

// FamilyRepository handles database operations for families, memberships and
// the per-family initialization flag
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and adds the creator as an admin member
func (r *FamilyRepository) CreateFamily(name, inviteCode, creatorUserID string) (*models.Family, error) {
	family := &models.Family{
		ID:         uuid.New().String(),
		Name:       name,
		InviteCode: inviteCode,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO families (id, name, invite_code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, family.ID, family.Name, family.InviteCode, family.CreatedAt, family.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	query = "INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, 'admin', ?)"
	if _, err := tx.Exec(query, family.ID, creatorUserID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to add family member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return family, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID string) (*models.Family, error) {
	query := "SELECT id, name, invite_code, created_at, updated_at FROM families WHERE id = ?"
	return r.scanFamily(r.db.QueryRow(query, familyID))
}

// GetFamilyByInviteCode retrieves a family by its invite code
func (r *FamilyRepository) GetFamilyByInviteCode(inviteCode string) (*models.Family, error) {
	query := "SELECT id, name, invite_code, created_at, updated_at FROM families WHERE invite_code = ?"
	return r.scanFamily(r.db.QueryRow(query, inviteCode))
}

func (r *FamilyRepository) scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}

// GetUserFamilyID returns the family the user belongs to, or "" if none.
// Users belong to at most one family in practice; the earliest membership
// wins if data ever holds more.
func (r *FamilyRepository) GetUserFamilyID(userID string) (string, error) {
	query := `
		SELECT family_id FROM family_members
		WHERE user_id = ?
		ORDER BY joined_at ASC
		LIMIT 1
	`
	var familyID string
	err := r.db.QueryRow(query, userID).Scan(&familyID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user family: %w", err)
	}
	return familyID, nil
}

// AddFamilyMember adds a user to a family
func (r *FamilyRepository) AddFamilyMember(familyID, userID, role string) error {
	query := "INSERT INTO family_members (family_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, familyID, userID, role, time.Now()); err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// IsFamilyMember checks if a user is a member of a family
func (r *FamilyRepository) IsFamilyMember(userID, familyID string) (bool, error) {
	query := "SELECT COUNT(*) FROM family_members WHERE user_id = ? AND family_id = ?"
	var count int
	if err := r.db.QueryRow(query, userID, familyID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}
	return count > 0, nil
}

// UpdateFamilyName updates a family's display name
func (r *FamilyRepository) UpdateFamilyName(familyID, name string) error {
	query := "UPDATE families SET name = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, name, time.Now(), familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// AcquireInitFlag atomically creates the initialization flag for a family.
// It returns false without error when the flag already exists, which means
// another initializer holds or has finished the bootstrap.
func (r *FamilyRepository) AcquireInitFlag(familyID, createdBy string) (bool, error) {
	query := `
		INSERT INTO initialization_flags (family_id, status, created_by, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, familyID, models.InitStatusInitializing, createdBy, time.Now())
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire initialization flag: %w", err)
	}
	return true, nil
}

// CompleteInitFlag marks the initialization flag as completed
func (r *FamilyRepository) CompleteInitFlag(familyID string) error {
	query := "UPDATE initialization_flags SET status = ?, completed_at = ? WHERE family_id = ?"
	if _, err := r.db.Exec(query, models.InitStatusCompleted, time.Now(), familyID); err != nil {
		return fmt.Errorf("failed to complete initialization flag: %w", err)
	}
	return nil
}

// DeleteInitFlag rolls back the initialization mutex after a failed seeding
func (r *FamilyRepository) DeleteInitFlag(familyID string) error {
	if _, err := r.db.Exec("DELETE FROM initialization_flags WHERE family_id = ?", familyID); err != nil {
		return fmt.Errorf("failed to delete initialization flag: %w", err)
	}
	return nil
}

// GetInitFlag retrieves the initialization flag for a family
func (r *FamilyRepository) GetInitFlag(familyID string) (*models.InitializationFlag, error) {
	query := `
		SELECT family_id, status, created_by, created_at, completed_at
		FROM initialization_flags WHERE family_id = ?
	`
	flag := &models.InitializationFlag{}
	var completedAt sql.NullTime
	err := r.db.QueryRow(query, familyID).Scan(
		&flag.FamilyID,
		&flag.Status,
		&flag.CreatedBy,
		&flag.CreatedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get initialization flag: %w", err)
	}
	if completedAt.Valid {
		flag.CompletedAt = &completedAt.Time
	}
	return flag, nil
}
