package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"dinnerboard/internal/models"
	"dinnerboard/internal/repository"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrFamilyNotFound  = errors.New("family not found")
	ErrNotFamilyMember = errors.New("user is not a member of this family")
)

// defaultFamilyName names a lazily created family before anyone renames it
const defaultFamilyName = "Our Family"

// TenantResolver maps an authenticated user to the family that partitions
// all of their data. Membership is an explicit relation: every user belongs
// to a family row via family_members, never via a marker string smuggled
// inside a profile field.
type TenantResolver struct {
	familyRepo *repository.FamilyRepository
}

// NewTenantResolver creates a new tenant resolver
func NewTenantResolver(familyRepo *repository.FamilyRepository) *TenantResolver {
	return &TenantResolver{familyRepo: familyRepo}
}

// Resolve returns the family ID for a user, creating a family lazily on the
// user's first authenticated access. An empty user ID fails immediately.
func (t *TenantResolver) Resolve(userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}

	familyID, err := t.familyRepo.GetUserFamilyID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve family: %w", err)
	}
	if familyID != "" {
		return familyID, nil
	}

	inviteCode, err := GenerateInviteCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	family, err := t.familyRepo.CreateFamily(defaultFamilyName, inviteCode, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create family: %w", err)
	}
	return family.ID, nil
}

// GetFamily retrieves a family by ID
func (t *TenantResolver) GetFamily(familyID string) (*models.Family, error) {
	family, err := t.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return family, nil
}

// VerifyMembership checks that a user belongs to a family
func (t *TenantResolver) VerifyMembership(userID, familyID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	isMember, err := t.familyRepo.IsFamilyMember(userID, familyID)
	if err != nil {
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !isMember {
		return ErrNotFamilyMember
	}
	return nil
}

// JoinByInviteCode adds a user to the family matching an invite code.
// Joining replaces nothing: a user already in a family gets an error.
func (t *TenantResolver) JoinByInviteCode(userID, inviteCode string) (*models.Family, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if inviteCode == "" {
		return nil, errors.New("invite code is required")
	}

	family, err := t.familyRepo.GetFamilyByInviteCode(inviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to find family: %w", err)
	}
	if family == nil {
		return nil, errors.New("invalid invite code")
	}

	existing, err := t.familyRepo.GetUserFamilyID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if existing == family.ID {
		return nil, errors.New("you are already a member of this family")
	}
	if existing != "" {
		return nil, errors.New("you already belong to another family")
	}

	if err := t.familyRepo.AddFamilyMember(family.ID, userID, "member"); err != nil {
		return nil, fmt.Errorf("failed to join family: %w", err)
	}
	return family, nil
}

// RenameFamily updates the family display name
func (t *TenantResolver) RenameFamily(userID, familyID, name string) error {
	if err := t.VerifyMembership(userID, familyID); err != nil {
		return err
	}
	if name == "" {
		return errors.New("family name is required")
	}
	if err := t.familyRepo.UpdateFamilyName(familyID, name); err != nil {
		return fmt.Errorf("failed to rename family: %w", err)
	}
	return nil
}

const inviteCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateInviteCode produces a 6-character shareable code
func GenerateInviteCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code), nil
}
