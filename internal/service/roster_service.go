package service

import (
	"errors"
	"fmt"
	"log"

	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
	"dinnerboard/internal/validation"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrLastMember     = errors.New("cannot delete the last member")
)

// defaultMemberColor is used when a member is added without picking one
const defaultMemberColor = "#4A90E2"

// RosterService handles the family member roster
type RosterService struct {
	memberRepo *repository.MemberRepository
	broker     *realtime.Broker
}

// NewRosterService creates a new roster service
func NewRosterService(memberRepo *repository.MemberRepository, broker *realtime.Broker) *RosterService {
	return &RosterService{memberRepo: memberRepo, broker: broker}
}

// ListMembers retrieves the roster sorted by display order
func (s *RosterService) ListMembers(familyID string) ([]models.Member, error) {
	return s.memberRepo.ListMembers(familyID)
}

// AddMember appends a member to the roster with order = current count + 1
func (s *RosterService) AddMember(familyID, name, color string) (*models.Member, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if color == "" {
		color = defaultMemberColor
	}

	count, err := s.memberRepo.CountMembers(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	member, err := s.memberRepo.CreateMember(familyID, name, color, count+1)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.broker.Publish(familyID, realtime.TopicMembers)
	return member, nil
}

// UpdateMember applies a merge patch (rename/recolor/reorder) to a member
func (s *RosterService) UpdateMember(familyID, memberID string, name, color *string, order *int) error {
	if name != nil {
		if err := validation.ValidateName(*name); err != nil {
			return err
		}
	}

	existing, err := s.memberRepo.GetMember(familyID, memberID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrMemberNotFound
	}

	if err := s.memberRepo.UpdateMember(familyID, memberID, name, color, order); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	s.broker.Publish(familyID, realtime.TopicMembers)
	return nil
}

// DeleteMember removes a member and, in the same atomic batch, every
// attendance record and note referencing it. The last remaining member
// cannot be deleted.
func (s *RosterService) DeleteMember(familyID, memberID string) error {
	existing, err := s.memberRepo.GetMember(familyID, memberID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrMemberNotFound
	}

	count, err := s.memberRepo.CountMembers(familyID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count <= 1 {
		return ErrLastMember
	}

	if err := s.memberRepo.DeleteMemberCascade(familyID, memberID); err != nil {
		return err
	}

	// the cascade touched all three collections
	s.broker.Publish(familyID, realtime.TopicMembers)
	s.broker.Publish(familyID, realtime.TopicAttendance)
	s.broker.Publish(familyID, realtime.TopicNotes)
	return nil
}

// SubscribeMembers delivers the full roster to cb immediately and after
// every roster change. Each delivery replaces the previous one entirely.
func (s *RosterService) SubscribeMembers(familyID string, cb func([]models.Member)) func() {
	return s.broker.Subscribe(familyID, realtime.TopicMembers, func() {
		members, err := s.memberRepo.ListMembers(familyID)
		if err != nil {
			log.Printf("roster subscription refresh failed: %v", err)
			return
		}
		cb(members)
	})
}
