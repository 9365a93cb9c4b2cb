package service

import (
	"fmt"
	"log"
	"strings"

	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
)

// defaultMembers is the roster seeded into a brand-new family
var defaultMembers = []models.Member{
	{Name: "Dad", Color: "#3B82F6", Order: 1},
	{Name: "Mom", Color: "#EF4444", Order: 2},
	{Name: "Brother", Color: "#10B981", Order: 3},
	{Name: "Sister", Color: "#F59E0B", Order: 4},
}

// BootstrapService seeds a default roster into an empty family exactly once.
// Concurrent sessions race for an initialization flag; only the winner seeds,
// everyone else skips without error.
type BootstrapService struct {
	familyRepo *repository.FamilyRepository
	memberRepo *repository.MemberRepository
	resolver   *TenantResolver
	broker     *realtime.Broker
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(familyRepo *repository.FamilyRepository, memberRepo *repository.MemberRepository, resolver *TenantResolver, broker *realtime.Broker) *BootstrapService {
	return &BootstrapService{
		familyRepo: familyRepo,
		memberRepo: memberRepo,
		resolver:   resolver,
		broker:     broker,
	}
}

// EnsureInitialized runs the per-session initialization flow for a user:
// resolve the family (creating it lazily), and seed the default roster if the
// family has no members yet. Returns the family ID. Transient connectivity
// failures are swallowed so a flaky startup never blocks the session.
func (s *BootstrapService) EnsureInitialized(userID string) (string, error) {
	familyID, err := s.resolver.Resolve(userID)
	if err != nil {
		return "", err
	}

	if err := s.initializeFamily(familyID, userID); err != nil {
		if isTransientError(err) {
			log.Printf("Bootstrap skipped for family %s (transient error): %v", familyID, err)
			return familyID, nil
		}
		return "", err
	}
	return familyID, nil
}

func (s *BootstrapService) initializeFamily(familyID, userID string) error {
	count, err := s.memberRepo.CountMembers(familyID)
	if err != nil {
		return fmt.Errorf("failed to check roster: %w", err)
	}
	if count > 0 {
		return nil
	}

	acquired, err := s.familyRepo.AcquireInitFlag(familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to acquire initialization flag: %w", err)
	}
	if !acquired {
		// Another session is seeding or already finished. Not an error.
		log.Printf("Bootstrap already in progress for family %s, skipping", familyID)
		return nil
	}

	// Re-check after winning the flag: members may have appeared between the
	// first count and the flag insert.
	count, err = s.memberRepo.CountMembers(familyID)
	if err != nil {
		s.rollbackInitFlag(familyID)
		return fmt.Errorf("failed to re-check roster: %w", err)
	}
	if count > 0 {
		if err := s.familyRepo.CompleteInitFlag(familyID); err != nil {
			return fmt.Errorf("failed to complete initialization flag: %w", err)
		}
		return nil
	}

	if err := s.memberRepo.CreateMembersBatch(familyID, defaultMembers); err != nil {
		s.rollbackInitFlag(familyID)
		return fmt.Errorf("failed to seed default members: %w", err)
	}

	if err := s.familyRepo.CompleteInitFlag(familyID); err != nil {
		return fmt.Errorf("failed to complete initialization flag: %w", err)
	}

	log.Printf("Seeded default roster for family %s", familyID)
	s.broker.Publish(familyID, realtime.TopicMembers)
	return nil
}

// rollbackInitFlag compensates a failed seeding so a later session can retry
func (s *BootstrapService) rollbackInitFlag(familyID string) {
	if err := s.familyRepo.DeleteInitFlag(familyID); err != nil {
		log.Printf("Failed to roll back initialization flag for family %s: %v", familyID, err)
	}
}

// isTransientError classifies connectivity failures that should not abort a
// session: the roster can be seeded on the next attempt instead.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"network", "offline", "timeout", "connection refused"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
