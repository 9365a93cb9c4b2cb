package service

import (
	"path/filepath"
	"testing"

	"dinnerboard/internal/database"
	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/repository"
)

// testEnv wires the full service stack onto a throwaway SQLite database
type testEnv struct {
	db         *database.DB
	broker     *realtime.Broker
	userRepo   *repository.UserRepository
	familyRepo *repository.FamilyRepository
	memberRepo *repository.MemberRepository
	resolver   *TenantResolver
	bootstrap  *BootstrapService
	roster     *RosterService
	attendance *AttendanceService
	notes      *NoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	broker := realtime.NewBroker()
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	resolver := NewTenantResolver(familyRepo)

	return &testEnv{
		db:         db,
		broker:     broker,
		userRepo:   userRepo,
		familyRepo: familyRepo,
		memberRepo: memberRepo,
		resolver:   resolver,
		bootstrap:  NewBootstrapService(familyRepo, memberRepo, resolver, broker),
		roster:     NewRosterService(memberRepo, broker),
		attendance: NewAttendanceService(attendanceRepo, broker),
		notes:      NewNoteService(noteRepo, broker),
	}
}

// createUser inserts a user directly, bypassing registration
func (e *testEnv) createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user, err := e.userRepo.CreateUser(email, "not-a-real-hash", name)
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// createFamilyWithMember sets up a family containing one roster member and
// returns (familyID, memberID)
func (e *testEnv) createFamilyWithMember(t *testing.T, memberName string) (string, string) {
	t.Helper()
	user := e.createUser(t, memberName+"@example.com", memberName)
	familyID, err := e.resolver.Resolve(user.ID)
	if err != nil {
		t.Fatalf("Failed to resolve family: %v", err)
	}
	member, err := e.roster.AddMember(familyID, memberName, "")
	if err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	return familyID, member.ID
}
