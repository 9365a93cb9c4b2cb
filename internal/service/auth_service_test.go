package service

import (
	"errors"
	"testing"
	"time"
)

func newAuthFixture(t *testing.T, sessionDuration time.Duration) (*AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewAuthService(env.userRepo, env.resolver, sessionDuration), env
}

func TestRegisterAndLogin(t *testing.T) {
	auth, env := newAuthFixture(t, time.Hour)

	user, err := auth.Register("new@example.com", "supersecret", "New User", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.PasswordHash == "supersecret" {
		t.Fatal("password stored in plaintext")
	}

	// Registration eagerly creates the family
	familyID, err := env.familyRepo.GetUserFamilyID(user.ID)
	if err != nil || familyID == "" {
		t.Fatalf("registered user has no family: %v", err)
	}

	session, loggedIn, err := auth.Login("new@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("login returned wrong user")
	}

	validated, err := auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if validated.ID != user.ID {
		t.Errorf("session resolves to wrong user")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	auth, _ := newAuthFixture(t, time.Hour)

	if _, err := auth.Register("dup@example.com", "supersecret", "First", ""); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := auth.Register("dup@example.com", "othersecret", "Second", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterWithInviteCodeJoinsExistingFamily(t *testing.T) {
	auth, env := newAuthFixture(t, time.Hour)

	owner, err := auth.Register("owner2@example.com", "supersecret", "Owner", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	ownerFamilyID, _ := env.familyRepo.GetUserFamilyID(owner.ID)
	family, err := env.resolver.GetFamily(ownerFamilyID)
	if err != nil {
		t.Fatalf("GetFamily failed: %v", err)
	}

	joiner, err := auth.Register("joiner2@example.com", "supersecret", "Joiner", family.InviteCode)
	if err != nil {
		t.Fatalf("Register with invite failed: %v", err)
	}
	joinerFamilyID, _ := env.familyRepo.GetUserFamilyID(joiner.ID)
	if joinerFamilyID != ownerFamilyID {
		t.Errorf("invitee landed in family %s, want %s", joinerFamilyID, ownerFamilyID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth, _ := newAuthFixture(t, time.Hour)

	if _, err := auth.Register("victim@example.com", "supersecret", "Victim", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := auth.Login("victim@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := auth.Login("nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestExpiredSessionRejectedAndRemoved(t *testing.T) {
	auth, _ := newAuthFixture(t, -time.Minute)

	if _, err := auth.Register("expired@example.com", "supersecret", "Expired", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := auth.Login("expired@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// The expired session is gone now
	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after cleanup, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	auth, _ := newAuthFixture(t, time.Hour)

	if _, err := auth.Register("bye@example.com", "supersecret", "Bye", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	session, _, err := auth.Login("bye@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := auth.Logout(session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestOAuthLoginCreatesAndLinksUsers(t *testing.T) {
	auth, _ := newAuthFixture(t, time.Hour)

	// First OAuth login creates the account
	session, user, err := auth.OAuthLogin("google", "sub-123", "oauth@example.com", "OAuth User", "")
	if err != nil {
		t.Fatalf("OAuthLogin failed: %v", err)
	}
	if session == nil || user == nil {
		t.Fatal("OAuthLogin returned nil session or user")
	}

	// Second login with the same subject reuses it
	_, again, err := auth.OAuthLogin("google", "sub-123", "oauth@example.com", "OAuth User", "")
	if err != nil {
		t.Fatalf("repeat OAuthLogin failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("repeat OAuth login created a new user")
	}

	// OAuth login against an existing password account links the provider
	if _, err := auth.Register("linked@example.com", "supersecret", "Linked", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, linked, err := auth.OAuthLogin("google", "sub-456", "linked@example.com", "Linked", "")
	if err != nil {
		t.Fatalf("linking OAuthLogin failed: %v", err)
	}
	if linked.Email != "linked@example.com" {
		t.Errorf("linked wrong account: %s", linked.Email)
	}
}
