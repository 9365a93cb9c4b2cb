package service

import (
	"errors"
	"testing"

	"dinnerboard/internal/models"
)

func TestAddMemberAssignsNextOrder(t *testing.T) {
	env := newTestEnv(t)
	familyID, _ := env.createFamilyWithMember(t, "First")

	second, err := env.roster.AddMember(familyID, "Second", "#123456")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if second.Order != 2 {
		t.Errorf("second member order = %d, want 2", second.Order)
	}
	if second.Color != "#123456" {
		t.Errorf("color not stored: %s", second.Color)
	}

	third, err := env.roster.AddMember(familyID, "Third", "")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if third.Order != 3 {
		t.Errorf("third member order = %d, want 3", third.Order)
	}
	if third.Color == "" {
		t.Error("empty color should fall back to a default")
	}
}

func TestAddMemberRejectsBlankName(t *testing.T) {
	env := newTestEnv(t)
	familyID, _ := env.createFamilyWithMember(t, "Solo")

	if _, err := env.roster.AddMember(familyID, "   ", ""); err == nil {
		t.Error("expected validation error for blank name")
	}
}

func TestUpdateMemberMergePatch(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "Original")

	newName := "Renamed"
	if err := env.roster.UpdateMember(familyID, memberID, &newName, nil, nil); err != nil {
		t.Fatalf("UpdateMember failed: %v", err)
	}

	members, err := env.roster.ListMembers(familyID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if members[0].Name != "Renamed" {
		t.Errorf("name = %s, want Renamed", members[0].Name)
	}
	if members[0].Order != 1 {
		t.Errorf("order changed by unrelated patch: %d", members[0].Order)
	}

	if err := env.roster.UpdateMember(familyID, "missing-id", &newName, nil, nil); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestDeleteMemberCascadesAttendanceAndNotes(t *testing.T) {
	env := newTestEnv(t)
	familyID, victimID := env.createFamilyWithMember(t, "Victim")
	survivor, err := env.roster.AddMember(familyID, "Survivor", "")
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	if _, err := env.attendance.SetStatus(familyID, victimID, "2025-06-02", models.StatusPresent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := env.attendance.SetStatus(familyID, survivor.ID, "2025-06-02", models.StatusAbsent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := env.notes.AddNote(familyID, victimID, "2025-06-02", "out with friends"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if _, err := env.notes.AddNote(familyID, survivor.ID, "2025-06-02", "cooking tonight"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	if err := env.roster.DeleteMember(familyID, victimID); err != nil {
		t.Fatalf("DeleteMember failed: %v", err)
	}

	members, err := env.roster.ListMembers(familyID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 || members[0].ID != survivor.ID {
		t.Fatalf("unexpected roster after delete: %+v", members)
	}

	snapshot, err := env.attendance.WeeklySnapshot(familyID)
	if err != nil {
		t.Fatalf("WeeklySnapshot failed: %v", err)
	}
	if _, exists := snapshot["2025-06-02"][victimID]; exists {
		t.Error("deleted member's attendance record survived the cascade")
	}
	if _, exists := snapshot["2025-06-02"][survivor.ID]; !exists {
		t.Error("surviving member's attendance record was deleted")
	}

	notes, err := env.notes.ListNotes(familyID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].MemberID != survivor.ID {
		t.Errorf("cascade left wrong notes behind: %+v", notes)
	}
}

func TestDeleteMemberRollsBackWhenCascadeFails(t *testing.T) {
	env := newTestEnv(t)
	familyID, victimID := env.createFamilyWithMember(t, "Victim")
	if _, err := env.roster.AddMember(familyID, "Survivor", ""); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	if _, err := env.attendance.SetStatus(familyID, victimID, "2025-06-02", models.StatusPresent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if _, err := env.notes.AddNote(familyID, victimID, "2025-06-02", "out with friends"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	// Make the notes delete fail partway through the cascade transaction
	if _, err := env.db.Exec("DROP TABLE notes"); err != nil {
		t.Fatalf("failed to drop notes table: %v", err)
	}

	if err := env.roster.DeleteMember(familyID, victimID); err == nil {
		t.Fatal("DeleteMember succeeded despite failing cascade step")
	}

	// The earlier deletes in the same transaction must have been rolled back
	members, err := env.roster.ListMembers(familyID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("member delete not rolled back: %d members left", len(members))
	}

	snapshot, err := env.attendance.WeeklySnapshot(familyID)
	if err != nil {
		t.Fatalf("WeeklySnapshot failed: %v", err)
	}
	if _, exists := snapshot["2025-06-02"][victimID]; !exists {
		t.Error("attendance delete not rolled back")
	}
}

func TestDeleteLastMemberRefused(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "OnlyChild")

	err := env.roster.DeleteMember(familyID, memberID)
	if !errors.Is(err, ErrLastMember) {
		t.Fatalf("expected ErrLastMember, got %v", err)
	}

	members, _ := env.roster.ListMembers(familyID)
	if len(members) != 1 {
		t.Errorf("refused delete still removed the member")
	}
}

func TestDeleteMemberUnknownID(t *testing.T) {
	env := newTestEnv(t)
	familyID, _ := env.createFamilyWithMember(t, "Someone")

	if err := env.roster.DeleteMember(familyID, "no-such-member"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected ErrMemberNotFound, got %v", err)
	}
}
