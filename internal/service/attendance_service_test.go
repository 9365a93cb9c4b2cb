package service

import (
	"testing"

	"dinnerboard/internal/models"
)

func TestSetStatusUpsertsLastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "Alice")

	if _, err := env.attendance.SetStatus(familyID, memberID, "2025-06-02", models.StatusPresent); err != nil {
		t.Fatalf("first SetStatus failed: %v", err)
	}
	record, err := env.attendance.SetStatus(familyID, memberID, "2025-06-02", models.StatusAbsent)
	if err != nil {
		t.Fatalf("second SetStatus failed: %v", err)
	}
	if record.Status != models.StatusAbsent {
		t.Errorf("record status = %v, want absent", record.Status)
	}

	snapshot, err := env.attendance.WeeklySnapshot(familyID)
	if err != nil {
		t.Fatalf("WeeklySnapshot failed: %v", err)
	}
	if got := snapshot.StatusFor("2025-06-02", memberID); got != models.StatusAbsent {
		t.Errorf("snapshot has %v, want absent (last write should win)", got)
	}
	if len(snapshot["2025-06-02"]) != 1 {
		t.Errorf("upsert created %d records for one (member, date) pair, want 1", len(snapshot["2025-06-02"]))
	}
}

func TestCycleStatusFollowsFixedCycle(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "Bob")

	expected := []models.AttendanceStatus{
		models.StatusPresent,
		models.StatusAbsent,
		models.StatusUnknown,
		models.StatusPresent,
	}
	for i, want := range expected {
		record, err := env.attendance.CycleStatus(familyID, memberID, "2025-06-03")
		if err != nil {
			t.Fatalf("CycleStatus tap %d failed: %v", i+1, err)
		}
		if record.Status != want {
			t.Fatalf("tap %d produced %v, want %v", i+1, record.Status, want)
		}
	}
}

func TestSetStatusValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "Cara")

	if _, err := env.attendance.SetStatus(familyID, "", "2025-06-02", models.StatusPresent); err == nil {
		t.Error("expected error for empty member ID")
	}
	if _, err := env.attendance.SetStatus(familyID, memberID, "June 2nd", models.StatusPresent); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestSetStatusNormalizesGarbage(t *testing.T) {
	env := newTestEnv(t)
	familyID, memberID := env.createFamilyWithMember(t, "Dov")

	record, err := env.attendance.SetStatus(familyID, memberID, "2025-06-02", models.AttendanceStatus("banana"))
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if record.Status != models.StatusUnknown {
		t.Errorf("garbage status stored as %v, want unknown", record.Status)
	}
}

func TestWeeklySnapshotIsolatesFamilies(t *testing.T) {
	env := newTestEnv(t)
	family1, member1 := env.createFamilyWithMember(t, "FamOne")
	family2, _ := env.createFamilyWithMember(t, "FamTwo")

	if _, err := env.attendance.SetStatus(family1, member1, "2025-06-02", models.StatusPresent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	snapshot, err := env.attendance.WeeklySnapshot(family2)
	if err != nil {
		t.Fatalf("WeeklySnapshot failed: %v", err)
	}
	if len(snapshot) != 0 {
		t.Errorf("family 2 sees %d days of family 1's data", len(snapshot))
	}
}
