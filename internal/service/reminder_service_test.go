package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"dinnerboard/internal/models"
	"dinnerboard/internal/repository"
)

// fakeSender records pushed messages instead of hitting the chat platform
type fakeSender struct {
	mu     sync.Mutex
	pushes []fakePush
}

type fakePush struct {
	UserID string
	Text   string
}

func (f *fakeSender) Push(ctx context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, fakePush{UserID: userID, Text: text})
	return nil
}

func (f *fakeSender) sent() []fakePush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakePush(nil), f.pushes...)
}

func newReminderFixture(t *testing.T) (*ReminderService, *fakeSender) {
	t.Helper()
	env := newTestEnv(t)
	sender := &fakeSender{}
	recipientRepo := repository.NewRecipientRepository(env.db)
	return NewReminderService(recipientRepo, sender), sender
}

// mustDate builds a time.Time on a known weekday at a given clock time
func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return parsed
}

func TestDispatchOnReminderDay(t *testing.T) {
	svc, sender := newReminderFixture(t)
	if err := svc.RegisterRecipient("U1", "Dad", ""); err != nil {
		t.Fatalf("RegisterRecipient failed: %v", err)
	}
	if err := svc.RegisterRecipient("U2", "Mom", ""); err != nil {
		t.Fatalf("RegisterRecipient failed: %v", err)
	}

	// 2025-06-02 is a Monday
	result, err := svc.Dispatch(context.Background(), mustDate(t, "2025-06-02 07:00"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Day != "Monday" {
		t.Errorf("result day = %s, want Monday", result.Day)
	}
	if result.Sent != 2 {
		t.Errorf("sent = %d, want 2", result.Sent)
	}
	if len(sender.sent()) != 2 {
		t.Errorf("sender pushed %d messages, want 2", len(sender.sent()))
	}
}

func TestDispatchOnQuietDay(t *testing.T) {
	svc, sender := newReminderFixture(t)
	if err := svc.RegisterRecipient("U1", "Dad", ""); err != nil {
		t.Fatalf("RegisterRecipient failed: %v", err)
	}

	// 2025-06-03 is a Tuesday with no custom schedules
	result, err := svc.Dispatch(context.Background(), mustDate(t, "2025-06-03 07:00"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Sent != 0 {
		t.Errorf("quiet day sent %d messages, want 0", result.Sent)
	}
	if result.Message != "Today is Tuesday. No reminder scheduled." {
		t.Errorf("unexpected quiet-day message: %q", result.Message)
	}
	if len(sender.sent()) != 0 {
		t.Errorf("sender pushed on a quiet day: %+v", sender.sent())
	}
}

func TestDispatchCustomScheduleExactTimeMatch(t *testing.T) {
	svc, sender := newReminderFixture(t)
	if err := svc.RegisterRecipient("U1", "Dad", ""); err != nil {
		t.Fatalf("RegisterRecipient failed: %v", err)
	}

	// Tuesday = weekday 2
	schedules := []models.ReminderSchedule{
		{DayOfWeek: 2, Time: "18:30", Message: "Dinner in 30 minutes!", Enabled: true},
	}
	if err := svc.UpdateSchedules(schedules); err != nil {
		t.Fatalf("UpdateSchedules failed: %v", err)
	}

	// Wrong minute: no match
	result, err := svc.Dispatch(context.Background(), mustDate(t, "2025-06-03 18:29"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.CustomExecuted != 0 {
		t.Errorf("schedule fired one minute early: %+v", result)
	}

	// Exact HH:MM: fires
	result, err = svc.Dispatch(context.Background(), mustDate(t, "2025-06-03 18:30"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.CustomExecuted != 1 {
		t.Errorf("customExecuted = %d, want 1", result.CustomExecuted)
	}
	pushes := sender.sent()
	if len(pushes) != 1 || pushes[0].Text != "Dinner in 30 minutes!" {
		t.Errorf("unexpected pushes: %+v", pushes)
	}
}

func TestDispatchSkipsDeactivatedRecipients(t *testing.T) {
	svc, sender := newReminderFixture(t)
	if err := svc.RegisterRecipient("U1", "Dad", ""); err != nil {
		t.Fatalf("RegisterRecipient failed: %v", err)
	}
	if err := svc.UnregisterRecipient("U1"); err != nil {
		t.Fatalf("UnregisterRecipient failed: %v", err)
	}

	result, err := svc.Dispatch(context.Background(), mustDate(t, "2025-06-02 07:00"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Sent != 0 || len(sender.sent()) != 0 {
		t.Errorf("deactivated recipient still got a reminder: %+v", sender.sent())
	}
}

func TestUpdateSchedulesValidation(t *testing.T) {
	svc, _ := newReminderFixture(t)

	tests := []struct {
		name     string
		schedule models.ReminderSchedule
	}{
		{"bad day", models.ReminderSchedule{DayOfWeek: 7, Time: "18:00", Message: "x", Enabled: true}},
		{"bad time", models.ReminderSchedule{DayOfWeek: 1, Time: "25:99", Message: "x", Enabled: true}},
		{"blank message", models.ReminderSchedule{DayOfWeek: 1, Time: "18:00", Message: "  ", Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.UpdateSchedules([]models.ReminderSchedule{tt.schedule}); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestReplyForKeywords(t *testing.T) {
	svc, _ := newReminderFixture(t)

	tests := []struct {
		input    string
		contains string
	}{
		{"how does attendance work?", "tap a cell"},
		{"who's home for DINNER tonight", "weekly calendar"},
		{"help", "Monday, Wednesday and Friday"},
		{"what's the weather", "didn't get that"},
	}
	for _, tt := range tests {
		reply := svc.ReplyFor(tt.input)
		if !strings.Contains(reply, tt.contains) {
			t.Errorf("ReplyFor(%q) = %q, want it to contain %q", tt.input, reply, tt.contains)
		}
	}
}

func TestHandleFollowRegistersAndWelcomes(t *testing.T) {
	svc, sender := newReminderFixture(t)

	if err := svc.HandleFollow(context.Background(), "U9", "New Friend", ""); err != nil {
		t.Fatalf("HandleFollow failed: %v", err)
	}

	pushes := sender.sent()
	if len(pushes) != 1 || pushes[0].UserID != "U9" {
		t.Fatalf("expected one welcome push to U9, got %+v", pushes)
	}

	// The follower now receives broadcasts
	result, err := svc.Dispatch(context.Background(), mustDate(t, "2025-06-02 07:00"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Sent != 1 {
		t.Errorf("new follower not included in broadcast: %+v", result)
	}
}
