package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"dinnerboard/internal/bot"
	"dinnerboard/internal/models"
	"dinnerboard/internal/repository"
	"dinnerboard/internal/validation"
)

// weekdayReminders are the fixed-cadence broadcast templates
var weekdayReminders = map[time.Weekday]string{
	time.Monday:    "Good morning! Don't forget to mark your dinner attendance for this week.",
	time.Wednesday: "Midweek check: is everyone's dinner attendance up to date?",
	time.Friday:    "Weekend ahead! Please update your dinner plans for the coming days.",
}

// welcomeMessage greets a recipient right after they follow the bot
const welcomeMessage = "Thanks for adding me! I'll remind you to keep the family dinner calendar up to date."

// keywordReplies maps message keywords to canned replies, checked in order
var keywordReplies = []struct {
	Keyword string
	Reply   string
}{
	{"attendance", "Open the calendar and tap a cell to cycle between present, absent and undecided."},
	{"dinner", "You can see who's home for dinner on the weekly calendar."},
	{"help", "I send dinner reminders on Monday, Wednesday and Friday. Say \"attendance\" or \"dinner\" to learn more."},
}

const fallbackReply = "Sorry, I didn't get that. Say \"help\" to see what I can do."

// DispatchResult summarizes one reminder invocation
type DispatchResult struct {
	Day            string `json:"day"`
	Sent           int    `json:"sent"`
	CustomExecuted int    `json:"customExecuted"`
	Message        string `json:"message"`
}

// ReminderService drives the chat-bot reminder broadcasts. Dispatch is meant
// to be triggered by an external cron hitting the reminder endpoint.
type ReminderService struct {
	recipientRepo *repository.RecipientRepository
	sender        bot.Sender
}

// NewReminderService creates a new reminder service
func NewReminderService(recipientRepo *repository.RecipientRepository, sender bot.Sender) *ReminderService {
	return &ReminderService{recipientRepo: recipientRepo, sender: sender}
}

// Dispatch runs the reminder pass for the given invocation time: the fixed
// Monday/Wednesday/Friday broadcast plus any custom schedules whose HH:MM
// exactly matches the invocation minute. On days with nothing to send the
// result carries an explanatory message and zero sends.
func (s *ReminderService) Dispatch(ctx context.Context, now time.Time) (*DispatchResult, error) {
	day := now.Weekday()
	result := &DispatchResult{Day: day.String()}

	template, isReminderDay := weekdayReminders[day]
	if isReminderDay {
		sent, err := s.broadcast(ctx, template)
		if err != nil {
			return nil, err
		}
		result.Sent += sent
		result.Message = fmt.Sprintf("Sent %d reminder(s) for %s.", sent, day)
	}

	custom, err := s.dispatchCustom(ctx, now)
	if err != nil {
		return nil, err
	}
	result.CustomExecuted = custom
	result.Sent += custom

	if !isReminderDay && custom == 0 {
		result.Message = fmt.Sprintf("Today is %s. No reminder scheduled.", day)
	}
	return result, nil
}

// broadcast pushes one message to every active recipient. A failed push is
// logged and skipped so one bad recipient never blocks the rest.
func (s *ReminderService) broadcast(ctx context.Context, text string) (int, error) {
	recipients, err := s.recipientRepo.ListActiveRecipients()
	if err != nil {
		return 0, fmt.Errorf("failed to list recipients: %w", err)
	}

	sent := 0
	for _, r := range recipients {
		if err := s.sender.Push(ctx, r.UserID, text); err != nil {
			log.Printf("Reminder push failed for %s: %v", r.UserID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// dispatchCustom runs custom schedules matching today's weekday and the exact
// HH:MM of the invocation
func (s *ReminderService) dispatchCustom(ctx context.Context, now time.Time) (int, error) {
	schedules, err := s.recipientRepo.ListEnabledSchedules(int(now.Weekday()))
	if err != nil {
		return 0, fmt.Errorf("failed to list schedules: %w", err)
	}

	clock := now.Format("15:04")
	executed := 0
	for _, sch := range schedules {
		if sch.Time != clock {
			continue
		}
		sent, err := s.broadcast(ctx, sch.Message)
		if err != nil {
			return executed, err
		}
		executed += sent
	}
	return executed, nil
}

// RegisterRecipient upserts an active reminder recipient
func (s *ReminderService) RegisterRecipient(userID, displayName, pictureURL string) error {
	if userID == "" {
		return fmt.Errorf("recipient user ID is required")
	}
	if err := s.recipientRepo.UpsertRecipient(userID, displayName, pictureURL); err != nil {
		return err
	}
	log.Printf("Registered reminder recipient %s (%s)", userID, displayName)
	return nil
}

// UnregisterRecipient deactivates a recipient, e.g. when they unfollow
func (s *ReminderService) UnregisterRecipient(userID string) error {
	return s.recipientRepo.DeactivateRecipient(userID)
}

// UpdateSchedules validates and stores a batch of custom schedules
func (s *ReminderService) UpdateSchedules(schedules []models.ReminderSchedule) error {
	for _, sch := range schedules {
		if sch.DayOfWeek < 0 || sch.DayOfWeek > 6 {
			return fmt.Errorf("invalid day of week: %d", sch.DayOfWeek)
		}
		if err := validation.ValidateTimeOfDay(sch.Time); err != nil {
			return err
		}
		if err := validation.ValidateText(sch.Message); err != nil {
			return err
		}
	}
	return s.recipientRepo.UpsertSchedules(schedules)
}

// HandleFollow registers the new follower and sends the welcome reply
func (s *ReminderService) HandleFollow(ctx context.Context, userID, displayName, pictureURL string) error {
	if err := s.RegisterRecipient(userID, displayName, pictureURL); err != nil {
		return err
	}
	return s.sender.Push(ctx, userID, welcomeMessage)
}

// HandleUnfollow deactivates the recipient
func (s *ReminderService) HandleUnfollow(userID string) error {
	return s.UnregisterRecipient(userID)
}

// ReplyFor picks the canned reply for an incoming text message by keyword
// containment, first match wins
func (s *ReminderService) ReplyFor(text string) string {
	lowered := strings.ToLower(text)
	for _, kr := range keywordReplies {
		if strings.Contains(lowered, kr.Keyword) {
			return kr.Reply
		}
	}
	return fallbackReply
}

// HandleTextMessage answers an incoming chat message with a canned reply
func (s *ReminderService) HandleTextMessage(ctx context.Context, userID, text string) error {
	return s.sender.Push(ctx, userID, s.ReplyFor(text))
}
