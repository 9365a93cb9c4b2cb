package models

import "time"

// Recipient is a chat-platform user who opted in to dinner reminders
type Recipient struct {
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	PictureURL   string    `json:"pictureUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// ReminderSchedule is a per-recipient custom reminder slot, matched by
// day-of-week plus exact HH:MM time-of-day equality
type ReminderSchedule struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	DayOfWeek int       `json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	Time      string    `json:"time"`      // HH:MM
	Message   string    `json:"message"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
