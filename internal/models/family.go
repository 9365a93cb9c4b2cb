package models

import "time"

// Family is the tenant under which all roster, attendance and note data lives
type Family struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FamilyMembership links an authenticated user to a family
type FamilyMembership struct {
	FamilyID string
	UserID   string
	Role     string // 'admin' or 'member'
	JoinedAt time.Time
}

// Initialization states for the one-time default roster seeding. Only
// "initializing" and "completed" are ever stored: a family with no flag row
// has not started, and a failed run deletes its row so the next caller can
// retry, which reads back as "not_started".
const (
	InitStatusNotStarted   = "not_started"
	InitStatusInitializing = "initializing"
	InitStatusCompleted    = "completed"
	InitStatusFailed       = "failed"
)

// InitializationFlag is the singleton per-family document used as the
// mutual-exclusion guard for bootstrap seeding
type InitializationFlag struct {
	FamilyID    string
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// InitStatusFor reports the seeding state a flag row encodes. A nil flag
// means the family has never been through seeding (or a failed run was
// rolled back).
func InitStatusFor(flag *InitializationFlag) string {
	if flag == nil {
		return InitStatusNotStarted
	}
	return flag.Status
}
