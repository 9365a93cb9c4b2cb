package models

import "time"

// Note is a free-text annotation attached to a member and a date. Notes have
// their own identity, so a member can carry several notes on the same day.
type Note struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"-"`
	MemberID  string    `json:"memberId"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
