package models

// Member represents one person on the family dinner roster
type Member struct {
	ID       string `json:"id"`
	FamilyID string `json:"-"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Order    int    `json:"order"`
}
