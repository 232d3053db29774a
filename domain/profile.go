package domain

import "time"

// Profile is the social identity wrapped around an authenticated user.
// Authentication itself happens outside the core; every operation receives
// an already-resolved profile ID.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
	Staff     bool      `json:"staff"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) IsStaff() bool {
	return p != nil && p.Staff
}
