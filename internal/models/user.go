package models

import "time"

// UserProfile is the local record for an externally-verified identity.
// UID is the identity provider's subject id and is never generated or
// mutated by this service; rows are provisioned on first successful
// token verification.
type UserProfile struct {
	UID         string    `gorm:"primaryKey;size:128" json:"uid"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	PhotoURL    string    `json:"photo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
