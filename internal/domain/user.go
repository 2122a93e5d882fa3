package domain

import (
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account known to the system, either signed in through
// the identity provider or referenced as a contributor.
type User struct {
	ID          string    `json:"id"          gorm:"type:varchar(36);primaryKey"`
	Username    string    `json:"username"    gorm:"size:100;not null;uniqueIndex"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatarUrl"`
	Provider    string    `json:"-"           gorm:"size:50;index:idx_users_provider"`
	ProviderID  string    `json:"-"           gorm:"size:100;index:idx_users_provider"`
	AccessToken string    `json:"-"` // never serialized to JSON
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// GeneratedAvatarBase is the avatar service used when a user has no picture.
const GeneratedAvatarBase = "https://api.dicebear.com/7.x/identicon/svg?seed="

// DisplayName returns the user's name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Avatar returns the stored avatar URL or a generated one seeded by username.
func (u *User) Avatar() string {
	if u.AvatarURL != "" {
		return u.AvatarURL
	}
	return GeneratedAvatarBase + url.QueryEscape(u.Username)
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}
