package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User types recognised by the platform.
const (
	UserTypeTenant = "tenant"
	UserTypeOwner  = "owner"
)

// VerificationTokenTTL is how long an email verification token stays valid.
const VerificationTokenTTL = 24 * time.Hour

// User represents an account. Passwords are stored as bcrypt hashes only.
// Either Email or PhoneNumber must be present; phone-only accounts are
// auto-verified since there is no channel to verify against.
type User struct {
	ID                       string         `gorm:"primaryKey;size:36" json:"id"`
	Email                    *string        `gorm:"size:255;uniqueIndex" json:"email"`
	PhoneNumber              *string        `gorm:"size:32;uniqueIndex" json:"phone_number"`
	PasswordHash             string         `gorm:"size:255;not null" json:"-"`
	DisplayName              string         `gorm:"size:128;not null" json:"display_name"`
	UserType                 string         `gorm:"size:16;not null" json:"user_type"`
	IsVerified               bool           `gorm:"default:false" json:"is_verified"`
	VerificationToken        *string        `gorm:"size:64;index" json:"-"`
	VerificationTokenExpires *time.Time     `json:"-"`
	ResetPasswordToken       *string        `gorm:"size:64" json:"-"`
	ResetPasswordExpires     *time.Time     `json:"-"`
	CreatedAt                time.Time      `json:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID and normalises the email address.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &lowered
	}
	return nil
}

// GenerateVerificationToken issues a fresh random token valid for 24 hours.
func (u *User) GenerateVerificationToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand should never fail; fall back to a UUID-derived token
		token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		u.setVerificationToken(token)
		return token
	}
	token := hex.EncodeToString(buf)
	u.setVerificationToken(token)
	return token
}

func (u *User) setVerificationToken(token string) {
	expires := time.Now().Add(VerificationTokenTTL)
	u.VerificationToken = &token
	u.VerificationTokenExpires = &expires
}
