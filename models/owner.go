package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owner is a landlord profile. Properties are related rows keyed by OwnerID;
// there is no separate id list to keep in sync with the property table.
type Owner struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	UserID       string          `gorm:"size:36;index" json:"user_id"`
	Email        string          `gorm:"size:255;index" json:"email"`
	Name         string          `gorm:"size:128;not null" json:"name"`
	Phone        string          `gorm:"size:32" json:"phone"`
	JoinedDate   time.Time       `json:"joined_date"`
	ReferralCode string          `gorm:"size:64;index" json:"referral_code"`
	Properties   []Property      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"properties,omitempty"`
	Referrals    []OwnerReferral `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"referrals,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (o *Owner) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.JoinedDate.IsZero() {
		o.JoinedDate = time.Now()
	}
	if o.ReferralCode == "" {
		o.ReferralCode = DeriveReferralCode(o.Name, o.JoinedDate)
	}
	return nil
}

// OwnerReferral tracks a landlord-program invite. After the invitee joins,
// the counters record how much portfolio activity the referral produced and
// BonusEarned accumulates the joined bonus plus per-property and per-tenant
// increments.
type OwnerReferral struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	OwnerID          string     `gorm:"size:36;index;not null" json:"owner_id"`
	ReferredOwnerID  string     `gorm:"size:36;index" json:"referred_owner_id"`
	Name             string     `gorm:"size:128;not null" json:"name"`
	Email            string     `gorm:"size:255;not null" json:"email"`
	Status           string     `gorm:"size:16;not null;default:'invited'" json:"status"`
	InvitedDate      *time.Time `json:"invited_date"`
	JoinedDate       *time.Time `json:"joined_date"`
	PropertiesAdded  int        `gorm:"default:0" json:"properties_added"`
	TenantsOnboarded int        `gorm:"default:0" json:"tenants_onboarded"`
	BonusEarned      int        `gorm:"default:0" json:"bonus_earned"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (r *OwnerReferral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.InvitedDate == nil {
		now := time.Now()
		r.InvitedDate = &now
	}
	return nil
}
