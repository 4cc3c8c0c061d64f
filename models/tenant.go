package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rent record lifecycle. A record enters the history as "submitted" and is
// moved to "received" by the owning landlord's acknowledgement. "pending" and
// "late" exist for compatibility with historical data; no workflow sets them.
const (
	RentStatusPending   = "pending"
	RentStatusSubmitted = "submitted"
	RentStatusReceived  = "received"
	RentStatusLate      = "late"
)

// Referral lifecycle shared by tenant and owner referral programs.
const (
	ReferralStatusInvited = "invited"
	ReferralStatusJoined  = "joined"
)

// Tenant is a renter occupying a unit of a property. UserID links the profile
// to a login account once the invited person signs up; owners create tenant
// profiles before that happens, so the link may be empty.
type Tenant struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	UserID       string       `gorm:"size:36;index" json:"user_id"`
	Email        string       `gorm:"size:255;index" json:"email"`
	Name         string       `gorm:"size:128;not null" json:"name"`
	Phone        string       `gorm:"size:32" json:"phone"`
	PropertyID   string       `gorm:"size:36;index;not null" json:"property_id"`
	UnitNumber   string       `gorm:"size:16" json:"unit_number"`
	JoinedDate   time.Time    `json:"joined_date"`
	RewardPoints int          `gorm:"default:0" json:"reward_points"`
	ReferralCode string       `gorm:"size:64;index" json:"referral_code"`
	RentHistory  []RentRecord `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"rent_history,omitempty"`
	Referrals    []Referral   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"referrals,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// BeforeCreate fills in generated fields for owner-created profiles.
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.JoinedDate.IsZero() {
		t.JoinedDate = time.Now()
	}
	if t.ReferralCode == "" {
		t.ReferralCode = DeriveReferralCode(t.Name, t.JoinedDate)
	}
	return nil
}

// DeriveReferralCode builds the shareable code from a display name and join
// year, e.g. "Ravi Kumar" in 2023 becomes RAVIKUMAR2023.
func DeriveReferralCode(name string, joined time.Time) string {
	compact := strings.ToUpper(strings.Join(strings.Fields(name), ""))
	return fmt.Sprintf("%s%d", compact, joined.Year())
}

// RentRecord is one rent payment claim in a tenant's history. PointsEarned is
// provisional until the owner acknowledges the record, at which point it is
// recomputed from the stored amount and dates and credited to the tenant.
type RentRecord struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID       string     `gorm:"size:36;index;not null" json:"tenant_id"`
	Month          string     `gorm:"size:32" json:"month"`
	Amount         float64    `gorm:"not null" json:"amount"`
	DueDate        time.Time  `json:"due_date"`
	SubmissionDate *time.Time `json:"submission_date"`
	Status         string     `gorm:"size:16;not null;default:'submitted'" json:"status"`
	PaymentMethod  string     `gorm:"size:32;default:'cheque'" json:"payment_method"`
	ChequeNumber   string     `gorm:"size:64" json:"cheque_number,omitempty"`
	ChequePhoto    string     `gorm:"type:text" json:"cheque_photo,omitempty"`
	PointsEarned   int        `json:"points_earned"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (r *RentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Referral is a tenant-program invite. PointsEarned stays zero until the
// invitee signs up with the referral code.
type Referral struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	TenantID     string     `gorm:"size:36;index;not null" json:"tenant_id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Email        string     `gorm:"size:255;not null" json:"email"`
	Status       string     `gorm:"size:16;not null;default:'invited'" json:"status"`
	InvitedDate  *time.Time `json:"invited_date"`
	JoinedDate   *time.Time `json:"joined_date"`
	PointsEarned int        `json:"points_earned"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.InvitedDate == nil {
		now := time.Now()
		r.InvitedDate = &now
	}
	return nil
}
