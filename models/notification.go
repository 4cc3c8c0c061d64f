package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification kinds.
const (
	NotificationRentPayment = "rent_payment"
	NotificationNewTenant   = "new_tenant"
	NotificationGeneral     = "general"
)

// Notification is an append-only inbox entry for a tenant or owner profile.
// The optional correlation fields let the recipient jump to the rent record
// or property the event refers to. There is no delivery guarantee; clients
// poll their list.
type Notification struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	RecipientID   string    `gorm:"size:36;index;not null" json:"recipient_id"`
	RecipientType string    `gorm:"size:16;not null" json:"recipient_type"`
	Type          string    `gorm:"size:32;not null" json:"type"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	RentID        string    `gorm:"size:36" json:"rent_id,omitempty"`
	TenantID      string    `gorm:"size:36" json:"tenant_id,omitempty"`
	Amount        float64   `json:"amount,omitempty"`
	PropertyID    string    `gorm:"size:36" json:"property_id,omitempty"`
	CreatedAt     time.Time `json:"timestamp"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
