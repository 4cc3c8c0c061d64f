package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property is a building owned by a landlord. Occupancy is never stored: it
// is the count of tenant rows referencing the property, so it cannot drift
// from reality the way a manually maintained counter would.
type Property struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string    `gorm:"size:36;index;not null" json:"owner_id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Address     string    `gorm:"size:255" json:"address"`
	Units       int       `gorm:"not null" json:"units"`
	CreatedDate time.Time `json:"created_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// OccupiedUnits is populated by queries, not persisted.
	OccupiedUnits int64 `gorm:"-" json:"occupied_units"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now()
	}
	return nil
}

// CountOccupiedUnits returns the live tenant count for a property.
func CountOccupiedUnits(db *gorm.DB, propertyID string) (int64, error) {
	var n int64
	err := db.Model(&Tenant{}).Where("property_id = ?", propertyID).Count(&n).Error
	return n, err
}
