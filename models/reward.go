package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward categories in the redemption catalog.
const (
	RewardCategoryShopping      = "shopping"
	RewardCategoryFood          = "food"
	RewardCategoryEntertainment = "entertainment"
	RewardCategoryTravel        = "travel"
)

// Reward is a catalog entry tenants can redeem points against. The catalog is
// static configuration seeded at boot; it is not user-editable.
type Reward struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	PointsCost  int       `gorm:"not null" json:"points_cost"`
	Category    string    `gorm:"size:32" json:"category"`
	Image       string    `gorm:"size:255" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// Redemption records a tenant spending points on a reward.
type Redemption struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	TenantID    string    `gorm:"size:36;index;not null" json:"tenant_id"`
	RewardID    string    `gorm:"size:36;not null" json:"reward_id"`
	PointsSpent int       `gorm:"not null" json:"points_spent"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Redemption) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DefaultRewards is the shipped catalog.
var DefaultRewards = []Reward{
	{ID: "rw1", Name: "Amazon Gift Card", Description: "AED 180 Amazon Gift Card", PointsCost: 500, Category: RewardCategoryShopping, Image: "amazon_gift_card.jpg"},
	{ID: "rw2", Name: "Starbucks Gift Card", Description: "AED 75 Starbucks Gift Card", PointsCost: 200, Category: RewardCategoryFood, Image: "starbucks_gift_card.jpg"},
	{ID: "rw3", Name: "Movie Tickets", Description: "2 Movie Tickets at VOX Cinemas", PointsCost: 300, Category: RewardCategoryEntertainment, Image: "movie_tickets.jpg"},
	{ID: "rw4", Name: "Careem Ride", Description: "AED 55 Careem Ride Credit", PointsCost: 150, Category: RewardCategoryTravel, Image: "careem_ride.jpg"},
	{ID: "rw5", Name: "Talabat Voucher", Description: "AED 90 Talabat Voucher", PointsCost: 250, Category: RewardCategoryFood, Image: "talabat_voucher.jpg"},
}

// SeedRewards inserts catalog entries that are not present yet. Existing rows
// are left untouched so a redeploy never clobbers pricing history.
func SeedRewards(db *gorm.DB) error {
	for _, reward := range DefaultRewards {
		var count int64
		if err := db.Model(&Reward{}).Where("id = ?", reward.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&reward).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
