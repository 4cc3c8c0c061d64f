package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

const rewardsCacheKey = "cache:rewards:catalog"

// RewardController serves the redemption catalog and handles point spends.
type RewardController struct {
	db *gorm.DB
}

var errInsufficientPoints = errors.New("insufficient points")

// NewRewardController creates a RewardController.
func NewRewardController(db *gorm.DB) *RewardController {
	return &RewardController{db: db}
}

// List returns the reward catalog, cheapest first. The catalog changes
// rarely so it is served from cache when possible.
func (r *RewardController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(rewardsCacheKey); ok {
		var cached []models.Reward
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	var rewards []models.Reward
	if err := r.db.Order("points_cost ASC").Find(&rewards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load rewards")
		return
	}

	utils.CacheSetJSON(rewardsCacheKey, rewards, time.Hour)
	utils.Success(ctx, rewards)
}

// Redeem spends tenant points on a catalog reward. The balance check and the
// deduction are a single guarded update so the balance can never go negative,
// even under concurrent redemptions.
func (r *RewardController) Redeem(ctx *gin.Context) {
	type request struct {
		RewardID string `json:"reward_id" binding:"required"`
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	tenant, err := tenantForUser(r.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "reward_id is required")
		return
	}

	var reward models.Reward
	if err := r.db.First(&reward, "id = ?", req.RewardID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "reward not found")
		return
	}

	var redemption models.Redemption
	var remaining int
	err = r.db.Transaction(func(tx *gorm.DB) error {
		// Conditional decrement: the balance check and the deduction are one
		// statement, so concurrent redemptions cannot drive the balance
		// negative.
		spend := tx.Model(&models.Tenant{}).
			Where("id = ? AND reward_points >= ?", tenant.ID, reward.PointsCost).
			Update("reward_points", gorm.Expr("reward_points - ?", reward.PointsCost))
		if spend.Error != nil {
			return spend.Error
		}
		if spend.RowsAffected == 0 {
			return errInsufficientPoints
		}

		var fresh models.Tenant
		if err := tx.First(&fresh, "id = ?", tenant.ID).Error; err != nil {
			return err
		}
		remaining = fresh.RewardPoints

		redemption = models.Redemption{
			TenantID:    tenant.ID,
			RewardID:    reward.ID,
			PointsSpent: reward.PointsCost,
		}
		return tx.Create(&redemption).Error
	})
	switch err {
	case nil:
	case errInsufficientPoints:
		utils.Error(ctx, http.StatusBadRequest, 40051, "insufficient points for this reward")
		return
	default:
		utils.Sugar.Errorf("redemption failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to redeem reward")
		return
	}

	utils.InvalidateByPrefix("cache:tenant:profile:" + userID)

	utils.Respond(ctx, http.StatusCreated, 0, "reward redeemed", gin.H{
		"redemption":       redemption,
		"remaining_points": remaining,
	})
}

// Redemptions returns the tenant's redemption history, newest first.
func (r *RewardController) Redemptions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	tenant, err := tenantForUser(r.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	var redemptions []models.Redemption
	if err := r.db.Where("tenant_id = ?", tenant.ID).Order("created_at DESC").Find(&redemptions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load redemptions")
		return
	}
	utils.Success(ctx, redemptions)
}
