package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/config"
	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

// TenantController serves the tenant-facing surface: profile, rent history,
// rent submission and the tenant referral program.
type TenantController struct {
	db *gorm.DB
}

// NewTenantController creates a TenantController.
func NewTenantController(db *gorm.DB) *TenantController {
	return &TenantController{db: db}
}

// Profile returns the caller's tenant profile with live reward balance.
func (t *TenantController) Profile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	// cached copy is invalidated whenever points move
	cacheKey := "cache:tenant:profile:" + userID
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	tenant, err := tenantForUser(t.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: tenant}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, tenant)
}

// RentHistory returns the tenant's rent records in submission order.
func (t *TenantController) RentHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	tenant, err := tenantForUser(t.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	var records []models.RentRecord
	if err := t.db.Where("tenant_id = ?", tenant.ID).Order("created_at ASC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load rent history")
		return
	}

	utils.Success(ctx, gin.H{
		"reward_points": tenant.RewardPoints,
		"rent_history":  records,
	})
}

// SubmitRent records a rent payment claim. The record enters the history as
// "submitted" with a provisional points figure; reward points are credited
// only when the owner acknowledges receipt. A cheque number is required
// unless a cheque photo is attached.
func (t *TenantController) SubmitRent(ctx *gin.Context) {
	type request struct {
		Amount       float64 `json:"amount"`
		Month        string  `json:"month"`
		DueDate      string  `json:"due_date"`
		ChequeNumber string  `json:"cheque_number"`
		ChequePhoto  string  `json:"cheque_photo"`
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	if req.Amount <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "please enter a valid amount")
		return
	}

	chequeNumber := strings.TrimSpace(req.ChequeNumber)
	chequePhoto := strings.TrimSpace(req.ChequePhoto)
	if chequeNumber == "" && chequePhoto == "" {
		utils.Error(ctx, http.StatusBadRequest, 40012, "either a cheque number or a cheque photo is required")
		return
	}
	if chequePhoto != "" && !isImageDataURL(chequePhoto) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "cheque photo must be an image")
		return
	}
	if chequeNumber == "" {
		chequeNumber = "Photo Attached"
	}

	tenant, err := tenantForUser(t.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	now := time.Now()
	month := strings.TrimSpace(req.Month)
	if month == "" {
		month = now.Format("January 2006")
	}
	dueDate := now
	if d := strings.TrimSpace(req.DueDate); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40014, "due_date must be YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	rules := config.Get().PointsRules()
	record := models.RentRecord{
		TenantID:       tenant.ID,
		Month:          month,
		Amount:         req.Amount,
		DueDate:        dueDate,
		SubmissionDate: &now,
		Status:         models.RentStatusSubmitted,
		PaymentMethod:  "cheque",
		ChequeNumber:   chequeNumber,
		ChequePhoto:    chequePhoto,
		PointsEarned:   rules.RentAward(req.Amount, now, dueDate),
	}

	if err := t.db.Create(&record).Error; err != nil {
		utils.Sugar.Errorf("rent submission for tenant %s failed: %v", tenant.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to record rent submission")
		return
	}

	t.notifyOwner(tenant, &record)

	utils.Respond(ctx, http.StatusCreated, 0, "rent submitted", record)
}

// notifyOwner fans the submission out to the landlord's inbox. Best effort:
// a failed insert is logged, never surfaced to the tenant.
func (t *TenantController) notifyOwner(tenant *models.Tenant, record *models.RentRecord) {
	var property models.Property
	if err := t.db.First(&property, "id = ?", tenant.PropertyID).Error; err != nil {
		utils.Sugar.Warnf("rent notification skipped, property %s not found: %v", tenant.PropertyID, err)
		return
	}

	n := models.Notification{
		RecipientID:   property.OwnerID,
		RecipientType: models.UserTypeOwner,
		Type:          models.NotificationRentPayment,
		Title:         "New Rent Payment Received",
		Message: fmt.Sprintf("%s submitted rent payment of AED %.0f for %s, Unit %s",
			tenant.Name, record.Amount, property.Name, tenant.UnitNumber),
		RentID:     record.ID,
		TenantID:   tenant.ID,
		Amount:     record.Amount,
		PropertyID: tenant.PropertyID,
	}
	if err := t.db.Create(&n).Error; err != nil {
		utils.Sugar.Warnf("rent notification for owner %s failed: %v", property.OwnerID, err)
	}
}

// ListReferrals returns the tenant's invites and their statuses.
func (t *TenantController) ListReferrals(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	tenant, err := tenantForUser(t.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	var referrals []models.Referral
	if err := t.db.Where("tenant_id = ?", tenant.ID).Order("created_at ASC").Find(&referrals).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load referrals")
		return
	}

	utils.Success(ctx, gin.H{
		"referral_code": tenant.ReferralCode,
		"referrals":     referrals,
	})
}

// CreateReferral records an invite. Points stay at zero until the invitee
// signs up with the tenant's referral code.
func (t *TenantController) CreateReferral(ctx *gin.Context) {
	type request struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40015, "name and email are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		utils.Error(ctx, http.StatusBadRequest, 40016, "invalid email format")
		return
	}

	tenant, err := tenantForUser(t.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
		return
	}

	var count int64
	if err := t.db.Model(&models.Referral{}).Where("tenant_id = ? AND email = ?", tenant.ID, email).Count(&count).Error; err == nil && count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "this email has already been invited")
		return
	}

	referral := models.Referral{
		TenantID: tenant.ID,
		Name:     utils.Sanitize(strings.TrimSpace(req.Name)),
		Email:    email,
		Status:   models.ReferralStatusInvited,
	}
	if err := t.db.Create(&referral).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to record referral")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "referral recorded", referral)
}

// isImageDataURL performs the simple prefix check used for cheque evidence;
// the payload is stored and displayed, never parsed.
func isImageDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}
