package controllers

import (
	"errors"
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

// OwnerController serves the landlord surface: dashboard, property and tenant
// management, rent acknowledgement and the owner referral program.
type OwnerController struct {
	db *gorm.DB
}

var (
	errTenantNotFound      = errors.New("tenant not found")
	errRentNotFound        = errors.New("rent record not found")
	errNotOwned            = errors.New("tenant does not belong to this owner")
	errAlreadyAcknowledged = errors.New("rent record already acknowledged")
	errPropertyFull        = errors.New("property is fully occupied")
)

// NewOwnerController creates an OwnerController.
func NewOwnerController(db *gorm.DB) *OwnerController {
	return &OwnerController{db: db}
}

// Dashboard returns the owner profile, properties with live occupancy and
// tenants grouped by property.
func (o *OwnerController) Dashboard(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	properties, err := o.loadProperties(owner.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load properties")
		return
	}

	propertyTenants := map[string][]models.Tenant{}
	for _, property := range properties {
		var tenants []models.Tenant
		if err := o.db.Where("property_id = ?", property.ID).Order("created_at ASC").Find(&tenants).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load tenants")
			return
		}
		propertyTenants[property.ID] = tenants
	}

	var unread int64
	_ = o.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_type = ? AND is_read = ?", owner.ID, models.UserTypeOwner, false).
		Count(&unread)

	utils.Success(ctx, gin.H{
		"owner":                owner,
		"properties":           properties,
		"property_tenants":     propertyTenants,
		"unread_notifications": unread,
	})
}

// AcknowledgeRent confirms receipt of a submitted rent record. Points are
// recomputed from the stored amount and dates and credited to the tenant in
// the same transaction that flips the status, so a record can never be
// acknowledged (and awarded) twice.
func (o *OwnerController) AcknowledgeRent(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}
	tenantID := ctx.Param("id")
	rentID := ctx.Param("rentId")

	rules := config.Get().PointsRules()
	var tenant models.Tenant
	var rent models.RentRecord
	var points int

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tenant, "id = ?", tenantID).Error; err != nil {
			return errTenantNotFound
		}

		var property models.Property
		if err := tx.First(&property, "id = ?", tenant.PropertyID).Error; err != nil {
			return errTenantNotFound
		}
		if property.OwnerID != owner.ID {
			return errNotOwned
		}

		if err := tx.First(&rent, "id = ? AND tenant_id = ?", rentID, tenant.ID).Error; err != nil {
			return errRentNotFound
		}

		submitted := time.Time{}
		if rent.SubmissionDate != nil {
			submitted = *rent.SubmissionDate
		}
		points = rules.RentAward(rent.Amount, submitted, rent.DueDate)

		// The flip is conditional on the current status so that concurrent
		// acknowledgements cannot both claim the record; only the writer
		// that wins the row credits the points.
		flip := tx.Model(&models.RentRecord{}).
			Where("id = ? AND status <> ?", rent.ID, models.RentStatusReceived).
			Updates(map[string]interface{}{
				"status":        models.RentStatusReceived,
				"points_earned": points,
			})
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return errAlreadyAcknowledged
		}
		return tx.Model(&tenant).Update("reward_points", gorm.Expr("reward_points + ?", points)).Error
	})

	switch err {
	case nil:
	case errTenantNotFound, errRentNotFound:
		utils.Error(ctx, http.StatusNotFound, 40420, err.Error())
		return
	case errNotOwned:
		utils.Error(ctx, http.StatusForbidden, 40310, "tenant does not belong to one of your properties")
		return
	case errAlreadyAcknowledged:
		utils.Error(ctx, http.StatusConflict, 40920, "rent record already acknowledged")
		return
	default:
		utils.Sugar.Errorf("rent acknowledgement failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to acknowledge rent")
		return
	}

	// stale profile cache would show the old balance
	if tenant.UserID != "" {
		utils.InvalidateByPrefix("cache:tenant:profile:" + tenant.UserID)
	}

	confirmation := models.Notification{
		RecipientID:   owner.ID,
		RecipientType: models.UserTypeOwner,
		Type:          models.NotificationGeneral,
		Title:         "Payment Confirmed",
		Message: fmt.Sprintf("Rent payment of AED %.0f from %s has been confirmed. %d points awarded.",
			rent.Amount, tenant.Name, points),
		TenantID:   tenant.ID,
		Amount:     rent.Amount,
		PropertyID: tenant.PropertyID,
	}
	if err := o.db.Create(&confirmation).Error; err != nil {
		utils.Sugar.Warnf("acknowledgement notification failed: %v", err)
	}

	utils.Success(ctx, gin.H{
		"rent_id":        rent.ID,
		"status":         models.RentStatusReceived,
		"points_awarded": points,
	})
}

// ListProperties returns the owner's properties with derived occupancy.
func (o *OwnerController) ListProperties(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}
	properties, err := o.loadProperties(owner.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load properties")
		return
	}
	utils.Success(ctx, properties)
}

// CreateProperty adds a property to the owner's portfolio and records the
// per-property referral bonus when the owner joined through a referral.
func (o *OwnerController) CreateProperty(ctx *gin.Context) {
	type request struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
		Units   int    `json:"units" binding:"required"`
	}

	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.Units <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40021, "units must be a positive number")
		return
	}

	property := models.Property{
		OwnerID: owner.ID,
		Name:    utils.Sanitize(strings.TrimSpace(req.Name)),
		Address: utils.Sanitize(strings.TrimSpace(req.Address)),
		Units:   req.Units,
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		return o.creditOwnerReferral(tx, owner.ID, "properties_added", config.Get().PointsRules().PerPropertyBonus)
	})
	if err != nil {
		utils.Sugar.Errorf("property creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to create property")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "property created", property)
}

// UpdateProperty edits name, address and capacity. Capacity cannot shrink
// below the live tenant count.
func (o *OwnerController) UpdateProperty(ctx *gin.Context) {
	type request struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Units   int    `json:"units"`
	}

	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	property, ok := o.resolveProperty(ctx, owner.ID, ctx.Param("id"))
	if !ok {
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = utils.Sanitize(name)
	}
	if addr := strings.TrimSpace(req.Address); addr != "" {
		updates["address"] = utils.Sanitize(addr)
	}
	if req.Units > 0 {
		occupied, err := models.CountOccupiedUnits(o.db, property.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to check occupancy")
			return
		}
		if int64(req.Units) < occupied {
			utils.Error(ctx, http.StatusBadRequest, 40022, fmt.Sprintf("units cannot be below current occupancy of %d", occupied))
			return
		}
		updates["units"] = req.Units
	}

	if len(updates) > 0 {
		if err := o.db.Model(property).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to update property")
			return
		}
	}

	property.OccupiedUnits, _ = models.CountOccupiedUnits(o.db, property.ID)
	utils.Success(ctx, property)
}

// DeleteProperty removes a property and every tenant occupying it, including
// their rent history and referrals, in one transaction. No orphaned tenant
// keeps referencing a deleted property.
func (o *OwnerController) DeleteProperty(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	property, ok := o.resolveProperty(ctx, owner.ID, ctx.Param("id"))
	if !ok {
		return
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		var tenantIDs []string
		if err := tx.Model(&models.Tenant{}).Where("property_id = ?", property.ID).Pluck("id", &tenantIDs).Error; err != nil {
			return err
		}
		if len(tenantIDs) > 0 {
			if err := tx.Where("tenant_id IN ?", tenantIDs).Delete(&models.RentRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("tenant_id IN ?", tenantIDs).Delete(&models.Referral{}).Error; err != nil {
				return err
			}
			if err := tx.Where("property_id = ?", property.ID).Delete(&models.Tenant{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(property).Error
	})
	if err != nil {
		utils.Sugar.Errorf("property deletion failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to delete property")
		return
	}

	utils.Success(ctx, gin.H{"deleted": property.ID})
}

// ListTenants returns tenants across the owner's properties, optionally
// filtered by property_id.
func (o *OwnerController) ListTenants(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	query := o.db.Model(&models.Tenant{}).
		Joins("JOIN properties ON properties.id = tenants.property_id").
		Where("properties.owner_id = ?", owner.ID)
	if propertyID := ctx.Query("property_id"); propertyID != "" {
		query = query.Where("tenants.property_id = ?", propertyID)
	}

	var tenants []models.Tenant
	if err := query.Order("tenants.created_at ASC").Find(&tenants).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load tenants")
		return
	}
	utils.Success(ctx, tenants)
}

// GetTenant returns one tenant with rent history, scoped to the owner.
func (o *OwnerController) GetTenant(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}
	tenant, ok := o.resolveTenant(ctx, owner.ID, ctx.Param("id"))
	if !ok {
		return
	}

	var records []models.RentRecord
	if err := o.db.Where("tenant_id = ?", tenant.ID).Order("created_at ASC").Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load rent history")
		return
	}
	tenant.RentHistory = records
	utils.Success(ctx, tenant)
}

// CreateTenant onboards a tenant into one of the owner's properties.
// Capacity is enforced against the live occupancy count; a matching
// unlinked login account is connected immediately.
func (o *OwnerController) CreateTenant(ctx *gin.Context) {
	type request struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Phone      string `json:"phone"`
		PropertyID string `json:"property_id" binding:"required"`
		UnitNumber string `json:"unit_number"`
	}

	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid email format")
		return
	}

	property, ok := o.resolveProperty(ctx, owner.ID, req.PropertyID)
	if !ok {
		return
	}

	tenant := models.Tenant{
		Email:      email,
		Name:       utils.Sanitize(strings.TrimSpace(req.Name)),
		Phone:      strings.TrimSpace(req.Phone),
		PropertyID: property.ID,
		UnitNumber: strings.TrimSpace(req.UnitNumber),
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		occupied, err := models.CountOccupiedUnits(tx, property.ID)
		if err != nil {
			return err
		}
		if occupied >= int64(property.Units) {
			return errPropertyFull
		}

		var user models.User
		if err := tx.Where("email = ? AND user_type = ?", email, models.UserTypeTenant).First(&user).Error; err == nil {
			tenant.UserID = user.ID
		} else if !notFound(err) {
			return err
		}

		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return o.creditOwnerReferral(tx, owner.ID, "tenants_onboarded", config.Get().PointsRules().PerTenantBonus)
	})
	switch err {
	case nil:
	case errPropertyFull:
		utils.Error(ctx, http.StatusBadRequest, 40025, "property is fully occupied")
		return
	default:
		utils.Sugar.Errorf("tenant creation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to create tenant")
		return
	}

	welcome := models.Notification{
		RecipientID:   owner.ID,
		RecipientType: models.UserTypeOwner,
		Type:          models.NotificationNewTenant,
		Title:         "New Tenant Added",
		Message:       fmt.Sprintf("%s has been added to %s, Unit %s", tenant.Name, property.Name, tenant.UnitNumber),
		TenantID:      tenant.ID,
		PropertyID:    property.ID,
	}
	if err := o.db.Create(&welcome).Error; err != nil {
		utils.Sugar.Warnf("new tenant notification failed: %v", err)
	}

	utils.Respond(ctx, http.StatusCreated, 0, "tenant created", tenant)
}

// UpdateTenant edits contact details or moves the tenant to another of the
// owner's properties (subject to capacity).
func (o *OwnerController) UpdateTenant(ctx *gin.Context) {
	type request struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		PropertyID string `json:"property_id"`
		UnitNumber string `json:"unit_number"`
	}

	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}
	tenant, ok := o.resolveTenant(ctx, owner.ID, ctx.Param("id"))
	if !ok {
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = utils.Sanitize(name)
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		if !emailPattern.MatchString(email) {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid email format")
			return
		}
		updates["email"] = email
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		updates["phone"] = phone
	}
	if unit := strings.TrimSpace(req.UnitNumber); unit != "" {
		updates["unit_number"] = unit
	}
	if propertyID := strings.TrimSpace(req.PropertyID); propertyID != "" && propertyID != tenant.PropertyID {
		target, ok := o.resolveProperty(ctx, owner.ID, propertyID)
		if !ok {
			return
		}
		occupied, err := models.CountOccupiedUnits(o.db, target.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to check occupancy")
			return
		}
		if occupied >= int64(target.Units) {
			utils.Error(ctx, http.StatusBadRequest, 40025, "property is fully occupied")
			return
		}
		updates["property_id"] = target.ID
	}

	if len(updates) > 0 {
		if err := o.db.Model(tenant).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to update tenant")
			return
		}
		if tenant.UserID != "" {
			utils.InvalidateByPrefix("cache:tenant:profile:" + tenant.UserID)
		}
	}

	utils.Success(ctx, tenant)
}

// DeleteTenant removes a tenant along with rent history and referrals.
func (o *OwnerController) DeleteTenant(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}
	tenant, ok := o.resolveTenant(ctx, owner.ID, ctx.Param("id"))
	if !ok {
		return
	}

	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.RentRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", tenant.ID).Delete(&models.Referral{}).Error; err != nil {
			return err
		}
		return tx.Delete(tenant).Error
	})
	if err != nil {
		utils.Sugar.Errorf("tenant deletion failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to delete tenant")
		return
	}

	if tenant.UserID != "" {
		utils.InvalidateByPrefix("cache:tenant:profile:" + tenant.UserID)
	}
	utils.Success(ctx, gin.H{"deleted": tenant.ID})
}

// ListReferrals returns the owner's referral program entries.
func (o *OwnerController) ListReferrals(ctx *gin.Context) {
	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	var referrals []models.OwnerReferral
	if err := o.db.Where("owner_id = ?", owner.ID).Order("created_at ASC").Find(&referrals).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load referrals")
		return
	}

	utils.Success(ctx, gin.H{
		"referral_code": owner.ReferralCode,
		"referrals":     referrals,
	})
}

// CreateReferral records a landlord-program invite.
func (o *OwnerController) CreateReferral(ctx *gin.Context) {
	type request struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required"`
	}

	owner, ok := o.resolveOwner(ctx)
	if !ok {
		return
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40026, "name and email are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid email format")
		return
	}

	var count int64
	if err := o.db.Model(&models.OwnerReferral{}).Where("owner_id = ? AND email = ?", owner.ID, email).Count(&count).Error; err == nil && count > 0 {
		utils.Error(ctx, http.StatusConflict, 40911, "this email has already been invited")
		return
	}

	referral := models.OwnerReferral{
		OwnerID: owner.ID,
		Name:    utils.Sanitize(strings.TrimSpace(req.Name)),
		Email:   email,
		Status:  models.ReferralStatusInvited,
	}
	if err := o.db.Create(&referral).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record referral")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "referral recorded", referral)
}

// resolveOwner loads the caller's owner profile or writes the error response.
func (o *OwnerController) resolveOwner(ctx *gin.Context) (*models.Owner, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}
	owner, err := ownerForUser(o.db, userID)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40412, "owner profile not found")
		return nil, false
	}
	return owner, true
}

// resolveProperty loads a property and verifies ownership.
func (o *OwnerController) resolveProperty(ctx *gin.Context, ownerID, propertyID string) (*models.Property, bool) {
	var property models.Property
	if err := o.db.First(&property, "id = ?", propertyID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40421, "property not found")
		return nil, false
	}
	if property.OwnerID != ownerID {
		utils.Error(ctx, http.StatusForbidden, 40311, "property does not belong to you")
		return nil, false
	}
	property.OccupiedUnits, _ = models.CountOccupiedUnits(o.db, property.ID)
	return &property, true
}

// resolveTenant loads a tenant and verifies they occupy one of the owner's
// properties.
func (o *OwnerController) resolveTenant(ctx *gin.Context, ownerID, tenantID string) (*models.Tenant, bool) {
	var tenant models.Tenant
	if err := o.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40420, "tenant not found")
		return nil, false
	}
	var property models.Property
	if err := o.db.First(&property, "id = ?", tenant.PropertyID).Error; err != nil || property.OwnerID != ownerID {
		utils.Error(ctx, http.StatusForbidden, 40310, "tenant does not belong to one of your properties")
		return nil, false
	}
	return &tenant, true
}

// loadProperties fetches the owner's portfolio with derived occupancy.
func (o *OwnerController) loadProperties(ownerID string) ([]models.Property, error) {
	var properties []models.Property
	if err := o.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&properties).Error; err != nil {
		return nil, err
	}
	for i := range properties {
		occupied, err := models.CountOccupiedUnits(o.db, properties[i].ID)
		if err != nil {
			return nil, err
		}
		properties[i].OccupiedUnits = occupied
	}
	return properties, nil
}

// creditOwnerReferral bumps the portfolio counter and bonus on the referral
// row that brought this owner in, when one exists.
func (o *OwnerController) creditOwnerReferral(tx *gorm.DB, ownerID, counter string, bonus int) error {
	var referral models.OwnerReferral
	err := tx.Where("referred_owner_id = ? AND status = ?", ownerID, models.ReferralStatusJoined).First(&referral).Error
	if err != nil {
		if notFound(err) {
			return nil
		}
		return err
	}
	return tx.Model(&referral).Updates(map[string]interface{}{
		counter:        gorm.Expr(counter+" + 1"),
		"bonus_earned": gorm.Expr("bonus_earned + ?", bonus),
	}).Error
}
