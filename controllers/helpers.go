package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/middleware"
	"github.com/rentreward/rentreward/models"
)

// getUserID extracts the authenticated user id placed by the auth middleware.
func getUserID(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// tenantForUser resolves the tenant profile linked to a login account.
// Owners create tenant profiles ahead of signup, so a valid tenant account
// can still lack a profile; callers treat that as a lookup miss.
func tenantForUser(db *gorm.DB, userID string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := db.Where("user_id = ?", userID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ownerForUser resolves the owner profile linked to a login account.
func ownerForUser(db *gorm.DB, userID string) (*models.Owner, error) {
	var owner models.Owner
	if err := db.Where("user_id = ?", userID).First(&owner).Error; err != nil {
		return nil, err
	}
	return &owner, nil
}

// notFound reports whether err is a gorm record miss.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
