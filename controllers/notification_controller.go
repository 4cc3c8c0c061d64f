package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/middleware"
	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

// NotificationController serves the in-app notification feed for both
// tenants and owners.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the caller's notifications, newest first, with an unread count.
func (n *NotificationController) List(ctx *gin.Context) {
	recipientID, recipientType, ok := n.resolveRecipient(ctx)
	if !ok {
		return
	}

	var notifications []models.Notification
	if err := n.db.Where("recipient_id = ? AND recipient_type = ?", recipientID, recipientType).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load notifications")
		return
	}

	unread := 0
	for _, item := range notifications {
		if !item.IsRead {
			unread++
		}
	}

	utils.Success(ctx, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead flags one notification as read.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	recipientID, recipientType, ok := n.resolveRecipient(ctx)
	if !ok {
		return
	}

	var notification models.Notification
	if err := n.db.First(&notification, "id = ? AND recipient_id = ? AND recipient_type = ?",
		ctx.Param("id"), recipientID, recipientType).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "notification not found")
		return
	}

	if !notification.IsRead {
		if err := n.db.Model(&notification).Update("is_read", true).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update notification")
			return
		}
	}
	utils.Success(ctx, notification)
}

// MarkAllRead flags every unread notification for the caller.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	recipientID, recipientType, ok := n.resolveRecipient(ctx)
	if !ok {
		return
	}

	result := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND recipient_type = ? AND is_read = ?", recipientID, recipientType, false).
		Update("is_read", true)
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to update notifications")
		return
	}
	utils.Success(ctx, gin.H{"marked_read": result.RowsAffected})
}

// Delete removes one notification.
func (n *NotificationController) Delete(ctx *gin.Context) {
	recipientID, recipientType, ok := n.resolveRecipient(ctx)
	if !ok {
		return
	}

	result := n.db.Where("id = ? AND recipient_id = ? AND recipient_type = ?",
		ctx.Param("id"), recipientID, recipientType).Delete(&models.Notification{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to delete notification")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "notification not found")
		return
	}
	utils.Success(ctx, gin.H{"deleted": ctx.Param("id")})
}

// resolveRecipient maps the authenticated user to the profile id that
// notifications are keyed on.
func (n *NotificationController) resolveRecipient(ctx *gin.Context) (string, string, bool) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return "", "", false
	}

	userType, _ := ctx.Get(middleware.ContextUserTypeKey)
	switch userType {
	case models.UserTypeOwner:
		owner, err := ownerForUser(n.db, userID)
		if err != nil {
			utils.Error(ctx, http.StatusNotFound, 40412, "owner profile not found")
			return "", "", false
		}
		return owner.ID, models.UserTypeOwner, true
	default:
		tenant, err := tenantForUser(n.db, userID)
		if err != nil {
			utils.Error(ctx, http.StatusNotFound, 40411, "tenant profile not found")
			return "", "", false
		}
		return tenant.ID, models.UserTypeTenant, true
	}
}
