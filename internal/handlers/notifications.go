package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vitalwatch-server/internal/middleware"
	"vitalwatch-server/internal/models"
	"vitalwatch-server/internal/utils"
)

// NotificationHandler serves the notification feed written by the
// care engine. Delivery to devices happens outside this service; the
// SPA polls this feed.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	query := h.DB.Where("recipient_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Limit(100).Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}

	utils.Success(c, "Notifications fetched successfully", notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	notificationID := c.Param("id")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var notification models.Notification
	if err := h.DB.First(&notification, "id = ?", notificationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Notification not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if notification.RecipientID != userID {
		utils.Forbidden(c, "You are not authorized to update this notification")
		return
	}

	now := time.Now()
	if err := h.DB.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": now,
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to update notification: "+err.Error())
		return
	}

	utils.Success(c, "Notification marked as read", nil)
}
