package handlers

import (
	"net/http"

	"pizza-delivery-api/middleware"
	"pizza-delivery-api/notification"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns a page of the caller's inbox, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	var f notification.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return
	}
	inbox, err := h.Notifications.List(c.Request.Context(), middleware.GetUserID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.Notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.Notifications.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// GetNotificationPreferences returns the caller's preferences, or the
// defaults when none were saved
func (h *Handler) GetNotificationPreferences(c *gin.Context) {
	p, err := h.Notifications.Preferences(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": p})
}

func (h *Handler) UpdateNotificationPreferences(c *gin.Context) {
	var req notification.PreferencesUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := h.Notifications.UpdatePreferences(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated", "preferences": p})
}
