package handler

import (
	"errors"
	"net/http"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/notify"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler interface {
	GetNotifications(c *gin.Context)
	SendNotification(c *gin.Context)
}

type notificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) NotificationHandler {
	return &notificationHandler{notifications: notifications}
}

// GetNotifications lists the authenticated user's notifications, newest first.
func (h *notificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	notifications, err := h.notifications.GetNotifications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

type sendNotificationReq struct {
	Type        string `json:"type" binding:"required"`
	RecipientID string `json:"recipientId" binding:"required"`
	SenderName  string `json:"senderName"`
	PostID      string `json:"postId"`
	CommentID   string `json:"commentId"`
}

// SendNotification persists and pushes one notification on behalf of the
// authenticated sender.
func (h *notificationHandler) SendNotification(c *gin.Context) {
	senderID := c.GetString("userID")
	if senderID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req sendNotificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	t := notify.Type(req.Type)
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": notify.ErrUnknownType.Error()})
		return
	}

	notification, err := h.notifications.CreateAndSend(c.Request.Context(), t, senderID, req.RecipientID, notify.Data{
		SenderName: req.SenderName,
		PostID:     req.PostID,
		CommentID:  req.CommentID,
	})
	if err != nil {
		if errors.Is(err, notify.ErrUnknownType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if notification == nil {
		// Self-notification is silently dropped.
		c.JSON(http.StatusNoContent, nil)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification": notification})
}
