package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler interface {
	GetConversations(c *gin.Context)
	GetMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	UpdateMessage(c *gin.Context)
	MarkAsRead(c *gin.Context)
	OnlineStatus(c *gin.Context)
	CreateConversation(c *gin.Context)
	RenameConversation(c *gin.Context)
}

type chatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) ChatHandler {
	return &chatHandler{chat: chat}
}

func (h *chatHandler) GetConversations(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	conversations, err := h.chat.GetConversations(c.Request.Context(), userID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *chatHandler) GetMessages(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	if conversationID := c.Query("conversationId"); conversationID != "" {
		messages, err := h.chat.GetMessages(c.Request.Context(), conversationID, page)
		if err != nil {
			respondChatError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
		return
	}

	senderID := c.Query("senderId")
	receiverID := c.Query("receiverId")
	if senderID == "" || receiverID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId or senderId+receiverId is required"})
		return
	}

	messages, err := h.chat.GetMessagesBetween(c.Request.Context(), senderID, receiverID, page)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *chatHandler) SendMessage(c *gin.Context) {
	var payload model.SendMessagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if payload.SenderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderId is required"})
		return
	}

	result, err := h.chat.SendMessage(c.Request.Context(), payload)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *chatHandler) UpdateMessage(c *gin.Context) {
	var payload model.UpdateMessageStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	updated, err := h.chat.UpdateMessageStatus(c.Request.Context(), payload.MessageID, payload.Status)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": updated})
}

func (h *chatHandler) MarkAsRead(c *gin.Context) {
	var payload model.MarkConversationReadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if payload.ConversationID == "" || payload.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId and userId are required"})
		return
	}

	modified, err := h.chat.MarkConversationRead(c.Request.Context(), payload.ConversationID, payload.UserID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modified": modified})
}

func (h *chatHandler) OnlineStatus(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	online, err := h.chat.OnlineStatus(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID, "isOnline": online})
}

type createConversationReq struct {
	ParticipantIDs []string `json:"participantIds" binding:"required"`
	Name           string   `json:"name"`
}

func (h *chatHandler) CreateConversation(c *gin.Context) {
	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	conversation, err := h.chat.ResolveGroup(c.Request.Context(), req.ParticipantIDs, req.Name)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"conversationId": conversation.ID.Hex(),
		"name":           conversation.Name,
		"participants":   conversation.ParticipantIDs,
	})
}

type renameConversationReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *chatHandler) RenameConversation(c *gin.Context) {
	conversationID := c.Param("id")

	var req renameConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	conversation, err := h.chat.RenameConversation(c.Request.Context(), conversationID, req.Name)
	if err != nil {
		respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conversation})
}

// respondChatError maps service errors onto HTTP statuses.
func respondChatError(c *gin.Context, err error) {
	if ipe, ok := service.IsInvalidParticipant(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ipe.Error(), "invalidUserIds": ipe.UserIDs})
		return
	}

	switch {
	case errors.Is(err, service.ErrReceiverRequired),
		errors.Is(err, service.ErrGroupTooSmall),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrUnsupportedStatus),
		errors.Is(err, repo.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repo.ErrConversationNotFound),
		errors.Is(err, repo.ErrMessageNotFound),
		errors.Is(err, repo.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
