package api

import (
	"net/http"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/service"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation requests
type ConversationHandler struct {
	conversations *service.ConversationService
}

func NewConversationHandler(conversations *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// CreateConversation handles POST /v1/chat/conversations
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "Invalid request format"))
		return
	}

	email, ok := middleware.CallerEmail(c)
	if !ok {
		c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
		return
	}

	conversation, err := h.conversations.CreateConversation(c.Request.Context(), req, email)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

// GetMyConversations handles GET /v1/chat/conversations
func (h *ConversationHandler) GetMyConversations(c *gin.Context) {
	email, ok := middleware.CallerEmail(c)
	if !ok {
		c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
		return
	}

	conversations, err := h.conversations.GetMyConversations(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}
