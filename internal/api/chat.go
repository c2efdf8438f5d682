package api

import (
	"net/http"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/service"
	"adam-store/backend/internal/ws"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles chat message requests. The caller's email comes
// from the validated bearer token; the service enforces conversation
// membership.
type ChatHandler struct {
	messages *service.ChatMessageService
	hub      *ws.Hub
}

// NewChatHandler creates a new chat handler. hub may be nil when the
// websocket transport is disabled.
func NewChatHandler(messages *service.ChatMessageService, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{messages: messages, hub: hub}
}

// CreateMessage handles POST /v1/chat/messages
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "Invalid request format"))
		return
	}

	email, ok := middleware.CallerEmail(c)
	if !ok {
		c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
		return
	}

	response, err := h.messages.CreateMessage(c.Request.Context(), req, email)
	if err != nil {
		c.Error(err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(response)
	}

	c.JSON(http.StatusCreated, response)
}

// GetMessages handles GET /v1/chat/conversations/:conversationId/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if conversationID == "" {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "Conversation ID is required"))
		return
	}

	email, ok := middleware.CallerEmail(c)
	if !ok {
		c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
		return
	}

	responses, err := h.messages.GetMessages(c.Request.Context(), conversationID, email)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, responses)
}
