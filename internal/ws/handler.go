package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/service"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/jwt"
	"adam-store/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the HTTP CORS middleware and the
	// token check below
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a single websocket subscription to one conversation
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	conversationID string
	userID         uint
	email          string
}

// Handler upgrades websocket connections after validating the caller's
// token and conversation membership
type Handler struct {
	hub        *Hub
	messages   *service.ChatMessageService
	jwtService *jwt.Service
	logger     *logger.Logger
}

func NewHandler(hub *Hub, messages *service.ChatMessageService, jwtService *jwt.Service, log *logger.Logger) *Handler {
	return &Handler{hub: hub, messages: messages, jwtService: jwtService, logger: log}
}

// ServeWs handles GET /ws?token=...&conversationId=...
// The handshake path is public; authentication happens here because
// browsers cannot set headers on websocket upgrades.
func (h *Handler) ServeWs(c *gin.Context) {
	token := c.Query("token")
	conversationID := c.Query("conversationId")
	if token == "" || conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_REQUEST", "message": "token and conversationId are required"}})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "INVALID_TOKEN", "message": "Invalid or expired token"}})
		return
	}

	// Same membership guard as the REST paths, before the upgrade
	if err := h.messages.CheckAccess(c.Request.Context(), conversationID, claims.Email); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "CONVERSATION_NOT_FOUND", "message": "Conversation not found"}})
			return
		}
		h.logger.LogError(err, "membership check failed", "conversation_id", conversationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "INTERNAL_ERROR", "message": "An unexpected error occurred"}})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		hub:            h.hub,
		conn:           conn,
		send:           make(chan []byte, 32),
		conversationID: conversationID,
		userID:         claims.UserID,
		email:          claims.Email,
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump(h)
}

// inboundFrame is what a connected client may send: just message text;
// the conversation and sender come from the subscription
type inboundFrame struct {
	Message string `json:"message"`
}

// readPump pumps inbound frames through the chat service. Every create
// goes through the same guarded path as the REST endpoint.
func (c *Client) readPump(h *Handler) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "error", err.Error())
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Message == "" {
			continue
		}

		req := models.ChatMessageRequest{
			ConversationID: c.conversationID,
			Message:        frame.Message,
		}
		response, err := h.messages.CreateMessage(context.Background(), req, c.email)
		if err != nil {
			h.logger.Warn("websocket message rejected",
				"conversation_id", c.conversationID,
				"error", err.Error(),
			)
			continue
		}

		c.hub.Broadcast(response)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
