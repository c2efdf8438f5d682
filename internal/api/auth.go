package api

import (
	"net/http"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/service"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/logger"
	"adam-store/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users  *service.UserService
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *service.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: log}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "Invalid request format"))
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "email", user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "Invalid request format"))
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)

	c.JSON(http.StatusOK, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	email, ok := middleware.CallerEmail(c)
	if !ok {
		c.Error(errors.NewUnauthorizedError("UNAUTHENTICATED", "Authentication required"))
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}
