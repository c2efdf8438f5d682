package router

import (
	"adam-store/backend/internal/api"
	"adam-store/backend/internal/ws"
	"adam-store/backend/pkg/di"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/jwt"
	"adam-store/backend/pkg/logger"
	"adam-store/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application. Route policy mirrors the
// security filter contract: public and websocket handshake paths are open,
// admin paths require the admin role, everything else requires a valid
// bearer token.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	if container.Config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(middleware.CORS(container.Config.Security.AllowedOrigins))

	limiterOpts := middleware.DefaultRateLimiterOptions()
	limiterOpts.Limit = rate.Limit(container.Config.Security.RateLimit)
	limiterOpts.Burst = container.Config.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)
	engine.Use(rateLimiter.Middleware())

	go container.Hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	jwtAuth := middleware.JWTAuth(r.Container.JWTService, r.Logger)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	chatHandler := api.NewChatHandler(r.Container.ChatMessageService, r.Container.Hub)
	conversationHandler := api.NewConversationHandler(r.Container.ConversationService)
	wsHandler := ws.NewHandler(r.Container.Hub, r.Container.ChatMessageService, r.Container.JWTService, r.Logger)

	v1 := r.Engine.Group("/v1")

	// Public routes (no auth required)
	public := v1.Group("/public")
	{
		public.GET("/health", api.Health(r.Container.Config.Server.Env))

		auth := public.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
	}

	// Protected routes (require authentication)
	protected := v1.Group("/")
	protected.Use(jwtAuth)
	{
		protected.GET("/auth/me", authHandler.Me)

		chat := protected.Group("/chat")
		{
			chat.POST("/conversations", conversationHandler.CreateConversation)
			chat.GET("/conversations", conversationHandler.GetMyConversations)
			chat.POST("/messages", chatHandler.CreateMessage)
			chat.GET("/conversations/:conversationId/messages", chatHandler.GetMessages)
		}
	}

	// Admin routes (require the admin role)
	admin := v1.Group("/admin")
	admin.Use(jwtAuth, middleware.RequireRole(jwt.RoleAdmin))
	{
		admin.GET("/health", api.Health(r.Container.Config.Server.Env))
	}

	// WebSocket handshake path is public; the handler validates the token
	// and conversation membership itself
	r.Engine.GET("/ws", wsHandler.ServeWs)
}
