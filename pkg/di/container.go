package di

import (
	"adam-store/backend/internal/repository"
	"adam-store/backend/internal/service"
	"adam-store/backend/internal/ws"
	"adam-store/backend/pkg/cache"
	"adam-store/backend/pkg/config"
	"adam-store/backend/pkg/jwt"
	"adam-store/backend/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	DB      *gorm.DB
	MongoDB *mongo.Database
	Cache   *cache.Client

	JWTService *jwt.Service

	UserRepository         repository.UserRepository
	ConversationRepository repository.ConversationRepository
	ChatMessageRepository  repository.ChatMessageRepository

	UserService         *service.UserService
	ConversationService *service.ConversationService
	ChatMessageService  *service.ChatMessageService

	Hub *ws.Hub
}

// New wires all services against the given stores
func New(cfg *config.Config, log *logger.Logger, db *gorm.DB, mongoDB *mongo.Database) *Container {
	cacheClient := cache.New(cfg)
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	userRepo := repository.NewGormUserRepository(db)
	conversationRepo := repository.NewMongoConversationRepository(mongoDB)
	messageRepo := repository.NewMongoChatMessageRepository(mongoDB)

	userService := service.NewUserService(userRepo, cacheClient, jwtService)
	conversationService := service.NewConversationService(conversationRepo, userRepo)
	chatMessageService := service.NewChatMessageService(conversationRepo, messageRepo, userRepo, log)

	hub := ws.NewHub(log)

	return &Container{
		Config:                 cfg,
		Logger:                 log,
		DB:                     db,
		MongoDB:                mongoDB,
		Cache:                  cacheClient,
		JWTService:             jwtService,
		UserRepository:         userRepo,
		ConversationRepository: conversationRepo,
		ChatMessageRepository:  messageRepo,
		UserService:            userService,
		ConversationService:    conversationService,
		ChatMessageService:     chatMessageService,
		Hub:                    hub,
	}
}
