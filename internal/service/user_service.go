package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"adam-store/backend/internal/models"
	"adam-store/backend/internal/repository"
	"adam-store/backend/pkg/cache"
	"adam-store/backend/pkg/errors"
	"adam-store/backend/pkg/jwt"
)

const userCacheTTL = 10 * time.Minute

// UserService handles registration, login and user lookups. Lookups by
// email go through a cache-aside Redis layer.
type UserService struct {
	repo       repository.UserRepository
	cache      *cache.Client
	jwtService *jwt.Service
}

func NewUserService(repo repository.UserRepository, cacheClient *cache.Client, jwtService *jwt.Service) *UserService {
	return &UserService{repo: repo, cache: cacheClient, jwtService: jwtService}
}

// Register creates a new user account and issues a token for it
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", errors.NewConflictError("EMAIL_EXISTED", "A user with this email already exists")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password, // hashed by the BeforeCreate hook
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and issues a token
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, "", errors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, "", err
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", errors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUserByEmail returns the user record for an email, trying the cache
// first and falling back to the store
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	cacheKey := fmt.Sprintf("user:email:%s", email)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotExisted
		}
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, cacheKey, data, userCacheTTL)
	}
	return user, nil
}

// GetUserByID returns the user record for an id
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotExisted
		}
		return nil, err
	}
	return user, nil
}
