package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/mentorhood/mentorhood/internal/domain"
	"github.com/mentorhood/mentorhood/internal/repo/postgres"
	"github.com/mentorhood/mentorhood/internal/utils"
	"github.com/mentorhood/mentorhood/pkg/auth"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Identity, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type userService struct {
	userRepo postgres.UserRepository
	config   *config.Config
}

func NewUserService(userRepo postgres.UserRepository, config *config.Config) UserService {
	return &userService{userRepo: userRepo, config: config}
}

func (s *userService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token. Accounts carrying
// a bcrypt hash are moved to argon2id on their first successful login.
func (s *userService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Identity, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid(errors.New("email and password are required"))
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, legacy, err := checkPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if legacy {
		s.upgradeHash(ctx, user.ID, req.Password)
	}

	token, err := auth.NewAccessToken(
		user.ID,
		user.Email,
		user.Username,
		string(user.Role),
		s.config.Auth.JWTSecret,
		s.config.Auth.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &domain.Identity{
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Token:     token,
		UserID:    user.ID,
		Onboarded: user.Onboarded,
	}, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, nil
}

// checkPassword reports a match and whether the stored hash is bcrypt.
func checkPassword(password, hash string) (ok, legacy bool, err error) {
	if strings.HasPrefix(hash, "$argon2id$") {
		ok, err = argon2id.ComparePasswordAndHash(password, hash)
		return ok, false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, true, nil
	default:
		return false, true, err
	}
}

func (s *userService) upgradeHash(ctx context.Context, userID, password string) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err == nil {
		err = s.userRepo.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to upgrade legacy password hash", "error", err, "user_id", userID)
	}
}
